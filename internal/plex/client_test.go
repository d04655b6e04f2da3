package plex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
)

const sectionsJSON = `{"MediaContainer":{"size":1,"Directory":[
	{"key":"1","type":"movie","title":"Movies"}
]}}`

const libraryJSON = `{"MediaContainer":{"size":2,"Metadata":[
	{"ratingKey":"101","title":"Heat","year":1995,"rating":8.3,"viewCount":2,"lastViewedAt":1700000000,
	 "summary":"Bank robbers feel the heat.",
	 "Genre":[{"tag":"Crime"},{"tag":"Thriller"}],
	 "Director":[{"tag":"Michael Mann"}],
	 "Role":[{"tag":"Al Pacino"},{"tag":"Robert De Niro"},{"tag":"Val Kilmer"},{"tag":"Tom Sizemore"}]},
	{"ratingKey":"102","title":"Collateral","year":2004,"rating":7.5}
]}}`

// mockServer returns a Plex test double and a client pointed at it.
func mockServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, "test-token")
}

func TestListLibraryItems(t *testing.T) {
	var gotToken string
	_, c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Plex-Token")
		switch r.URL.Path {
		case "/library/sections":
			fmt.Fprint(w, sectionsJSON)
		case "/library/sections/1/all":
			fmt.Fprint(w, libraryJSON)
		default:
			http.NotFound(w, r)
		}
	})

	items, err := c.ListLibraryItems(context.Background(), "Movies")
	if err != nil {
		t.Fatalf("ListLibraryItems() error = %v", err)
	}
	if gotToken != "test-token" {
		t.Errorf("X-Plex-Token = %q, want test-token", gotToken)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	heat := items[0]
	if !heat.Watched {
		t.Error("Heat has viewCount=2, want Watched=true")
	}
	if heat.Director != "Michael Mann" {
		t.Errorf("Director = %q", heat.Director)
	}
	if heat.Genre != "Crime, Thriller" {
		t.Errorf("Genre = %q", heat.Genre)
	}
	if len(heat.Actors) != 3 {
		t.Errorf("Actors = %v, want top 3 only", heat.Actors)
	}

	coll := items[1]
	if coll.Watched {
		t.Error("Collateral has viewCount=0, want Watched=false")
	}
	if coll.Director != "Unknown" || coll.Genre != "Unknown" {
		t.Errorf("missing tags should map to Unknown, got director=%q genre=%q", coll.Director, coll.Genre)
	}
	if coll.Plot != "No plot available" {
		t.Errorf("missing summary should map to placeholder, got %q", coll.Plot)
	}
}

func TestListLibraryItemsUnknownLibrary(t *testing.T) {
	_, c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sectionsJSON)
	})

	if _, err := c.ListLibraryItems(context.Background(), "Music"); err == nil {
		t.Fatal("expected error for unknown library")
	}
}

func TestListRecentHistory(t *testing.T) {
	var gotQuery url.Values
	_, c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/library/sections":
			fmt.Fprint(w, sectionsJSON)
		case "/library/sections/1/all":
			gotQuery = r.URL.Query()
			fmt.Fprint(w, libraryJSON)
		default:
			http.NotFound(w, r)
		}
	})

	items, err := c.ListRecentHistory(context.Background(), "Movies", 5)
	if err != nil {
		t.Fatalf("ListRecentHistory() error = %v", err)
	}
	if gotQuery.Get("sort") != "lastViewedAt:desc" {
		t.Errorf("sort = %q, want lastViewedAt:desc", gotQuery.Get("sort"))
	}
	// Collateral was never viewed; only Heat belongs to the window.
	if len(items) != 1 || items[0].Title != "Heat" {
		t.Errorf("history = %v, want only Heat", items)
	}
}

func TestFindItemByTitle(t *testing.T) {
	_, c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/library/sections":
			fmt.Fprint(w, sectionsJSON)
		case "/library/sections/1/all":
			fmt.Fprint(w, libraryJSON)
		default:
			http.NotFound(w, r)
		}
	})

	item, found, err := c.FindItemByTitle(context.Background(), "Movies", "  heat ")
	if err != nil {
		t.Fatalf("FindItemByTitle() error = %v", err)
	}
	if !found || item.RatingKey != "101" {
		t.Errorf("found=%v item=%v, want Heat (101)", found, item)
	}

	_, found, err = c.FindItemByTitle(context.Background(), "Movies", "Ronin")
	if err != nil {
		t.Fatalf("FindItemByTitle() error = %v", err)
	}
	if found {
		t.Error("Ronin is not in the library, want found=false")
	}
}

func TestCreateOrReplacePlaylist(t *testing.T) {
	var deleted atomic.Int32
	var createQuery url.Values
	_, c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/identity":
			fmt.Fprint(w, `{"MediaContainer":{"machineIdentifier":"abc123"}}`)
		case r.URL.Path == "/playlists" && r.Method == http.MethodGet:
			fmt.Fprint(w, `{"MediaContainer":{"size":1,"Metadata":[{"ratingKey":"900","title":"Recomendado por IA"}]}}`)
		case r.URL.Path == "/playlists/900" && r.Method == http.MethodDelete:
			deleted.Add(1)
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/playlists" && r.Method == http.MethodPost:
			createQuery = r.URL.Query()
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"MediaContainer":{"size":1}}`)
		default:
			http.NotFound(w, r)
		}
	})

	err := c.CreateOrReplacePlaylist(context.Background(), "Recomendado por IA", []string{"101", "102"})
	if err != nil {
		t.Fatalf("CreateOrReplacePlaylist() error = %v", err)
	}
	if deleted.Load() != 1 {
		t.Errorf("existing playlist deleted %d times, want 1", deleted.Load())
	}
	if got := createQuery.Get("uri"); got != "server://abc123/com.plexapp.plugins.library/library/metadata/101,102" {
		t.Errorf("create uri = %q", got)
	}
	if createQuery.Get("title") != "Recomendado por IA" {
		t.Errorf("create title = %q", createQuery.Get("title"))
	}
}

func TestCreateOrReplacePlaylistNoItems(t *testing.T) {
	_, c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty playlist")
	})
	if err := c.CreateOrReplacePlaylist(context.Background(), "x", nil); err == nil {
		t.Fatal("expected error for empty rating key list")
	}
}

func TestDoRequestUpstreamError(t *testing.T) {
	_, c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	if _, err := c.ListLibraryItems(context.Background(), "Movies"); err == nil {
		t.Fatal("expected error on upstream 401")
	}
}
