package catalog

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func sampleItems() []Item {
	return []Item{
		{
			Title:     "Heat",
			Year:      1995,
			Director:  "Michael Mann",
			Genre:     "Crime, Thriller",
			Plot:      "A group of professional bank robbers start to feel the heat.",
			Actors:    []string{"Al Pacino", "Robert De Niro", "Val Kilmer"},
			Rating:    8.3,
			Watched:   true,
			RatingKey: "101",
		},
		{
			Title:     "Collateral",
			Year:      2004,
			Director:  "Michael Mann",
			Genre:     "Crime",
			Plot:      "A cab driver finds himself the hostage of an engaging contract killer.",
			Actors:    []string{"Tom Cruise", "Jamie Foxx"},
			Rating:    7.5,
			Watched:   false,
			RatingKey: "102",
		},
	}
}

func TestBuildCorpus(t *testing.T) {
	doc, err := BuildCorpus(sampleItems())
	if err != nil {
		t.Fatalf("BuildCorpus() error = %v", err)
	}

	if doc.Name != "movies_library.json" {
		t.Errorf("Name = %q, want movies_library.json", doc.Name)
	}
	if doc.Count != 2 {
		t.Errorf("Count = %d, want 2", doc.Count)
	}

	var entries []map[string]any
	if err := json.Unmarshal(doc.Content, &entries); err != nil {
		t.Fatalf("corpus is not valid JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("corpus has %d entries, want 2", len(entries))
	}

	if got := entries[0]["status"]; got != "Watched" {
		t.Errorf("entries[0].status = %v, want Watched", got)
	}
	if got := entries[1]["status"]; got != "Unwatched" {
		t.Errorf("entries[1].status = %v, want Unwatched", got)
	}
	if got := entries[0]["actors"]; got != "Al Pacino, Robert De Niro, Val Kilmer" {
		t.Errorf("entries[0].actors = %v", got)
	}
	// Library order must be preserved.
	if entries[0]["title"] != "Heat" || entries[1]["title"] != "Collateral" {
		t.Errorf("corpus order = [%v, %v], want [Heat, Collateral]", entries[0]["title"], entries[1]["title"])
	}
}

func TestBuildCorpusEmpty(t *testing.T) {
	doc, err := BuildCorpus(nil)
	if err != nil {
		t.Fatalf("BuildCorpus(nil) error = %v", err)
	}
	if doc.Count != 0 {
		t.Errorf("Count = %d, want 0", doc.Count)
	}
}

func TestBuildCorpusIdempotent(t *testing.T) {
	a, err := BuildCorpus(sampleItems())
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildCorpus(sampleItems())
	if err != nil {
		t.Fatal(err)
	}
	if string(a.Content) != string(b.Content) {
		t.Error("two builds over the same catalog produced different documents")
	}
}

func TestHistoryContext(t *testing.T) {
	got := HistoryContext(sampleItems())
	want := "- Heat (1995) - Director: Michael Mann, Género: Crime, Thriller\n" +
		"- Collateral (2004) - Director: Michael Mann, Género: Crime"
	if got != want {
		t.Errorf("HistoryContext() =\n%s\nwant\n%s", got, want)
	}
}

func TestNormalizeTitle(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  The Godfather ", "the godfather"},
		{"SE7EN (1995)", "se7en (1995)"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeTitle(tc.in); got != tc.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStatus(t *testing.T) {
	if got := (Item{Watched: true}).Status(); got != "Watched" {
		t.Errorf("Status() = %q, want Watched", got)
	}
	if got := (Item{}).Status(); got != "Unwatched" {
		t.Errorf("Status() = %q, want Unwatched", got)
	}
	if !strings.Contains(HistoryContext([]Item{{Title: "X"}}), "X (0)") {
		t.Error("HistoryContext should render zero years literally")
	}
}
