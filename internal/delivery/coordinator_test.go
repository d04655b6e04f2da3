package delivery

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/jvaldes/plexcurator/internal/catalog"
)

type fakeFinder struct {
	keys map[string]string // title -> rating key
	err  error
}

func (f *fakeFinder) FindItemByTitle(ctx context.Context, library, title string) (catalog.Item, bool, error) {
	if f.err != nil {
		return catalog.Item{}, false, f.err
	}
	key, ok := f.keys[title]
	if !ok {
		return catalog.Item{}, false, nil
	}
	return catalog.Item{Title: title, RatingKey: key}, true, nil
}

type fakePlaylist struct {
	name string
	keys []string
	err  error
}

func (f *fakePlaylist) CreateOrReplacePlaylist(ctx context.Context, name string, ratingKeys []string) error {
	if f.err != nil {
		return f.err
	}
	f.name = name
	f.keys = ratingKeys
	return nil
}

type fakeNotifier struct {
	text string
	err  error
}

func (f *fakeNotifier) SendMessage(ctx context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func TestDeliverBothChannels(t *testing.T) {
	finder := &fakeFinder{keys: map[string]string{"Heat": "101", "Ran": "102"}}
	playlist := &fakePlaylist{}
	notifier := &fakeNotifier{}
	c := NewCoordinator(finder, playlist, notifier, "Movies", "Recomendado por IA", true, slog.New(slog.DiscardHandler))

	out := c.Deliver(context.Background(), []string{"Heat", "Ran"})

	if !out.PlaylistCreated || !out.TelegramSent {
		t.Errorf("Outcome = %+v, want both channels delivered", out)
	}
	if playlist.name != "Recomendado por IA" {
		t.Errorf("playlist name = %q", playlist.name)
	}
	if len(playlist.keys) != 2 || playlist.keys[0] != "101" || playlist.keys[1] != "102" {
		t.Errorf("playlist keys = %v", playlist.keys)
	}
	if !strings.Contains(notifier.text, "1. Heat") || !strings.Contains(notifier.text, "2. Ran") {
		t.Errorf("notification text = %q", notifier.text)
	}
}

func TestDeliverSkipsMissingTitles(t *testing.T) {
	finder := &fakeFinder{keys: map[string]string{"Heat": "101"}}
	playlist := &fakePlaylist{}
	c := NewCoordinator(finder, playlist, &fakeNotifier{}, "Movies", "Recomendado por IA", true, slog.New(slog.DiscardHandler))

	out := c.Deliver(context.Background(), []string{"Heat", "Hallucinated Film"})

	if !out.PlaylistCreated {
		t.Error("playlist should be created from the titles that resolved")
	}
	if out.NotFound != 1 {
		t.Errorf("NotFound = %d, want 1", out.NotFound)
	}
	if len(playlist.keys) != 1 || playlist.keys[0] != "101" {
		t.Errorf("playlist keys = %v", playlist.keys)
	}
}

func TestDeliverPlaylistFailureDoesNotBlockTelegram(t *testing.T) {
	finder := &fakeFinder{err: errors.New("plex down")}
	notifier := &fakeNotifier{}
	c := NewCoordinator(finder, &fakePlaylist{}, notifier, "Movies", "Recomendado por IA", true, slog.New(slog.DiscardHandler))

	out := c.Deliver(context.Background(), []string{"Heat"})

	if out.PlaylistCreated {
		t.Error("playlist should not be marked created")
	}
	if out.PlaylistError == "" {
		t.Error("playlist error missing from outcome")
	}
	if !out.TelegramSent {
		t.Error("telegram delivery should succeed independently")
	}
}

func TestDeliverTelegramFailureDoesNotBlockPlaylist(t *testing.T) {
	finder := &fakeFinder{keys: map[string]string{"Heat": "101"}}
	c := NewCoordinator(finder, &fakePlaylist{}, &fakeNotifier{err: errors.New("chat not found")}, "Movies", "Recomendado por IA", true, slog.New(slog.DiscardHandler))

	out := c.Deliver(context.Background(), []string{"Heat"})

	if !out.PlaylistCreated {
		t.Error("playlist delivery should succeed independently")
	}
	if out.TelegramSent || out.TelegramError == "" {
		t.Errorf("Outcome = %+v, want telegram failure recorded", out)
	}
}

func TestDeliverNoTitlesFound(t *testing.T) {
	finder := &fakeFinder{keys: map[string]string{}}
	c := NewCoordinator(finder, &fakePlaylist{}, nil, "Movies", "Recomendado por IA", true, slog.New(slog.DiscardHandler))

	out := c.Deliver(context.Background(), []string{"Ghost Film"})

	if out.PlaylistCreated {
		t.Error("no playlist should be created when nothing resolves")
	}
	if out.PlaylistError == "" {
		t.Error("expected a playlist error when no titles resolve")
	}
}

func TestDeliverPlaylistDisabled(t *testing.T) {
	playlist := &fakePlaylist{}
	notifier := &fakeNotifier{}
	c := NewCoordinator(&fakeFinder{}, playlist, notifier, "Movies", "Recomendado por IA", false, slog.New(slog.DiscardHandler))

	out := c.Deliver(context.Background(), []string{"Heat"})

	if out.PlaylistCreated || playlist.name != "" {
		t.Error("disabled playlist channel must not run")
	}
	if !out.TelegramSent {
		t.Error("telegram should still deliver")
	}
}

func TestDeliverNilNotifier(t *testing.T) {
	finder := &fakeFinder{keys: map[string]string{"Heat": "101"}}
	c := NewCoordinator(finder, &fakePlaylist{}, nil, "Movies", "Recomendado por IA", true, slog.New(slog.DiscardHandler))

	out := c.Deliver(context.Background(), []string{"Heat"})

	if !out.PlaylistCreated || out.TelegramSent {
		t.Errorf("Outcome = %+v", out)
	}
}

func TestDeliverEmptyTitles(t *testing.T) {
	playlist := &fakePlaylist{}
	notifier := &fakeNotifier{}
	c := NewCoordinator(&fakeFinder{}, playlist, notifier, "Movies", "Recomendado por IA", true, slog.New(slog.DiscardHandler))

	out := c.Deliver(context.Background(), nil)

	if out.PlaylistCreated || out.TelegramSent || playlist.name != "" || notifier.text != "" {
		t.Errorf("nothing should be delivered for an empty list, got %+v", out)
	}
}
