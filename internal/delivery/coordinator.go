package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jvaldes/plexcurator/internal/catalog"
	"github.com/jvaldes/plexcurator/internal/notify"
)

// ItemFinder resolves a recommended title back to a library item.
type ItemFinder interface {
	FindItemByTitle(ctx context.Context, library, title string) (catalog.Item, bool, error)
}

// PlaylistWriter replaces the curated playlist on the media server.
type PlaylistWriter interface {
	CreateOrReplacePlaylist(ctx context.Context, name string, ratingKeys []string) error
}

// Notifier pushes the recommendation list to the user.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}

// Outcome reports what each delivery channel managed to do. Channels are
// independent, so a failed playlist does not suppress the notification and
// vice versa.
type Outcome struct {
	Titles          []string `json:"titles"`
	PlaylistCreated bool     `json:"playlist_created"`
	TelegramSent    bool     `json:"telegram_sent"`
	NotFound        int      `json:"titles_not_found,omitempty"`
	PlaylistError   string   `json:"playlist_error,omitempty"`
	TelegramError   string   `json:"telegram_error,omitempty"`
}

// Coordinator fans the recommended titles out to the configured channels.
type Coordinator struct {
	finder          ItemFinder
	playlist        PlaylistWriter
	notifier        Notifier
	library         string
	playlistName    string
	playlistEnabled bool
	logger          *slog.Logger
}

func NewCoordinator(finder ItemFinder, playlist PlaylistWriter, notifier Notifier, library, playlistName string, playlistEnabled bool, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		finder:          finder,
		playlist:        playlist,
		notifier:        notifier,
		library:         library,
		playlistName:    playlistName,
		playlistEnabled: playlistEnabled,
		logger:          logger,
	}
}

// Deliver runs both channels concurrently and never returns an error for a
// channel failure; those land in the Outcome so the caller can still report
// partial success. An empty title list short-circuits to an empty Outcome.
func (c *Coordinator) Deliver(ctx context.Context, titles []string) Outcome {
	out := Outcome{Titles: titles}
	if len(titles) == 0 {
		return out
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	if c.playlistEnabled && c.playlist != nil {
		g.Go(func() error {
			created, notFound, err := c.buildPlaylist(gctx, titles)
			mu.Lock()
			defer mu.Unlock()
			out.PlaylistCreated = created
			out.NotFound = notFound
			if err != nil {
				out.PlaylistError = err.Error()
				c.logger.Error("playlist delivery failed", "error", err)
			}
			return nil
		})
	}

	if c.notifier != nil {
		g.Go(func() error {
			err := c.notifier.SendMessage(gctx, notify.RecommendationsMessage(titles))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.TelegramError = err.Error()
				c.logger.Error("telegram delivery failed", "error", err)
				return nil
			}
			out.TelegramSent = true
			return nil
		})
	}

	g.Wait()
	return out
}

func (c *Coordinator) buildPlaylist(ctx context.Context, titles []string) (created bool, notFound int, err error) {
	keys := make([]string, 0, len(titles))
	for _, title := range titles {
		item, ok, err := c.finder.FindItemByTitle(ctx, c.library, title)
		if err != nil {
			return false, notFound, fmt.Errorf("find %q: %w", title, err)
		}
		if !ok {
			notFound++
			c.logger.Warn("recommended title not in library", "title", title)
			continue
		}
		keys = append(keys, item.RatingKey)
	}

	if len(keys) == 0 {
		return false, notFound, fmt.Errorf("none of the %d recommended titles were found in the library", len(titles))
	}

	if err := c.playlist.CreateOrReplacePlaylist(ctx, c.playlistName, keys); err != nil {
		return false, notFound, fmt.Errorf("create playlist: %w", err)
	}
	c.logger.Info("playlist replaced", "name", c.playlistName, "items", len(keys), "not_found", notFound)
	return true, notFound, nil
}
