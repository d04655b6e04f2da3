package recommend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jvaldes/plexcurator/internal/catalog"
	"github.com/jvaldes/plexcurator/internal/titles"
)

// HistoryLister reads the recent viewing history from the media server.
type HistoryLister interface {
	ListRecentHistory(ctx context.Context, library string, limit int) ([]catalog.Item, error)
}

// Asker runs a question against the file-search assistant.
type Asker interface {
	EnsureAssistant(ctx context.Context) (string, error)
	EnsureVectorStore(ctx context.Context, assistantID string) (string, error)
	Ask(ctx context.Context, assistantID, prompt string) (string, error)
}

// Recommender asks the assistant for unwatched titles grounded on the
// synced library corpus and the user's recent history.
type Recommender struct {
	plex      HistoryLister
	assistant Asker
	library   string
	count     int
	lookback  int
	logger    *slog.Logger
}

func NewRecommender(plex HistoryLister, assistant Asker, library string, count, lookback int, logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommender{
		plex:      plex,
		assistant: assistant,
		library:   library,
		count:     count,
		lookback:  lookback,
		logger:    logger,
	}
}

// Recommend returns the parsed titles from the assistant's answer. An empty
// slice with a nil error means the assistant answered but no titles could be
// extracted, which callers treat as "no recommendations today" rather than a
// failure.
func (r *Recommender) Recommend(ctx context.Context) ([]string, error) {
	assistantID, err := r.assistant.EnsureAssistant(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensure assistant: %w", err)
	}
	if _, err := r.assistant.EnsureVectorStore(ctx, assistantID); err != nil {
		return nil, fmt.Errorf("ensure vector store: %w", err)
	}

	var history []catalog.Item
	if r.lookback > 0 {
		history, err = r.plex.ListRecentHistory(ctx, r.library, r.lookback)
		if err != nil {
			return nil, fmt.Errorf("list history: %w", err)
		}
	}

	prompt := buildPrompt(history, r.count)
	r.logger.Debug("asking assistant", "history_items", len(history), "count", r.count)

	answer, err := r.assistant.Ask(ctx, assistantID, prompt)
	if err != nil {
		return nil, fmt.Errorf("ask assistant: %w", err)
	}

	parsed := titles.Parse(answer, r.count)
	r.logger.Info("recommendations parsed", "titles", len(parsed))
	return parsed, nil
}
