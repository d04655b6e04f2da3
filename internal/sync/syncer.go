// Package sync implements the library synchronization pipeline: fetch
// the full catalog from the media server, build the corpus document, and
// replace the previous generation in the retrieval store.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/jvaldes/plexcurator/internal/catalog"
)

// CatalogLister fetches every item of a media library.
type CatalogLister interface {
	ListLibraryItems(ctx context.Context, libraryName string) ([]catalog.Item, error)
}

// CorpusStore manages the corpus in the external retrieval store.
type CorpusStore interface {
	EnsureAssistant(ctx context.Context) (string, error)
	EnsureVectorStore(ctx context.Context, assistantID string) (string, error)
	DeleteCorpusFiles(ctx context.Context, storeID string) error
	UploadCorpus(ctx context.Context, storeID string, doc catalog.Document) (string, error)
}

// Result reports one completed sync run.
type Result struct {
	MovieCount    int    `json:"movies_count"`
	FileID        string `json:"file_id"`
	VectorStoreID string `json:"vector_store_id"`
	AssistantID   string `json:"assistant_id"`
}

// Syncer runs the synchronization pipeline. At most one run may be in
// flight; concurrent attempts are rejected rather than queued.
type Syncer struct {
	plex    CatalogLister
	store   CorpusStore
	library string
	logger  *slog.Logger

	inFlight atomic.Bool
}

// ErrSyncInFlight is returned when a sync is requested while another is
// still running.
var ErrSyncInFlight = fmt.Errorf("a library sync is already running")

// NewSyncer creates a Syncer. A nil logger falls back to slog.Default().
func NewSyncer(plex CatalogLister, store CorpusStore, library string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		plex:    plex,
		store:   store,
		library: library,
		logger:  logger,
	}
}

// Run executes one sync, guarded by the in-flight flag.
//
// The catalog fetch happens before any mutation of the retrieval store:
// if the media server is unreachable, the previous corpus stays intact.
// Once the fetch succeeds, the old corpus files are deleted and the new
// document uploaded, so the store never holds two generations at once.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrSyncInFlight
	}
	defer s.inFlight.Store(false)

	s.logger.Info("library sync started", "library", s.library)

	items, err := s.plex.ListLibraryItems(ctx, s.library)
	if err != nil {
		return Result{}, fmt.Errorf("fetching catalog: %w", err)
	}
	s.logger.Info("catalog fetched", "movies", len(items))

	doc, err := catalog.BuildCorpus(items)
	if err != nil {
		return Result{}, err
	}

	assistantID, err := s.store.EnsureAssistant(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("preparing assistant: %w", err)
	}
	storeID, err := s.store.EnsureVectorStore(ctx, assistantID)
	if err != nil {
		return Result{}, fmt.Errorf("preparing vector store: %w", err)
	}

	if err := s.store.DeleteCorpusFiles(ctx, storeID); err != nil {
		return Result{}, fmt.Errorf("clearing previous corpus: %w", err)
	}

	fileID, err := s.store.UploadCorpus(ctx, storeID, doc)
	if err != nil {
		return Result{}, fmt.Errorf("uploading corpus: %w", err)
	}

	s.logger.Info("library sync completed",
		"movies", doc.Count,
		"file_id", fileID,
		"vector_store_id", storeID,
	)

	return Result{
		MovieCount:    doc.Count,
		FileID:        fileID,
		VectorStoreID: storeID,
		AssistantID:   assistantID,
	}, nil
}
