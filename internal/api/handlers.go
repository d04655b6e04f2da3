package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/jvaldes/plexcurator/internal/delivery"
	"github.com/jvaldes/plexcurator/internal/notify"
	"github.com/jvaldes/plexcurator/internal/sync"
	"github.com/jvaldes/plexcurator/internal/tasks"
)

// Syncer runs a full catalog upload to the assistant's vector store.
type Syncer interface {
	Run(ctx context.Context) (sync.Result, error)
}

// Recommender produces the list of recommended titles.
type Recommender interface {
	Recommend(ctx context.Context) ([]string, error)
}

// Deliverer fans titles out to the playlist and notification channels.
type Deliverer interface {
	Deliver(ctx context.Context, titles []string) delivery.Outcome
}

// Server wires the curator pipelines behind the HTTP surface. A nil
// notifier disables the post-sync notification.
type Server struct {
	syncer      Syncer
	recommender Recommender
	deliverer   Deliverer
	notifier    delivery.Notifier
	runner      *tasks.Runner
	logger      *slog.Logger
	version     string
}

func NewServer(syncer Syncer, recommender Recommender, deliverer Deliverer, notifier delivery.Notifier, runner *tasks.Runner, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		syncer:      syncer,
		recommender: recommender,
		deliverer:   deliverer,
		notifier:    notifier,
		runner:      runner,
		logger:      logger,
		version:     version,
	}
}

// NewRouter builds the chi router. Health and the service root stay open;
// everything that touches Plex or the assistant sits behind the API token.
func NewRouter(s *Server, apiToken string) http.Handler {
	r := chi.NewRouter()
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/health", handleHealth)
	r.Get("/", s.handleRoot)

	r.Group(func(r chi.Router) {
		r.Use(TokenAuth(apiToken))
		r.Post("/sync", s.handleSync)
		r.Post("/recommend", s.handleRecommend)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "plexcurator",
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "plexcurator",
		"version": s.version,
		"endpoints": map[string]string{
			"GET /health":     "service status",
			"POST /sync":      "upload the movie library to the assistant",
			"POST /recommend": "ask the assistant for recommendations (async=true|false)",
		},
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	task := s.runner.Submit("sync", func(ctx context.Context) error {
		res, err := s.syncer.Run(ctx)
		if err != nil {
			return err
		}
		if s.notifier != nil {
			if err := s.notifier.SendMessage(ctx, notify.SyncMessage(res.MovieCount)); err != nil {
				s.logger.Warn("sync notification failed", "error", err)
			}
		}
		return nil
	})

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Sincronización iniciada en segundo plano",
		"task_id": task.ID,
	})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("async") == "true" {
		task := s.runner.Submit("recommend", func(ctx context.Context) error {
			titles, err := s.recommender.Recommend(ctx)
			if err != nil {
				return err
			}
			s.deliverer.Deliver(ctx, titles)
			return nil
		})

		writeJSON(w, http.StatusAccepted, map[string]string{
			"message": "Recomendación iniciada en segundo plano",
			"task_id": task.ID,
		})
		return
	}

	titles, err := s.recommender.Recommend(r.Context())
	if err != nil {
		s.logger.Error("recommendation failed", "error", err)
		httpError(w, http.StatusBadGateway, "api_error", "no se pudieron generar recomendaciones: %v", err)
		return
	}

	out := s.deliverer.Deliver(r.Context(), titles)

	message := "Aquí tienes tus recomendaciones"
	if len(titles) == 0 {
		message = "No hay recomendaciones disponibles en este momento"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":          message,
		"titles":           out.Titles,
		"playlist_created": out.PlaylistCreated,
		"telegram_sent":    out.TelegramSent,
		"titles_not_found": out.NotFound,
	})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
