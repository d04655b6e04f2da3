package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/jvaldes/plexcurator/internal/api"
	"github.com/jvaldes/plexcurator/internal/assistant"
	"github.com/jvaldes/plexcurator/internal/config"
	"github.com/jvaldes/plexcurator/internal/delivery"
	"github.com/jvaldes/plexcurator/internal/notify"
	"github.com/jvaldes/plexcurator/internal/plex"
	"github.com/jvaldes/plexcurator/internal/recommend"
	"github.com/jvaldes/plexcurator/internal/sync"
	"github.com/jvaldes/plexcurator/internal/tasks"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the plexcurator server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show plexcurator status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func newAssistantClient(cfg config.Config) *assistant.Client {
	if cfg.OpenAI.BaseURL != "" {
		return assistant.NewClientWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.AssistantName, cfg.OpenAI.BaseURL)
	}
	return assistant.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.AssistantName)
}

func newNotifier(cfg config.Config) *notify.Telegram {
	if !cfg.Telegram.Enabled {
		return nil
	}
	if cfg.Telegram.BaseURL != "" {
		return notify.NewTelegramWithBaseURL(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.BaseURL)
	}
	return notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "plexcurator version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wire clients and pipelines.
	plexClient := plex.NewClient(cfg.Plex.URL, cfg.Plex.Token)
	assistantClient := newAssistantClient(cfg)

	syncer := sync.NewSyncer(plexClient, assistantClient, cfg.Plex.Library, logger)
	recommender := recommend.NewRecommender(
		plexClient,
		assistantClient,
		cfg.Plex.Library,
		cfg.Curator.RecommendationCount,
		cfg.Curator.HistoryLookback,
		logger,
	)

	// A disabled Telegram channel is a nil Notifier, not a nil *Telegram
	// hiding inside a non-nil interface.
	var telegramNotifier delivery.Notifier
	if tg := newNotifier(cfg); tg != nil {
		telegramNotifier = tg
	}
	coordinator := delivery.NewCoordinator(
		plexClient,
		plexClient,
		telegramNotifier,
		cfg.Plex.Library,
		cfg.Curator.PlaylistName,
		cfg.Curator.PlaylistEnabled,
		logger,
	)

	runner := tasks.NewRunner(logger)
	apiServer := api.NewServer(syncer, recommender, coordinator, telegramNotifier, runner, version, logger)
	handler := api.NewRouter(apiServer, cfg.Server.APIToken)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// MCP server on stdio, alongside the HTTP API.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Syncer:      syncer,
		Recommender: recommender,
		Deliverer:   coordinator,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("MCP stdio server error", "error", err)
		}
	}()
	logger.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		logger.Info("plexcurator listening", "addr", addr, "library", cfg.Plex.Library)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Let in-flight background work finish before the listener closes.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := runner.Shutdown(shutdownCtx); err != nil {
		logger.Warn("background tasks did not finish before shutdown", "error", err)
	}
	return srv.Shutdown(shutdownCtx)
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Plex", "%s (library %q)", cfg.Plex.URL, cfg.Plex.Library)
	printStatus("Model", "%s", cfg.OpenAI.Model)
	printStatus("Assistant", "%s", cfg.OpenAI.AssistantName)
	if cfg.Telegram.Enabled {
		printStatus("Telegram", "enabled (chat %s)", cfg.Telegram.ChatID)
	} else {
		printStatus("Telegram", "disabled")
	}
	if cfg.Curator.PlaylistEnabled {
		printStatus("Playlist", "%q", cfg.Curator.PlaylistName)
	} else {
		printStatus("Playlist", "disabled")
	}
	return nil
}
