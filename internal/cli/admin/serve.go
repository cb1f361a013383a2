package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/noterag/noterag/internal/api/handlers"
	"github.com/noterag/noterag/internal/database"
	"github.com/noterag/noterag/internal/jobs"
	"github.com/noterag/noterag/internal/search"
	"github.com/noterag/noterag/internal/server"
	"github.com/noterag/noterag/internal/service"
	"github.com/noterag/noterag/internal/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the noterag API server, the background index worker and the keyword index",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides NOTERAG_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", "file://migrations", "Migration source URL")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, logger := rt.cfg, rt.logger

	if cfg.HasSentry() {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: cfg.TracesSampleRate(),
			Debug:            cfg.Debug,
			Logger:           logger,
		})
		if err != nil {
			logger.Warn("telemetry init failed, continuing without tracing", zap.Error(err))
		} else {
			defer shutdownTelemetry()
		}
	}

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		source, _ := cmd.Flags().GetString("migrations")
		if err := runMigrations(cfg.DatabaseURL, source, logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	keywords, err := search.NewNoteIndex()
	if err != nil {
		return err
	}
	defer keywords.Close()

	live, err := rt.notes.ListAll(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to load notes for keyword index: %w", err)
	}
	if err := keywords.IndexAll(ctx, live); err != nil {
		return err
	}
	indexed, err := keywords.Count()
	if err != nil {
		return fmt.Errorf("failed to count keyword index: %w", err)
	}
	logger.Info("keyword index built", zap.Int("notes", len(live)), zap.Uint64("indexed", indexed))

	queue := jobs.NewMemoryQueue()
	ragSvc := rt.ragService()
	noteSvc := service.NewNoteService(rt.notes, queue, keywords, logger)

	indexWorker := jobs.NewIndexWorker(queue, rt.notes, ragSvc, keywords, logger)
	worker := jobs.NewWorker(indexWorker, cfg.IndexInterval, logger)
	go worker.Start(context.Background())

	router := server.NewRouter(server.RouterConfig{
		NoteHandler:    handlers.NewNoteHandler(noteSvc),
		RAGHandler:     handlers.NewRAGHandler(ragSvc),
		Logger:         logger,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		worker.Stop()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// stop after the server so the final flush sees every accepted write
	worker.Stop()

	logger.Info("server exited", zap.Int("pending_index_jobs", queue.Len()))
	return nil
}

func runMigrations(databaseURL, source string, logger *zap.Logger) error {
	res, err := database.Migrate(databaseURL, source)
	if err != nil {
		return err
	}

	switch {
	case res.Empty:
		logger.Info("migrations: no migrations applied")
	case res.Applied:
		logger.Info("migrations: applied successfully", zap.Uint("version", res.Version))
	default:
		logger.Info("migrations: database is up to date", zap.Uint("version", res.Version))
	}
	return nil
}
