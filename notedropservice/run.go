// Package notedropservice wires configuration, storage, model and maps
// clients into the HTTP server and runs it until shutdown.
package notedropservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/notedrop/notedrop-server/internal/api"
	"github.com/notedrop/notedrop-server/internal/assistant"
	"github.com/notedrop/notedrop-server/internal/auth"
	"github.com/notedrop/notedrop-server/internal/config"
	"github.com/notedrop/notedrop-server/internal/llm"
	"github.com/notedrop/notedrop-server/internal/logger"
	"github.com/notedrop/notedrop-server/internal/maps"
	"github.com/notedrop/notedrop-server/internal/services"
	"github.com/notedrop/notedrop-server/internal/store"
	"github.com/notedrop/notedrop-server/internal/store/postgres"
	"github.com/notedrop/notedrop-server/internal/store/sqlite"
)

// Run starts the notedrop HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("notedrop-service")

	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("llm_model", cfg.LLMModel).
		Msg("notedrop service starting")

	ctx, stop := newServerContext()
	defer stop()

	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Store adapter unavailable")
		return err
	}

	llmClient, err := llm.NewGenAIClient(ctx, cfg.LLMAPIKey, cfg.LLMModel)
	if err != nil {
		log.Error().Err(err).Msg("LLM client unavailable")
		return err
	}
	distClient := maps.New(cfg.MapsAPIKey)

	router := buildRouter(st, llmClient, distClient, cfg, log)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// newStore selects the configured driver. SQLite bootstraps its own
// schema; Postgres schema is ensured once at startup.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return postgres.NewWithDB(db), nil
	case "sqlite":
		return sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// buildRouter constructs every collaborator once and wires the routes.
func buildRouter(st store.Store, llmClient llm.Client, distClient *maps.Client, cfg *config.Config, log zerolog.Logger) http.Handler {
	authorizer := auth.NewStaticAuthorizer(cfg.APIKeys, !cfg.IsProduction())

	return api.NewRouter(api.Deps{
		Store:      st,
		Entries:    services.NewEntryService(st),
		Classifier: assistant.NewClassifier(llmClient, st, log),
		Chat:       assistant.NewChatService(llmClient, st, distClient, log),
		Digest:     assistant.NewDigestService(llmClient, st, log),
		Plans:      assistant.NewPlanService(llmClient, st, log),
		Distance:   distClient,
		Authorizer: authorizer,
	})
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Model-backed endpoints block on the upstream call, so the write
		// window is wider than the usual 15s.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
