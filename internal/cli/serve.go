package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/Kerhoff/GiftMind/internal/api"
	"github.com/Kerhoff/GiftMind/internal/auth"
	"github.com/Kerhoff/GiftMind/internal/config"
	"github.com/Kerhoff/GiftMind/internal/metrics"
	"github.com/Kerhoff/GiftMind/internal/repository"
	"github.com/Kerhoff/GiftMind/internal/repository/memory"
	"github.com/Kerhoff/GiftMind/internal/repository/postgres"
	"github.com/Kerhoff/GiftMind/internal/service"
	"github.com/Kerhoff/GiftMind/migrations"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the store service HTTP API",
		Long: "Run the auth and CRUD store the bot talks to. Data is kept in Postgres when " +
			"DATABASE_URL is set and in memory otherwise.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

type repositories struct {
	users      repository.UserRepository
	recipients repository.RecipientRepository
	ideas      repository.GiftIdeaRepository
	close      func() error
}

// openRepositories connects to Postgres and applies pending migrations, or
// falls back to the in-memory repositories without DATABASE_URL.
func (a *App) openRepositories(ctx context.Context) (*repositories, error) {
	if a.cfg.DatabaseURL == "" {
		a.logger.Warn("DATABASE_URL is not set, data is kept in memory")
		db := memory.New()
		return &repositories{
			users:      db.Users(),
			recipients: db.Recipients(),
			ideas:      db.Ideas(),
			close:      func() error { return nil },
		}, nil
	}

	db, err := config.NewDatabase(ctx, a.cfg.DatabaseURL, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(migrations.FS); err != nil {
		db.Close()
		return nil, err
	}

	return &repositories{
		users:      postgres.NewUserRepository(db.DB),
		recipients: postgres.NewRecipientRepository(db.DB),
		ideas:      postgres.NewGiftIdeaRepository(db.DB),
		close:      db.Close,
	}, nil
}

func (a *App) serve(ctx context.Context) error {
	if err := a.cfg.RequireServer(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := a.signalContext(ctx)
	defer cancel()

	a.logger.Info("Starting GiftMind store service...")

	repos, err := a.openRepositories(ctx)
	if err != nil {
		return err
	}

	issuer := auth.NewIssuer([]byte(a.cfg.JWTSecret), a.cfg.TokenTTL)
	svc := service.New(a.logger, issuer, repos.users, repos.recipients, repos.ideas)
	m := metrics.New()

	apiServer := api.NewServer(svc, m, a.logger)
	httpServer := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server listening on :%s", a.cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var result *multierror.Error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("HTTP server error: %w", err))
		}
	}

	a.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to shut down HTTP server: %w", err))
	}
	if err := repos.close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to close database: %w", err))
	}

	a.logger.Info("GiftMind store service stopped")
	return result.ErrorOrNil()
}
