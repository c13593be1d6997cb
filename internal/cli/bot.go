package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/Kerhoff/GiftMind/internal/app"
	"github.com/Kerhoff/GiftMind/internal/handlers"
	"github.com/Kerhoff/GiftMind/internal/metrics"
	"github.com/Kerhoff/GiftMind/internal/remote"
	"github.com/Kerhoff/GiftMind/internal/remote/httpstore"
	"github.com/Kerhoff/GiftMind/internal/remote/memstore"
	"github.com/Kerhoff/GiftMind/internal/telegram"
)

func newBotCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram front-end",
		Long: "Run one GiftMind client per Telegram chat. STORE_URL points at a running " +
			"store service, or memory:// for a throwaway in-process store.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBot(cmd.Context())
		},
	}
}

// clientStore returns the auth surface and the token-bound store view the
// chat clients use.
func (a *App) clientStore() (remote.Auth, app.StoreFactory) {
	if a.cfg.MemoryStore() {
		a.logger.Warn("STORE_URL is memory://, data is lost on restart")
		s := memstore.New()
		return s.Unscoped().Auth(), s.As
	}
	c := httpstore.New(a.cfg.StoreURL, a.logger)
	return c.Auth(), c.As
}

func (a *App) runBot(ctx context.Context) error {
	if err := a.cfg.RequireBot(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := a.signalContext(ctx)
	defer cancel()

	a.logger.Info("Starting GiftMind bot...")

	m := metrics.New()
	bot, err := telegram.NewBot(a.cfg.TelegramToken, a.logger, m)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	authAPI, storeFactory := a.clientStore()
	prompter := telegram.NewPrompter(bot.Sender(), a.cfg.ConfirmTimeout, a.logger)

	apps := handlers.NewApps(func(chatID int64) *app.App {
		confirm := func(ctx context.Context, prompt string) (bool, error) {
			return prompter.Ask(ctx, chatID, prompt)
		}
		return app.New(authAPI, storeFactory, confirm, a.logger)
	}, m, a.logger)
	defer apps.Close()

	handlers.Register(bot.Router(), apps, prompter, a.logger)

	go apps.StartRefreshScheduler(ctx, a.cfg.RefreshInterval, func(chatID int64, text string) {
		if err := bot.SendMessage(chatID, text); err != nil {
			a.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to notify chat")
		}
	})

	metricsServer := &http.Server{
		Addr:              ":" + a.cfg.PrometheusPort,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		a.logger.Infof("Metrics server listening on :%s", a.cfg.PrometheusPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf("Metrics server error: %v", err)
		}
	}()

	a.logger.Info("GiftMind bot started successfully")

	var result *multierror.Error
	if err := bot.Start(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("bot error: %w", err))
	}
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to shut down metrics server: %w", err))
	}

	a.logger.Info("GiftMind bot stopped")
	return result.ErrorOrNil()
}
