// Package cli wires configuration, storage and transports into the giftmind
// commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kerhoff/GiftMind/internal/config"
	"github.com/Kerhoff/GiftMind/pkg/logger"
)

// App carries what every subcommand needs once the root command has run.
type App struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewRootCmd builds the giftmind command tree.
func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:          "giftmind",
		Short:        "Track gift ideas for the people you care about",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		a.cfg = cfg
		a.logger = logger.New(cfg.LogLevel, cfg.LogFormat)
		return nil
	}

	cmd.AddCommand(
		newServeCmd(a),
		newBotCmd(a),
		newMigrateCmd(a),
	)
	return cmd
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func (a *App) signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			a.logger.Info("Received shutdown signal...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
