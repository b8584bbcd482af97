package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/student-records/apiserver/config"
	"github.com/student-records/apiserver/internal/logging"
	"github.com/student-records/apiserver/internal/observability"
	"github.com/student-records/apiserver/internal/server"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// version is set at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the student records API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		logs, err := logging.Init(cfg.LogLevel, cfg.Env)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logs.Closer()
		log := logs.Base

		flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version)
		if err != nil {
			log.Warn("sentry disabled", zap.Error(err))
		}
		defer flush()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := server.New(ctx, cfg, log)
		if err != nil {
			observability.CaptureErr(err)
			return fmt.Errorf("failed to start server: %w", err)
		}

		if err := serve(ctx, srv, log); err != nil {
			observability.CaptureErr(err)
			return err
		}
		return nil
	},
}

// lifecycle is the part of server.Server that serve drives.
type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serve runs srv until it stops on its own or ctx is cancelled. Shutdown is
// called in both cases so the store and broker connections are released.
func serve(ctx context.Context, srv lifecycle, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	var startErr error
	running := true
	select {
	case startErr = <-errCh:
		running = false
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)

	if startErr != nil {
		if shutdownErr != nil {
			log.Warn("shutdown after server error", zap.Error(shutdownErr))
		}
		return fmt.Errorf("server error: %w", startErr)
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}
	if running {
		return <-errCh
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
