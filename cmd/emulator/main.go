package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/config"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/logging"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/router"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "emulator",
		Short:         "Local server implementing the hosted auth and REST contract",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and serve the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			database, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if cfg.LogLevel != "dev" {
				gin.SetMode(gin.ReleaseMode)
			}
			engine := router.NewFromDB(database, router.Options{
				APIKey:      cfg.APIKey,
				JWTSecret:   cfg.Emulator.JWTSecret,
				TokenTTL:    cfg.Emulator.TokenTTL,
				CORSOrigins: cfg.Emulator.CORSOrigins,
				Logger:      logger.Named("http"),
			})

			server := &http.Server{
				Addr:              ":" + cfg.Emulator.Port,
				Handler:           engine,
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("emulator listening", zap.String("addr", server.Addr), zap.String("db", cfg.Emulator.DBPath))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("run server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			database, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			logger.Info("migrations applied successfully", zap.String("db", cfg.Emulator.DBPath))
			return nil
		},
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
