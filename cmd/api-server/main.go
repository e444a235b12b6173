package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hackgods/carehub/internal/app"
	"github.com/hackgods/carehub/internal/config"
	"github.com/hackgods/carehub/internal/db"
	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "api-server",
		Short:        "carehub patient, provider and consultation API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config load error: %w", err)
	}
	logger.New(os.Stdout, cfg.LogLevel, cfg.Env)
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg config.Config) error {
	log.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancelConnect := context.WithTimeout(rootCtx, 10*time.Second)
	a, err := app.New(connectCtx, cfg)
	cancelConnect()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("error closing backends")
		}
	}()

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.HTTPPort),
		Handler:           a.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-rootCtx.Done():
	}

	log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.PostgresDSN == "" {
				return errors.New("POSTGRES_DSN is required")
			}
			if err := db.Migrate(cfg.PostgresDSN); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.PostgresDSN == "" {
				return errors.New("POSTGRES_DSN is required")
			}
			if err := db.Rollback(cfg.PostgresDSN, steps); err != nil {
				return err
			}
			log.Info().Int("steps", steps).Msg("migrations rolled back")
			return nil
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(downCmd)

	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a caller using the configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, _ := cmd.Flags().GetString("caller")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if caller == "" {
				return errors.New("--caller is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			v := identity.NewVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience)
			token, err := v.Issue(identity.Caller(caller), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("caller", "", "Caller identity to put in the token subject")
	cmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	return cmd
}
