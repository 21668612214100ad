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

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satriahrh/notetaker/domain"
	"github.com/satriahrh/notetaker/internal/api"
	"github.com/satriahrh/notetaker/internal/auth"
	"github.com/satriahrh/notetaker/internal/config"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(g *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(false, func(c *config.Config) {
				if addr != "" {
					c.Server.Addr = addr
				}
			})
			if err != nil {
				return err
			}
			defer logger.Sync()

			pipeline, err := newPipeline(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			// Create Echo instance
			e := echo.New()
			e.HideBanner = true

			// Middleware
			e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
			e.Use(middleware.Logger())
			e.Use(middleware.Recover())
			e.Use(middleware.BodyLimit("2M"))

			var authenticator *auth.Authenticator
			if cfg.Server.JWTSecret != "" {
				authenticator, err = auth.NewAuthenticator(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
				if err != nil {
					return err
				}
			} else {
				logger.Warn("API authentication disabled; set NOTETAKER_JWT_SECRET to require bearer tokens")
			}

			api.InitRoutes(e, pipeline, authenticator, cfg.Pipeline.IncludeSOAP, logger.Named("api"))

			// Graceful shutdown
			serveErr := make(chan error, 1)
			go func() {
				if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
			}()

			logger.Info("Server started",
				zap.String("addr", cfg.Server.Addr),
				zap.String("provider", string(cfg.LLM.Provider)),
				zap.Bool("parallel", cfg.Pipeline.Parallel),
				zap.Bool("auth", authenticator != nil))

			// Wait for interrupt signal to gracefully shutdown the server
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-serveErr:
				logger.Error("Server stopped unexpectedly", zap.Error(err))
				return err
			case <-quit:
			}

			logger.Info("Server is shutting down...")

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := e.Shutdown(ctx); err != nil {
				logger.Error("Server forced to shutdown", zap.Error(err))
				return err
			}

			logger.Info("Server exited")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func newTokenCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token CLIENT_ID",
		Short: "Issue an API bearer token for a client",
		Long: `Sign a bearer token with the configured server secret (server.jwt_secret or
NOTETAKER_JWT_SECRET). Clients send it as "Authorization: Bearer <token>".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(true)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cfg.Server.JWTSecret == "" {
				return &domain.ConfigurationError{Field: "server.jwt_secret", Message: "required to issue tokens"}
			}
			authenticator, err := auth.NewAuthenticator(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
			if err != nil {
				return err
			}

			token, err := authenticator.GenerateClientToken(args[0])
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			printSuccess(fmt.Sprintf("Token for %s valid for %s", args[0], cfg.Server.TokenTTL))
			return nil
		},
	}
}
