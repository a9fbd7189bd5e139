package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/stwalsh4118/reclaim/internal/config"
	"github.com/stwalsh4118/reclaim/internal/handlers"
	"github.com/stwalsh4118/reclaim/internal/logger"
	"github.com/stwalsh4118/reclaim/internal/middleware"
	"github.com/stwalsh4118/reclaim/internal/postalcode"
	"github.com/stwalsh4118/reclaim/internal/services"
)

const (
	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	var withDB bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve postal code lookups and address checks over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, withDB)
		},
	}
	cmd.Flags().BoolVar(&withDB, "with-db", false, "Connect to the target database and report it in readiness checks")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, withDB bool) error {
	log := logger.New(cfg.Server.Env)
	log.Info("Starting reclaim API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	index, err := postalcode.Load(cfg.Import.PostalCodesFile)
	if err != nil {
		return err
	}
	log.Info("Postal code index loaded", map[string]interface{}{"ranges": index.Len()})

	var db handlers.Pinger
	if withDB {
		conn, err := connect(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer conn.Close()
		db = conn
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           newRouter(cfg, log, index, db),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
		return err
	}
	log.Info("Server exited", nil)
	return nil
}

// newRouter wires middleware and routes. db may be nil.
func newRouter(cfg *config.Config, log *logger.Logger, index *postalcode.Index, db handlers.Pinger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	health := handlers.NewHealthHandler(db, index, cfg.Server.Env)
	router.GET("/health", health.Health)
	router.GET("/health/ready", health.Ready)

	addresses := handlers.NewAddressHandler(services.NewAddressService(index, log))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", health.Info)
		v1.GET("/postal-codes/:code", addresses.PostalCode)
		v1.GET("/addresses/check", addresses.CheckAddress)
	}
	return router
}
