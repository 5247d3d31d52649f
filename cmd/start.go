package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"user-import/core/loader"
	"user-import/core/logger"
	"user-import/core/metrics"
	"user-import/core/middleware/auth"
	"user-import/core/middleware/rayid"

	"user-import/feature/health"
	"user-import/feature/resolver"
	"user-import/feature/userimport"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "user-import/docs/swagger"
)

// @title User Import API
// @version 1.0
// @description Reconciles passwd and csv user snapshots into imported resolvers.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the user import server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		zap.ReplaceGlobals(a.logger)
		logg := a.logger

		a.ensureArchive(context.Background())

		importSvc := a.importService()
		resolverSvc := resolver.NewService(a.store, logg, a.cfg.Cache.Size,
			time.Duration(a.cfg.Cache.TTLSeconds)*time.Second)
		// Drop cached lookups as soon as a resolver changes
		importSvc.OnApplied(resolverSvc.Invalidate)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if a.events != nil {
			// Imports by other replicas and by the CLI
			if err := a.events.Subscribe(ctx, resolverSvc.Invalidate); err != nil {
				return err
			}
		} else if a.cfg.Cache.Size > 0 {
			logg.Info("Resolver cache only sees imports made by this process",
				zap.Int("ttl_seconds", a.cfg.Cache.TTLSeconds))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             a.cfg.Server.BodyLimit(),
		})

		mgr := loader.NewManager(logg)
		mgr.Register(userimport.NewFeature(importSvc))
		mgr.Register(resolver.NewFeature(resolverSvc))

		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request metrics
		app.Use(metrics.Middleware())

		// 3. Request logging
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 4. Public endpoints
		app.Get("/metrics", metrics.Handler())
		app.Get("/swagger/*", swagger.HandlerDefault)
		if err := health.NewFeature(a.db, a.client, a.cfg.Storage.Bucket, logg).Load(app); err != nil {
			return err
		}

		// 5. Auth for everything registered afterwards
		app.Use(auth.New(auth.Config{
			ApiKey: a.cfg.Server.ApiKey,
			Public: []string{"/metrics", "/swagger", "/health"},
		}))
		if !a.cfg.Server.AuthEnabled() {
			logg.Warn("SERVER_API_KEY is empty, the API is not protected")
		}

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("address", a.cfg.Server.Address()))
			errCh <- app.Listen(a.cfg.Server.Address())
		}()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-sig:
		}

		logg.Info("Shutting down server...")
		return app.ShutdownWithTimeout(30 * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
