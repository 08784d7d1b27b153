package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sncix/pinyin-annotation/config"
	"github.com/sncix/pinyin-annotation/internal/api/annotate"
	"github.com/sncix/pinyin-annotation/internal/api/healthcheck"
	"github.com/sncix/pinyin-annotation/internal/middleware"
	"github.com/sncix/pinyin-annotation/internal/services/pipeline"
	"github.com/sncix/pinyin-annotation/pkg/apperror"
	"github.com/sncix/pinyin-annotation/pkg/logger"
)

func newApp(cfg config.Config, log *logrus.Logger) (*fiber.App, error) {
	annotator, err := pipeline.Build(cfg, log)
	if err != nil {
		return nil, err
	}
	serverLog := logger.Named(log, string(config.ModuleServer))

	app := fiber.New(fiber.Config{
		AppName:   cfg.Server.AppName,
		BodyLimit: cfg.Server.BodyLimit,
	})
	app.Use(middleware.PanicRecoveryMiddleware(serverLog))

	// routes
	healthcheck.RegisterRoutes(app)

	limiter := middleware.NewConnectionLimiter(cfg.Server.Concurrency)
	timeout := time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second
	annotate.RegisterRoutes(app,
		annotate.NewHandler(annotator, apperror.NewWriter(serverLog), timeout),
		middleware.ConnectionLimiterMiddleware(limiter),
	)
	return app, nil
}

func serve(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, closer, err := logger.New(logger.Options{Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer closer.Close()

	app, err := newApp(cfg, log)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	if err := app.Listen(addr); err != nil {
		log.WithError(err).Error("server error")
		return err
	}
	return nil
}

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:          "pinyin-annotate-api",
		Short:        "Serve phrase annotation over HTTP",
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			return serve(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "config.yml", "path to the YAML config file")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
