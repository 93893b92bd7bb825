package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"projdocs/docs"
	"projdocs/internal/app"
	"projdocs/internal/config"
	handlers "projdocs/internal/http/handler"
	"projdocs/internal/http/middleware"
	"projdocs/internal/logging"
	"projdocs/internal/otel"
)

// @title Project Document API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, nil)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("tracing_init_failed", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup_failed", zap.Error(err))
	}
	defer a.Close()

	httpMetrics, err := middleware.NewPrometheusMiddleware(a.Registry)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}

	srv := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    256 << 20,
	})

	srv.Use(otelfiber.Middleware())
	srv.Use(middleware.RequestID())
	srv.Use(middleware.Actor())
	srv.Use(middleware.Logger(log))
	srv.Use(httpMetrics.Handler())

	handlers.RegisterRoutes(srv, handlers.Deps{
		Store:     a.Backend,
		Documents: a.Documents,
		Standards: a.Standards,
		Catalog:   a.Catalog,
		Gatherer:  a.Registry,
	})

	// Swagger UI with dynamic host and scheme
	srv.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		_ = srv.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := ":" + cfg.Port
	log.Info("server_starting", zap.String("addr", addr), zap.String("store", a.Backend.Kind))
	if err := srv.Listen(addr); err != nil {
		log.Fatal("server_failed", zap.Error(err))
	}
}
