package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"projdocs/internal/classification"
	"projdocs/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	Store     Pinger
	Documents service.DocumentService
	Standards service.StandardsService
	Catalog   *classification.Catalog
	// Gatherer backs /metrics; nil leaves the endpoint unregistered.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.Store))
	app.Get("/healthz", LivenessProbe())
	if d.Gatherer != nil {
		app.Get("/metrics", Metrics(d.Gatherer))
	}

	app.Get("/projects/:project/documents", ListDocuments(d.Documents))
	app.Post("/projects/:project/documents", UploadDocument(d.Documents, d.Catalog))
	app.Post("/projects/:project/folder", EnsureProjectFolder(d.Documents))
	app.Post("/projects/:project/standards", PromoteStandards(d.Standards))
	app.Post("/projects/:project/templates", CopyTemplates(d.Standards))

	app.Get("/folders", ListFolderContents(d.Documents))
	app.Post("/folders", CreateFolder(d.Documents))

	app.Delete("/documents/:id", DeleteDocument(d.Documents))
	app.Post("/documents/:id/checkout", CheckoutDocument(d.Documents))
	app.Post("/documents/:id/checkin", CheckinDocument(d.Documents))
	app.Get("/documents/:id/versions", DocumentVersions(d.Documents))

	app.Get("/standards", ListStandards(d.Standards))
	app.Get("/standards/next-version", NextVersion(d.Standards))
	app.Post("/standards", UploadStandard(d.Standards))

	app.Get("/classification/options", ClassificationOptions(d.Catalog))
	app.Get("/classification/folder", ClassificationFolder(d.Catalog))
}

// HealthCheck godoc
// @Summary Readiness check
// @Description Checks the backing store is reachable.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(p Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if p != nil {
			if err := p.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics exposes g in the Prometheus text format.
func Metrics(g prometheus.Gatherer) fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return func(c *fiber.Ctx) error {
		h(c.Context())
		return nil
	}
}
