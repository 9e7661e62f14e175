package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/handlers"
)

func Setup(
	app *fiber.App,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
	metricsHandler fiber.Handler,
) {
	app.Get("/", healthHandler.Root)
	app.Get("/metrics", metricsHandler)

	api := app.Group("/api")
	api.Get("/health", healthHandler.Check)

	reports := api.Group("/reports")
	reports.Post("/", reportHandler.Create)
	reports.Get("/", reportHandler.List)
	reports.Get("/domain/:domain", reportHandler.History)
	reports.Put("/:id", reportHandler.Update)

	// Bulk channels: 10 req/min per IP
	bulk := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
	reports.Post("/batch-import", bulk, reportHandler.BatchImport)
	reports.Post("/fetch-external", bulk, reportHandler.FetchExternal)
}
