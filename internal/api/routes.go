package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RegisterRoutes registers all HTTP routes on the Fiber app. cooldown may be nil.
func RegisterRoutes(app *fiber.App, cooldown HealthChecker, handler *BridgeHandler) {
	app.Use(RequestID())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"cooldown_store": "ok",
		}
		status := "ok"
		code := fiber.StatusOK

		if cooldown != nil {
			healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := cooldown.HealthCheck(healthCtx); err != nil {
				checks["cooldown_store"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// API routes
	v1 := app.Group("/api/v1")
	v1.Post("/account-dump", handler.AccountDumpHandler)
	v1.Get("/settings", handler.SettingsHandler)
	v1.Post("/launch", handler.LaunchHandler)
}
