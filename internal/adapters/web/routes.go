package web

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures the application routes.
// Routes that may trigger a live fetch pass through the rate limiter.
func SetupRoutes(app *fiber.App, handlers *Handlers, rateLimiter *RateLimiter) {
	limited := rateLimiter.Middleware()

	app.Get("/healthz", handlers.Healthz)

	// Landing page with profile and upload forms
	app.Get("/", handlers.Home)

	app.Post("/analyze", limited, handlers.Analyze)
	app.Post("/upload", handlers.Upload)

	// Shareable dashboard URL
	// Example: /profile/natgeo?limit=200
	app.Get("/profile/:username", limited, handlers.ViewProfile)
	app.Post("/refresh/:username/:limit", limited, handlers.Refresh)

	app.Get("/api/profile/:username/report", limited, handlers.APIReport)

	app.Get("/export/profile/:username/:limit", limited, handlers.ExportProfile)
	app.Get("/export/upload/:digest", handlers.ExportUpload)
}
