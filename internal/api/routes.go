package api

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"harvest-analytics-api/internal/config"
)

func SetupRoutes(app *fiber.App, db *sql.DB, cfg *config.Config) {
	handlers := NewHandlers(db, cfg)

	// Health check endpoint
	app.Get("/healthz", handlers.GetHealthz)

	// Ingest endpoints
	app.Post("/ingest/xlsx", handlers.PostIngestXLSX)
	app.Post("/ingest/csv", handlers.PostIngestCSV)

	// Analysis endpoints
	app.Get("/analysis", handlers.GetAnalysis)
	app.Get("/analysis/anomalies", handlers.GetAnomalies)

	// Upload registry
	app.Get("/uploads", handlers.GetUploads)
	app.Get("/uploads/:id", handlers.GetUpload)

	// Persisted targets
	app.Get("/settings", handlers.GetSettings)
	app.Put("/settings", handlers.PutSettings)
}
