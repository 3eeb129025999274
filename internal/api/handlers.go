package api

import (
	"database/sql"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"harvest-analytics-api/internal/config"
	"harvest-analytics-api/internal/ingest"
	"harvest-analytics-api/internal/models"
	"harvest-analytics-api/internal/pipeline"
	"harvest-analytics-api/internal/storage"
)

type Handlers struct {
	db        *sql.DB
	store     *storage.Store
	processor *ingest.FileProcessor
	pipeline  *pipeline.Pipeline
	defaults  models.Targets
}

func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	store := storage.New(db)
	defaults := models.Targets{
		DailyTarget:    cfg.DefaultDailyTarget,
		RotationTarget: cfg.DefaultRotationTarget,
	}

	return &Handlers{
		db:        db,
		store:     store,
		processor: ingest.NewFileProcessor(store, cfg.SerialOffset(), cfg.AllowUnsafeDuplicateIngest),
		pipeline:  pipeline.New(store, defaults),
		defaults:  defaults,
	}
}

// GetHealthz provides a health check endpoint for container deployments
func (h *Handlers) GetHealthz(c *fiber.Ctx) error {
	if err := h.db.Ping(); err != nil {
		return c.Status(503).JSON(fiber.Map{
			"status":  "unhealthy",
			"error":   "database connection failed",
			"details": err.Error(),
		})
	}

	var count int
	if err := h.db.QueryRow("SELECT COUNT(*) FROM uploads").Scan(&count); err != nil {
		return c.Status(503).JSON(fiber.Map{
			"status":  "unhealthy",
			"error":   "database query failed",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  "connected",
		"uploads":   count,
	})
}

func (h *Handlers) PostIngestXLSX(c *fiber.Ctx) error {
	fileData, filename, err := readUploadedFile(c)
	if err != nil {
		return err
	}

	response, err := h.processor.ProcessXLSX(fileData, filename)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	if response.Status == "already_ingested" {
		return c.Status(409).JSON(response)
	}
	return c.JSON(response)
}

func (h *Handlers) PostIngestCSV(c *fiber.Ctx) error {
	fileData, filename, err := readUploadedFile(c)
	if err != nil {
		return err
	}

	kind := models.SheetKind(c.Query("kind"))
	switch kind {
	case "", models.SheetProduction, models.SheetPotential, models.SheetMeta, models.SheetSeason:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "invalid kind, use production|potential|meta|season"})
	}

	response, err := h.processor.ProcessCSV(fileData, filename, kind)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	if response.Status == "already_ingested" {
		return c.Status(409).JSON(response)
	}
	return c.JSON(response)
}

// readUploadedFile pulls the multipart "file" part; failures surface as
// fiber errors so the app-level error handler renders them.
func readUploadedFile(c *fiber.Ctx) ([]byte, string, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	fileReader, err := file.Open()
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusInternalServerError, "failed to open file")
	}
	defer fileReader.Close()

	fileData, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusInternalServerError, "failed to read file")
	}

	return fileData, file.Filename, nil
}

// GetAnalysis runs the full pipeline over the stored tables and returns
// the analysis result together with the validation verdict.
func (h *Handlers) GetAnalysis(c *fiber.Ctx) error {
	result, validation, err := h.pipeline.Run()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"analysis":   result,
		"validation": validation,
	})
}

func (h *Handlers) GetAnomalies(c *fiber.Ctx) error {
	validation, err := h.pipeline.Validate()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(validation)
}

func (h *Handlers) GetUploads(c *fiber.Ctx) error {
	limit := 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}

	before, beforeID, err := DecodeCursor(c.Query("cursor"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	uploads, err := h.store.ListUploads(before, beforeID, limit+1)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	var nextCursor *string
	if len(uploads) > limit {
		uploads = uploads[:limit]
		last := uploads[len(uploads)-1]
		cursor := EncodeCursor(last.UploadedAt, last.ID)
		nextCursor = &cursor
	}

	return c.JSON(models.PaginatedResponse{Items: uploads, NextCursor: nextCursor})
}

func (h *Handlers) GetUpload(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid upload id"})
	}

	upload, err := h.store.GetUpload(id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	if upload == nil {
		return c.Status(404).JSON(fiber.Map{"error": "upload not found"})
	}
	return c.JSON(upload)
}

type settingsPayload struct {
	DailyTarget       *float64 `json:"daily_target"`
	RotationTarget    *float64 `json:"rotation_target"`
	SeasonAccumulated *float64 `json:"season_accumulated"`
}

func (h *Handlers) GetSettings(c *fiber.Ctx) error {
	targets, err := h.store.GetTargets(h.defaults)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	response := fiber.Map{
		"daily_target":    targets.DailyTarget,
		"rotation_target": targets.RotationTarget,
	}
	if override, ok, err := h.store.SeasonOverride(); err == nil && ok {
		response["season_accumulated"] = override
	}
	return c.JSON(response)
}

func (h *Handlers) PutSettings(c *fiber.Ctx) error {
	var payload settingsPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON body"})
	}

	if payload.DailyTarget != nil {
		if err := h.store.SetSetting(storage.KeyDailyTarget,
			strconv.FormatFloat(*payload.DailyTarget, 'f', -1, 64)); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
	}
	if payload.RotationTarget != nil {
		if err := h.store.SetSetting(storage.KeyRotationTarget,
			strconv.FormatFloat(*payload.RotationTarget, 'f', -1, 64)); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
	}
	if payload.SeasonAccumulated != nil {
		if err := h.store.SetSetting(storage.KeySeasonOverride,
			strconv.FormatFloat(*payload.SeasonAccumulated, 'f', -1, 64)); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return h.GetSettings(c)
}
