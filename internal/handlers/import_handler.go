package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/events"
	"catalog-service/internal/importer"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

const maxImportFileSize = 10 << 20 // 10 MB

const previewRowLimit = 20

type ImportHandler struct {
	repo            *repository.CatalogRepository
	engine          *importer.Engine
	eventsPublisher *events.Publisher
	logger          *logrus.Logger

	mu           sync.RWMutex
	lastProgress models.ImportProgress
}

func NewImportHandler(repo *repository.CatalogRepository, engine *importer.Engine, eventsPublisher *events.Publisher, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{
		repo:            repo,
		engine:          engine,
		eventsPublisher: eventsPublisher,
		logger:          logger,
		lastProgress:    models.ImportProgress{Status: models.ImportStatusIdle, Errors: []string{}},
	}
}

// GetTemplate serves a downloadable import template. format=csv or xlsx
// (default xlsx).
// @Summary Download import template
// @Description Download a spreadsheet template with the expected columns
// @Tags Import
// @Produce application/octet-stream
// @Param format query string false "File format" Enums(csv, xlsx) default(xlsx)
// @Success 200 {file} file
// @Router /imports/template [get]
func (h *ImportHandler) GetTemplate(c *gin.Context) {
	columns := models.ProductImportColumns()

	if c.DefaultQuery("format", "xlsx") == "csv" {
		h.writeCSVTemplate(c, columns)
		return
	}
	h.writeXLSXTemplate(c, columns)
}

func (h *ImportHandler) writeCSVTemplate(c *gin.Context, columns []models.ImportTemplateColumn) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="product_import_template.csv"`)

	w := csv.NewWriter(c.Writer)
	header := make([]string, len(columns))
	example := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Name
		example[i] = col.Example
	}
	_ = w.Write(header)
	_ = w.Write(example)
	w.Flush()
}

func (h *ImportHandler) writeXLSXTemplate(c *gin.Context, columns []models.ImportTemplateColumn) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col.Name)
		cell, _ = excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheet, cell, col.Example)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="product_import_template.xlsx"`)
	if err := f.Write(c.Writer); err != nil {
		h.logger.WithError(err).Error("Failed to write template")
	}
}

// Preview parses the uploaded file and returns its columns and a sample of
// rows without calling the extraction backend or writing anything.
// @Summary Preview import file
// @Description Parse an uploaded spreadsheet and return its columns and sample rows
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} models.ImportPreviewResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /imports/preview [post]
func (h *ImportHandler) Preview(c *gin.Context) {
	rows, ok := h.readUpload(c)
	if !ok {
		return
	}

	preview := &models.ImportPreview{
		Columns:  importer.ExtractColumns(rows),
		RowCount: len(rows),
		Rows:     rows,
	}
	if len(rows) > previewRowLimit {
		preview.Rows = rows[:previewRowLimit]
		preview.Truncated = true
	}

	c.JSON(http.StatusOK, models.ImportPreviewResponse{Success: true, Data: preview})
}

// Import runs the full pipeline: parse, extract, reconcile, create. Only
// one import runs at a time.
// @Summary Import products
// @Description Run the AI-assisted import pipeline over an uploaded spreadsheet
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Param mapping formData string false "Column mapping JSON"
// @Success 200 {object} models.ImportResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /imports [post]
func (h *ImportHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.repo.AcquireImportLock(ctx); err != nil {
		if errors.Is(err, importer.ErrImportInProgress) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "IMPORT_IN_PROGRESS", Message: err.Error()},
			})
			return
		}
		respondInternalError(c, err)
		return
	}
	defer h.repo.ReleaseImportLock(ctx)

	rows, ok := h.readUpload(c)
	if !ok {
		return
	}

	mapping, ok := h.readMapping(c)
	if !ok {
		return
	}

	h.setProgress(models.ImportProgress{Total: len(rows), Status: models.ImportStatusParsing, Message: fmt.Sprintf("Parsed %d rows", len(rows)), Errors: []string{}})
	h.eventsPublisher.PublishImportStarted(ctx, len(rows))

	summary, err := h.engine.Run(ctx, rows, mapping, func(p models.ImportProgress) {
		h.setProgress(p)
		h.eventsPublisher.PublishImportProgress(ctx, p)
	})
	if err != nil {
		h.setProgress(models.ImportProgress{Status: models.ImportStatusError, Message: err.Error(), Errors: []string{err.Error()}})
		h.eventsPublisher.PublishImportFailed(ctx, err.Error())
		h.respondImportError(c, err)
		return
	}

	h.eventsPublisher.PublishImportCompleted(ctx, summary)
	c.JSON(http.StatusOK, models.ImportResponse{Success: true, Data: summary})
}

// GetProgress reports the state of the current or most recent import run
// @Summary Import progress
// @Description Get the state of the current or most recent import run
// @Tags Import
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /imports/progress [get]
func (h *ImportHandler) GetProgress(c *gin.Context) {
	h.mu.RLock()
	progress := h.lastProgress
	h.mu.RUnlock()

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: progress})
}

func (h *ImportHandler) setProgress(p models.ImportProgress) {
	h.mu.Lock()
	h.lastProgress = p
	h.mu.Unlock()
}

// readUpload pulls the "file" part out of the multipart form and parses it
func (h *ImportHandler) readUpload(c *gin.Context) ([]models.RawRow, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondValidationError(c, "File is required", "file")
		return nil, false
	}
	if fileHeader.Size > maxImportFileSize {
		respondValidationError(c, "File exceeds the 10MB limit", "file")
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err)
		return nil, false
	}
	defer file.Close()

	format := importer.DetectFormat(fileHeader.Filename)
	rows, err := importer.ReadRows(file, format)
	if err != nil {
		var parseErr *importer.ParseError
		if errors.As(err, &parseErr) || errors.Is(err, importer.ErrNoRows) {
			respondValidationError(c, err.Error(), "file")
			return nil, false
		}
		respondInternalError(c, err)
		return nil, false
	}

	h.logger.WithFields(logrus.Fields{
		"filename": fileHeader.Filename,
		"format":   format,
		"rows":     len(rows),
	}).Info("Import file parsed")
	return rows, true
}

// readMapping decodes the optional "mapping" form field
func (h *ImportHandler) readMapping(c *gin.Context) (*models.ColumnMapping, bool) {
	raw := strings.TrimSpace(c.PostForm("mapping"))
	if raw == "" {
		return nil, true
	}

	var mapping models.ColumnMapping
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		respondValidationError(c, "Invalid column mapping", "mapping")
		return nil, false
	}
	return &mapping, true
}

// respondImportError maps pipeline failures onto HTTP statuses
func (h *ImportHandler) respondImportError(c *gin.Context, err error) {
	var configErr *importer.ConfigurationError
	var backendErr *importer.BackendError
	var extractErr *importer.ExtractionError

	switch {
	case errors.As(err, &configErr):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "EXTRACTION_NOT_CONFIGURED", Message: err.Error()},
		})
	case errors.As(err, &backendErr):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "CATALOG_BACKEND_FAILED", Message: err.Error()},
		})
	case errors.As(err, &extractErr):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "EXTRACTION_FAILED", Message: err.Error()},
		})
	default:
		respondInternalError(c, err)
	}
}
