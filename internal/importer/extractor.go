package importer

import (
	"context"

	"catalog-service/internal/models"
)

// Extractor turns raw spreadsheet rows into normalized products using the
// snapshot of existing entity names as vocabulary. mapping may be nil when
// the caller wants columns detected automatically.
type Extractor interface {
	Extract(ctx context.Context, rows []models.RawRow, ref models.ReferenceData, mapping *models.ColumnMapping) (*models.ExtractionResult, error)
}

// ProgressFunc receives a copy of the progress state after every update
type ProgressFunc func(models.ImportProgress)
