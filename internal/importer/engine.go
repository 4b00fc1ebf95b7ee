package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
)

// EntityRef is a name/id pair from the catalog snapshot
type EntityRef struct {
	ID   uuid.UUID
	Name string
}

// Snapshot holds the active catalog entities an import run reconciles against
type Snapshot struct {
	Categories []EntityRef
	Dimensions []EntityRef
	Materials  []EntityRef
}

// ReferenceData reduces the snapshot to the name lists sent to extraction
func (s *Snapshot) ReferenceData() models.ReferenceData {
	return models.ReferenceData{
		Categories: refNames(s.Categories),
		Sizes:      refNames(s.Dimensions),
		Colors:     refNames(s.Materials),
	}
}

func refNames(refs []EntityRef) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return names
}

// Store is the persistence surface the engine needs. Ensure methods are
// get-or-create by case-insensitive name and report whether a row was created.
type Store interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	EnsureCategory(ctx context.Context, name string) (uuid.UUID, bool, error)
	EnsureMaterial(ctx context.Context, name, hexCode string) (uuid.UUID, bool, error)
	CreateImportedProduct(ctx context.Context, p models.ProcessedProduct, categoryID uuid.UUID, dimensionIDs, materialIDs []uuid.UUID) (*models.Product, error)
}

// Engine runs the import pipeline: batch extraction, entity reconciliation
// and product creation. One Engine is safe for concurrent runs, state lives
// per call.
type Engine struct {
	store     Store
	extractor Extractor
	batchSize int
	logger    *logrus.Logger
}

const defaultBatchSize = 50

func NewEngine(store Store, extractor Extractor, batchSize int, logger *logrus.Logger) *Engine {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{store: store, extractor: extractor, batchSize: batchSize, logger: logger}
}

// Run processes parsed rows end to end and returns the summary. Row-level
// failures are accumulated in the summary, only snapshot or extraction
// failures abort the run.
func (e *Engine) Run(ctx context.Context, rows []models.RawRow, mapping *models.ColumnMapping, report ProgressFunc) (*models.ImportSummary, error) {
	progress := models.ImportProgress{Total: len(rows), Status: models.ImportStatusProcessing, Errors: []string{}}
	notify := func() {
		if report != nil {
			report(progress)
		}
	}

	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	snapshot, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, &BackendError{Err: fmt.Errorf("failed to load catalog snapshot: %w", err)}
	}
	ref := snapshot.ReferenceData()

	progress.Message = fmt.Sprintf("Analyzing %d rows", len(rows))
	notify()

	result, err := e.extractBatches(ctx, rows, ref, mapping, &progress, notify)
	if err != nil {
		progress.Status = models.ImportStatusError
		progress.Message = err.Error()
		notify()
		return nil, err
	}

	summary := &models.ImportSummary{Errors: []string{}}
	summary.Errors = append(summary.Errors, result.Errors...)
	progress.Status = models.ImportStatusCreating
	progress.Total = len(result.Products)
	progress.Current = 0
	progress.Message = fmt.Sprintf("Creating %d products", len(result.Products))
	notify()

	categories := nameIndex(snapshot.Categories)
	dimensions := nameIndex(snapshot.Dimensions)
	materials := nameIndex(snapshot.Materials)

	e.createCategories(ctx, result.NewCategories, categories, summary)
	e.createMaterials(ctx, result.NewColors, materials, summary)

	for _, product := range result.Products {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		e.createProduct(ctx, product, categories, dimensions, materials, summary)
		progress.Current++
		progress.Errors = summary.Errors
		notify()
	}

	progress.Status = models.ImportStatusDone
	progress.Message = fmt.Sprintf("Imported %d products", summary.ProductsCreated)
	notify()

	e.logger.WithFields(logrus.Fields{
		"products":   summary.ProductsCreated,
		"categories": summary.CategoriesCreated,
		"materials":  summary.MaterialsCreated,
		"errors":     len(summary.Errors),
	}).Info("Import run finished")
	return summary, nil
}

// extractBatches splits rows into windows and merges the per-window
// extraction results, deduplicating new entity names case-insensitively.
func (e *Engine) extractBatches(ctx context.Context, rows []models.RawRow, ref models.ReferenceData, mapping *models.ColumnMapping, progress *models.ImportProgress, notify func()) (*models.ExtractionResult, error) {
	merged := &models.ExtractionResult{}
	seenCategories := map[string]bool{}
	seenColors := map[string]bool{}

	if len(rows) > e.batchSize {
		progress.Message = fmt.Sprintf("Large sheet, analyzing %d rows in windows of %d", len(rows), e.batchSize)
		notify()
	}

	for start := 0; start < len(rows); start += e.batchSize {
		end := start + e.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		e.logger.WithFields(logrus.Fields{"from": start + 1, "to": end}).Debug("Extracting batch")
		result, err := e.extractor.Extract(ctx, batch, ref, mapping)
		if err != nil {
			return nil, err
		}

		merged.Products = append(merged.Products, result.Products...)
		merged.Errors = append(merged.Errors, result.Errors...)
		for _, name := range result.NewCategories {
			key := strings.ToLower(strings.TrimSpace(name))
			if key == "" || seenCategories[key] {
				continue
			}
			seenCategories[key] = true
			merged.NewCategories = append(merged.NewCategories, name)
			ref.Categories = append(ref.Categories, name)
		}
		for _, color := range result.NewColors {
			key := strings.ToLower(strings.TrimSpace(color.Name))
			if key == "" || seenColors[key] {
				continue
			}
			seenColors[key] = true
			merged.NewColors = append(merged.NewColors, color)
			ref.Colors = append(ref.Colors, color.Name)
		}

		progress.Current = end
		notify()
	}
	return merged, nil
}

func (e *Engine) createCategories(ctx context.Context, names []string, index map[string]uuid.UUID, summary *models.ImportSummary) {
	for _, name := range names {
		id, created, err := e.store.EnsureCategory(ctx, name)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("category %q: %v", name, err))
			continue
		}
		index[strings.ToLower(name)] = id
		if created {
			summary.CategoriesCreated++
		}
	}
}

func (e *Engine) createMaterials(ctx context.Context, colors []models.NewColor, index map[string]uuid.UUID, summary *models.ImportSummary) {
	for _, color := range colors {
		id, created, err := e.store.EnsureMaterial(ctx, color.Name, color.HexCode)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("color %q: %v", color.Name, err))
			continue
		}
		index[strings.ToLower(color.Name)] = id
		if created {
			summary.MaterialsCreated++
		}
	}
}

func (e *Engine) createProduct(ctx context.Context, p models.ProcessedProduct, categories, dimensions, materials map[string]uuid.UUID, summary *models.ImportSummary) {
	categoryID, ok := categories[strings.ToLower(strings.TrimSpace(p.Category))]
	if !ok {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: category %q not found, product skipped", p.Name, p.Category))
		return
	}

	var dimensionIDs []uuid.UUID
	for _, size := range p.Sizes {
		if id, ok := dimensions[strings.ToLower(strings.TrimSpace(size))]; ok {
			dimensionIDs = append(dimensionIDs, id)
		} else {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: size %q is not a known dimension, skipped", p.Name, size))
		}
	}

	var materialIDs []uuid.UUID
	for _, color := range p.Colors {
		if id, ok := materials[strings.ToLower(strings.TrimSpace(color))]; ok {
			materialIDs = append(materialIDs, id)
		} else {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: color %q is not a known material, skipped", p.Name, color))
		}
	}

	if _, err := e.store.CreateImportedProduct(ctx, p, categoryID, dimensionIDs, materialIDs); err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", p.Name, err))
		return
	}
	summary.ProductsCreated++
}

func nameIndex(refs []EntityRef) map[string]uuid.UUID {
	index := make(map[string]uuid.UUID, len(refs))
	for _, r := range refs {
		index[strings.ToLower(r.Name)] = r.ID
	}
	return index
}
