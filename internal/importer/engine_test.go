package importer

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Snapshot), args.Error(1)
}

func (m *MockStore) EnsureCategory(ctx context.Context, name string) (uuid.UUID, bool, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockStore) EnsureMaterial(ctx context.Context, name, hexCode string) (uuid.UUID, bool, error) {
	args := m.Called(ctx, name, hexCode)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockStore) CreateImportedProduct(ctx context.Context, p models.ProcessedProduct, categoryID uuid.UUID, dimensionIDs, materialIDs []uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, p, categoryID, dimensionIDs, materialIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, rows []models.RawRow, ref models.ReferenceData, mapping *models.ColumnMapping) (*models.ExtractionResult, error) {
	args := m.Called(ctx, rows, ref, mapping)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExtractionResult), args.Error(1)
}

func makeRows(n int) []models.RawRow {
	rows := make([]models.RawRow, n)
	for i := range rows {
		rows[i] = models.RawRow{"nome": fmt.Sprintf("Produto %d", i+1), RowNumberKey: fmt.Sprintf("%d", i+2)}
	}
	return rows
}

func baseSnapshot() *Snapshot {
	return &Snapshot{
		Categories: []EntityRef{{ID: uuid.New(), Name: "Sofás"}},
		Dimensions: []EntityRef{{ID: uuid.New(), Name: "2 Lugares"}, {ID: uuid.New(), Name: "3 Lugares"}},
		Materials:  []EntityRef{{ID: uuid.New(), Name: "Bege"}},
	}
}

func TestRunCreatesProductsAndNewEntities(t *testing.T) {
	snapshot := baseSnapshot()
	store := new(MockStore)
	extractor := new(MockExtractor)

	newCategoryID := uuid.New()
	newMaterialID := uuid.New()

	store.On("Snapshot", mock.Anything).Return(snapshot, nil)
	store.On("EnsureCategory", mock.Anything, "Mesas").Return(newCategoryID, true, nil)
	store.On("EnsureMaterial", mock.Anything, "Rosa", "#ea9fc2").Return(newMaterialID, true, nil)
	store.On("CreateImportedProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Product{ID: uuid.New()}, nil)

	extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&models.ExtractionResult{
		Products: []models.ProcessedProduct{
			{Name: "Sofá Berlim", Price: 3499, Category: "Sofás", Sizes: []string{"3 Lugares"}, Colors: []string{"Bege"}},
			{Name: "Mesa Oslo", Price: 1200, Category: "Mesas", Colors: []string{"Rosa"}},
		},
		NewCategories: []string{"Mesas"},
		NewColors:     []models.NewColor{{Name: "Rosa", HexCode: "#ea9fc2"}},
	}, nil)

	engine := NewEngine(store, extractor, 50, nil)
	summary, err := engine.Run(context.Background(), makeRows(2), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.ProductsCreated)
	assert.Equal(t, 1, summary.CategoriesCreated)
	assert.Equal(t, 1, summary.MaterialsCreated)
	assert.Empty(t, summary.Errors)

	// the second product resolves to the freshly created category and color
	store.AssertCalled(t, "CreateImportedProduct", mock.Anything,
		mock.MatchedBy(func(p models.ProcessedProduct) bool { return p.Name == "Mesa Oslo" }),
		newCategoryID, []uuid.UUID(nil), []uuid.UUID{newMaterialID})
	store.AssertExpectations(t)
}

func TestRunBatchesExtraction(t *testing.T) {
	snapshot := baseSnapshot()
	store := new(MockStore)
	extractor := new(MockExtractor)

	store.On("Snapshot", mock.Anything).Return(snapshot, nil)
	// "Mesas" is reported new by every batch but must be created once
	store.On("EnsureCategory", mock.Anything, "Mesas").Return(uuid.New(), true, nil).Once()

	batchResult := &models.ExtractionResult{NewCategories: []string{"Mesas"}}
	extractor.On("Extract", mock.Anything, mock.MatchedBy(func(rows []models.RawRow) bool { return len(rows) == 50 }), mock.Anything, mock.Anything).
		Return(batchResult, nil).Twice()
	extractor.On("Extract", mock.Anything, mock.MatchedBy(func(rows []models.RawRow) bool { return len(rows) == 20 }), mock.Anything, mock.Anything).
		Return(batchResult, nil).Once()

	engine := NewEngine(store, extractor, 50, nil)
	summary, err := engine.Run(context.Background(), makeRows(120), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.CategoriesCreated)
	extractor.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestRunReportsUnknownAssociationsWithoutFailing(t *testing.T) {
	snapshot := baseSnapshot()
	store := new(MockStore)
	extractor := new(MockExtractor)

	store.On("Snapshot", mock.Anything).Return(snapshot, nil)
	store.On("CreateImportedProduct", mock.Anything, mock.Anything, snapshot.Categories[0].ID, []uuid.UUID{snapshot.Dimensions[0].ID}, []uuid.UUID(nil)).
		Return(&models.Product{ID: uuid.New()}, nil)

	extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&models.ExtractionResult{
		Products: []models.ProcessedProduct{
			{Name: "Sofá Berlim", Price: 3499, Category: "Sofás", Sizes: []string{"2 Lugares", "4 Lugares"}, Colors: []string{"Turquesa"}},
		},
	}, nil)

	engine := NewEngine(store, extractor, 50, nil)
	summary, err := engine.Run(context.Background(), makeRows(1), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ProductsCreated)
	require.Len(t, summary.Errors, 2)
	assert.Contains(t, summary.Errors[0], "4 Lugares")
	assert.Contains(t, summary.Errors[1], "Turquesa")
	store.AssertExpectations(t)
}

func TestRunSkipsProductWithUnknownCategory(t *testing.T) {
	snapshot := baseSnapshot()
	store := new(MockStore)
	extractor := new(MockExtractor)

	store.On("Snapshot", mock.Anything).Return(snapshot, nil)

	// category missing from both the snapshot and newCategories
	extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&models.ExtractionResult{
		Products: []models.ProcessedProduct{{Name: "Tapete Agra", Price: 890, Category: "Fantasma"}},
	}, nil)

	engine := NewEngine(store, extractor, 50, nil)
	summary, err := engine.Run(context.Background(), makeRows(1), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, summary.ProductsCreated)
	assert.Equal(t, 0, summary.CategoriesCreated)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "Tapete Agra")
	assert.Contains(t, summary.Errors[0], "Fantasma")
	store.AssertNotCalled(t, "EnsureCategory", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "CreateImportedProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunSurfacesExtractionRowErrors(t *testing.T) {
	snapshot := baseSnapshot()
	store := new(MockStore)
	extractor := new(MockExtractor)

	store.On("Snapshot", mock.Anything).Return(snapshot, nil)
	store.On("CreateImportedProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Product{ID: uuid.New()}, nil)

	extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&models.ExtractionResult{
		Products: []models.ProcessedProduct{{Name: "Sofá Berlim", Price: 3499, Category: "Sofás"}},
		Errors:   []string{"Linha 5: preco ausente"},
	}, nil)

	engine := NewEngine(store, extractor, 50, nil)
	summary, err := engine.Run(context.Background(), makeRows(2), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ProductsCreated)
	assert.Contains(t, summary.Errors, "Linha 5: preco ausente")
}

func TestRunAccumulatesCreateFailures(t *testing.T) {
	snapshot := baseSnapshot()
	store := new(MockStore)
	extractor := new(MockExtractor)

	store.On("Snapshot", mock.Anything).Return(snapshot, nil)
	store.On("CreateImportedProduct", mock.Anything, mock.MatchedBy(func(p models.ProcessedProduct) bool { return p.Name == "Sofá Berlim" }), mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("insert failed"))
	store.On("CreateImportedProduct", mock.Anything, mock.MatchedBy(func(p models.ProcessedProduct) bool { return p.Name == "Sofá Milano" }), mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Product{ID: uuid.New()}, nil)

	extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&models.ExtractionResult{
		Products: []models.ProcessedProduct{
			{Name: "Sofá Berlim", Price: 3499, Category: "Sofás"},
			{Name: "Sofá Milano", Price: 4599, Category: "Sofás"},
		},
	}, nil)

	engine := NewEngine(store, extractor, 50, nil)
	summary, err := engine.Run(context.Background(), makeRows(2), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ProductsCreated)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "Sofá Berlim")
	assert.Contains(t, summary.Errors[0], "insert failed")
}

func TestRunWrapsSnapshotFailure(t *testing.T) {
	store := new(MockStore)
	store.On("Snapshot", mock.Anything).Return(nil, fmt.Errorf("connection refused"))

	engine := NewEngine(store, new(MockExtractor), 50, nil)
	_, err := engine.Run(context.Background(), makeRows(1), nil, nil)

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
}

func TestRunAbortsOnExtractionFailure(t *testing.T) {
	store := new(MockStore)
	extractor := new(MockExtractor)

	store.On("Snapshot", mock.Anything).Return(baseSnapshot(), nil)
	extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &ExtractionError{Detail: "request failed", Err: fmt.Errorf("timeout")})

	engine := NewEngine(store, extractor, 50, nil)
	var statuses []models.ImportStatus
	_, err := engine.Run(context.Background(), makeRows(3), nil, func(p models.ImportProgress) {
		statuses = append(statuses, p.Status)
	})

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, models.ImportStatusError, statuses[len(statuses)-1])
	store.AssertNotCalled(t, "CreateImportedProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunEmptyRows(t *testing.T) {
	engine := NewEngine(new(MockStore), new(MockExtractor), 50, nil)
	_, err := engine.Run(context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestRunProgressSequence(t *testing.T) {
	snapshot := baseSnapshot()
	store := new(MockStore)
	extractor := new(MockExtractor)

	store.On("Snapshot", mock.Anything).Return(snapshot, nil)
	store.On("CreateImportedProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Product{ID: uuid.New()}, nil)

	extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&models.ExtractionResult{
		Products: []models.ProcessedProduct{{Name: "Sofá Berlim", Price: 3499, Category: "Sofás"}},
	}, nil)

	engine := NewEngine(store, extractor, 50, nil)
	var updates []models.ImportProgress
	_, err := engine.Run(context.Background(), makeRows(1), nil, func(p models.ImportProgress) {
		updates = append(updates, p)
	})
	require.NoError(t, err)

	require.NotEmpty(t, updates)
	assert.Equal(t, models.ImportStatusProcessing, updates[0].Status)
	last := updates[len(updates)-1]
	assert.Equal(t, models.ImportStatusDone, last.Status)

	sawCreating := false
	for _, u := range updates {
		if u.Status == models.ImportStatusCreating {
			sawCreating = true
		}
	}
	assert.True(t, sawCreating)
}
