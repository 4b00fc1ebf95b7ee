package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"catalog-service/internal/models"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestDeleteProductDeactivates(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewCatalogRepository(gormDB, nil)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`)).
		WithArgs(false, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteProduct(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// One multi-row insert per relation type, not one statement per link.
func TestCreateImportedProductBatchesAssociationInserts(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewCatalogRepository(gormDB, nil)

	dimensionIDs := []uuid.UUID{uuid.New(), uuid.New()}
	materialIDs := []uuid.UUID{uuid.New(), uuid.New()}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "product_dimensions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()).AddRow(uuid.New()))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "product_materials"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()).AddRow(uuid.New()))
	mock.ExpectCommit()

	p := models.ProcessedProduct{Name: "Sofá Berlim", Price: 3499}
	product, err := repo.CreateImportedProduct(context.Background(), p, uuid.New(), dimensionIDs, materialIDs)
	require.NoError(t, err)
	assert.Equal(t, "Sofá Berlim", product.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Writers invalidate both visibility variants of a listing, so the key
// helpers must cover exactly the keys the getters cache under.
func TestListCacheKeysCoverBothVisibilities(t *testing.T) {
	assert.Equal(t, "catalog:categories:list:true", categoryListKey(true))
	assert.Equal(t, "catalog:categories:list:false", categoryListKey(false))
	assert.NotEqual(t, categoryListKey(true), categoryListKey(false))

	assert.Equal(t, "catalog:dimensions:list:true", dimensionListKey(true))
	assert.Equal(t, "catalog:dimensions:list:false", dimensionListKey(false))
	assert.NotEqual(t, dimensionListKey(true), dimensionListKey(false))
}

func TestUniqueSlugAppendsIDPrefix(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")

	slug := uniqueSlug("Sofá Berlim", id)

	assert.Equal(t, "sofa-berlim-a1b2c3d4", slug)
}
