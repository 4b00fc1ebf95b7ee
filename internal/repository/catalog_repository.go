package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"catalog-service/internal/importer"
	"catalog-service/internal/models"
)

// Cache TTL constants
const (
	ProductCacheTTL    = 5 * time.Minute
	EntityListCacheTTL = 30 * time.Minute // categories, materials and dimensions rarely change

	importLockKey = "catalog:import:lock"
	importLockTTL = 10 * time.Minute
)

type CatalogRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewCatalogRepository(db *gorm.DB, redisClient *redis.Client) *CatalogRepository {
	return &CatalogRepository{db: db, redis: redisClient}
}

// cacheGet fills dest from redis, reporting whether it hit
func (r *CatalogRepository) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if r.redis == nil {
		return false
	}
	val, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func (r *CatalogRepository) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if r.redis == nil {
		return
	}
	if data, err := json.Marshal(value); err == nil {
		r.redis.Set(ctx, key, data, ttl)
	}
}

func (r *CatalogRepository) invalidate(ctx context.Context, keys ...string) {
	if r.redis == nil {
		return
	}
	r.redis.Del(ctx, keys...)
}

// Import run lock

// AcquireImportLock takes the single-runner import lock. Without redis the
// lock degrades to a no-op and concurrent imports are allowed.
func (r *CatalogRepository) AcquireImportLock(ctx context.Context) error {
	if r.redis == nil {
		return nil
	}
	ok, err := r.redis.SetNX(ctx, importLockKey, time.Now().Format(time.RFC3339), importLockTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire import lock: %w", err)
	}
	if !ok {
		return importer.ErrImportInProgress
	}
	return nil
}

func (r *CatalogRepository) ReleaseImportLock(ctx context.Context) {
	if r.redis == nil {
		return
	}
	r.redis.Del(ctx, importLockKey)
}

// Category Operations

func (r *CatalogRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if category.Slug == "" {
		category.Slug = uniqueSlug(category.Name, category.ID)
	}
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Create(category).Error
	if err == nil {
		r.invalidateCategoryLists(ctx)
	}
	return err
}

func categoryListKey(includeInactive bool) string {
	return fmt.Sprintf("catalog:categories:list:%v", includeInactive)
}

func (r *CatalogRepository) GetCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	cacheKey := categoryListKey(includeInactive)

	var categories []models.Category
	if r.cacheGet(ctx, cacheKey, &categories) {
		return categories, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Category{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("display_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}

	r.cacheSet(ctx, cacheKey, categories, EntityListCacheTTL)
	return categories, nil
}

func (r *CatalogRepository) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Category, error) {
	updates["updated_at"] = time.Now()
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	r.invalidateCategoryLists(ctx)
	return r.GetCategoryByID(ctx, id)
}

// DeleteCategory deactivates a category. Products keep their reference so
// nothing dangles, the category just stops appearing in active listings.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
	if err == nil {
		r.invalidateCategoryLists(ctx)
	}
	return err
}

func (r *CatalogRepository) invalidateCategoryLists(ctx context.Context) {
	r.invalidate(ctx, categoryListKey(true), categoryListKey(false))
}

// Material Operations

func (r *CatalogRepository) CreateMaterial(ctx context.Context, material *models.Material) error {
	if material.ID == uuid.Nil {
		material.ID = uuid.New()
	}
	if material.Type == "" {
		material.Type = models.MaterialTypeOther
	}
	if material.DisplayOrder == 0 {
		var maxOrder int
		r.db.WithContext(ctx).Model(&models.Material{}).
			Select("COALESCE(MAX(display_order), 0)").Scan(&maxOrder)
		material.DisplayOrder = maxOrder + 1
	}
	material.CreatedAt = time.Now()
	material.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Create(material).Error
	if err == nil {
		r.invalidate(ctx, "catalog:materials:list")
	}
	return err
}

func (r *CatalogRepository) GetMaterials(ctx context.Context, materialType string) ([]models.Material, error) {
	var materials []models.Material
	cacheKey := "catalog:materials:list"
	if materialType == "" && r.cacheGet(ctx, cacheKey, &materials) {
		return materials, nil
	}

	query := r.db.WithContext(ctx)
	if materialType != "" {
		query = query.Where("type = ?", materialType)
	}
	if err := query.Order("display_order ASC, name ASC").Find(&materials).Error; err != nil {
		return nil, err
	}
	if materialType == "" {
		r.cacheSet(ctx, cacheKey, materials, EntityListCacheTTL)
	}
	return materials, nil
}

func (r *CatalogRepository) GetMaterialByID(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	var material models.Material
	if err := r.db.WithContext(ctx).First(&material, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *CatalogRepository) UpdateMaterial(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Material, error) {
	updates["updated_at"] = time.Now()
	if err := r.db.WithContext(ctx).Model(&models.Material{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	r.invalidate(ctx, "catalog:materials:list")
	return r.GetMaterialByID(ctx, id)
}

func (r *CatalogRepository) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("material_id = ?", id).Delete(&models.ProductMaterial{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Material{}, "id = ?", id).Error
	})
	if err == nil {
		r.invalidate(ctx, "catalog:materials:list")
	}
	return err
}

// Dimension Operations

func (r *CatalogRepository) CreateDimension(ctx context.Context, dimension *models.Dimension) error {
	if dimension.ID == uuid.Nil {
		dimension.ID = uuid.New()
	}
	dimension.CreatedAt = time.Now()

	err := r.db.WithContext(ctx).Create(dimension).Error
	if err == nil {
		r.invalidateDimensionLists(ctx)
	}
	return err
}

func dimensionListKey(includeInactive bool) string {
	return fmt.Sprintf("catalog:dimensions:list:%v", includeInactive)
}

func (r *CatalogRepository) GetDimensions(ctx context.Context, includeInactive bool) ([]models.Dimension, error) {
	cacheKey := dimensionListKey(includeInactive)

	var dimensions []models.Dimension
	if r.cacheGet(ctx, cacheKey, &dimensions) {
		return dimensions, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Dimension{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("display_order ASC, name ASC").Find(&dimensions).Error; err != nil {
		return nil, err
	}
	r.cacheSet(ctx, cacheKey, dimensions, EntityListCacheTTL)
	return dimensions, nil
}

func (r *CatalogRepository) GetDimensionByID(ctx context.Context, id uuid.UUID) (*models.Dimension, error) {
	var dimension models.Dimension
	if err := r.db.WithContext(ctx).First(&dimension, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dimension, nil
}

func (r *CatalogRepository) UpdateDimension(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Dimension, error) {
	if err := r.db.WithContext(ctx).Model(&models.Dimension{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	r.invalidateDimensionLists(ctx)
	return r.GetDimensionByID(ctx, id)
}

func (r *CatalogRepository) DeleteDimension(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&models.Dimension{}).
		Where("id = ?", id).
		Update("is_active", false).Error
	if err == nil {
		r.invalidateDimensionLists(ctx)
	}
	return err
}

func (r *CatalogRepository) invalidateDimensionLists(ctx context.Context) {
	r.invalidate(ctx, dimensionListKey(true), dimensionListKey(false))
}

// Product CRUD Operations

func (r *CatalogRepository) CreateProduct(ctx context.Context, product *models.Product, dimensionIDs, materialIDs []uuid.UUID) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Slug == "" {
		product.Slug = uniqueSlug(product.Name, product.ID)
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Dimensions", "Materials", "Category").Create(product).Error; err != nil {
			return err
		}
		return r.replaceAssociations(tx, product.ID, dimensionIDs, materialIDs, false)
	})
	if err == nil {
		r.invalidate(ctx, "catalog:products:list")
	}
	return err
}

// replaceAssociations rewrites the join rows for a product. When clear is
// false the existing rows are assumed absent (fresh product).
func (r *CatalogRepository) replaceAssociations(tx *gorm.DB, productID uuid.UUID, dimensionIDs, materialIDs []uuid.UUID, clear bool) error {
	if clear {
		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductDimension{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductMaterial{}).Error; err != nil {
			return err
		}
	}
	if len(dimensionIDs) > 0 {
		rows := make([]models.ProductDimension, 0, len(dimensionIDs))
		for _, id := range dimensionIDs {
			rows = append(rows, models.ProductDimension{ID: uuid.New(), ProductID: productID, DimensionID: id, CreatedAt: time.Now()})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to link dimensions: %w", err)
		}
	}
	if len(materialIDs) > 0 {
		rows := make([]models.ProductMaterial, 0, len(materialIDs))
		for _, id := range materialIDs {
			rows = append(rows, models.ProductMaterial{ID: uuid.New(), ProductID: productID, MaterialID: id, CreatedAt: time.Now()})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to link materials: %w", err)
		}
	}
	return nil
}

func (r *CatalogRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	cacheKey := fmt.Sprintf("catalog:product:%s", id)

	var cached models.Product
	if r.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Dimensions").
		Preload("Materials").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	r.cacheSet(ctx, cacheKey, product, ProductCacheTTL)
	return &product, nil
}

// ProductFilter narrows product listings
type ProductFilter struct {
	CategoryID      *uuid.UUID
	Query           string
	IncludeInactive bool
	Page            int
	Limit           int
}

func (r *CatalogRepository) GetProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.
		Preload("Category").
		Preload("Dimensions").
		Preload("Materials").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *CatalogRepository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]interface{}, dimensionIDs, materialIDs []uuid.UUID, replaceLinks bool) (*models.Product, error) {
	updates["updated_at"] = time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if replaceLinks {
			return r.replaceAssociations(tx, id, dimensionIDs, materialIDs, true)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, fmt.Sprintf("catalog:product:%s", id), "catalog:products:list")
	return r.GetProductByID(ctx, id)
}

// DeleteProduct deactivates a product. Association rows stay so a
// reactivated product keeps its dimensions and materials.
func (r *CatalogRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
	if err == nil {
		r.invalidate(ctx, fmt.Sprintf("catalog:product:%s", id), "catalog:products:list")
	}
	return err
}

// Import support

// Snapshot loads the active entities an import reconciles against
func (r *CatalogRepository) Snapshot(ctx context.Context) (*importer.Snapshot, error) {
	snapshot := &importer.Snapshot{}

	var categories []models.Category
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&categories).Error; err != nil {
		return nil, err
	}
	for _, c := range categories {
		snapshot.Categories = append(snapshot.Categories, importer.EntityRef{ID: c.ID, Name: c.Name})
	}

	var dimensions []models.Dimension
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&dimensions).Error; err != nil {
		return nil, err
	}
	for _, d := range dimensions {
		snapshot.Dimensions = append(snapshot.Dimensions, importer.EntityRef{ID: d.ID, Name: d.Name})
	}

	var materials []models.Material
	if err := r.db.WithContext(ctx).Find(&materials).Error; err != nil {
		return nil, err
	}
	for _, m := range materials {
		snapshot.Materials = append(snapshot.Materials, importer.EntityRef{ID: m.ID, Name: m.Name})
	}

	return snapshot, nil
}

// EnsureCategory finds a category by name (case-insensitive) or creates it.
// Uses a transaction to handle the concurrent-create race.
func (r *CatalogRepository) EnsureCategory(ctx context.Context, name string) (uuid.UUID, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, false, fmt.Errorf("category name is empty")
	}

	var category models.Category
	var created bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("LOWER(name) = LOWER(?)", name).First(&category).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to lookup category: %w", err)
		}

		category = models.Category{
			ID:        uuid.New(),
			Name:      name,
			IsActive:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		category.Slug = uniqueSlug(name, category.ID)

		if err := tx.Create(&category).Error; err != nil {
			// a concurrent request may have created it first
			if strings.Contains(err.Error(), "duplicate") {
				if findErr := tx.Where("LOWER(name) = LOWER(?)", name).First(&category).Error; findErr == nil {
					return nil
				}
			}
			return fmt.Errorf("failed to create category %q: %w", name, err)
		}
		created = true
		return nil
	})
	if err != nil {
		return uuid.Nil, false, err
	}
	if created {
		r.invalidateCategoryLists(ctx)
	}
	return category.ID, created, nil
}

// EnsureMaterial finds a material by name or creates it with the given hex code
func (r *CatalogRepository) EnsureMaterial(ctx context.Context, name, hexCode string) (uuid.UUID, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, false, fmt.Errorf("material name is empty")
	}

	var material models.Material
	var created bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("LOWER(name) = LOWER(?)", name).First(&material).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to lookup material: %w", err)
		}

		material = models.Material{
			ID:        uuid.New(),
			Name:      name,
			Type:      models.MaterialTypeOther,
			IsCustom:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if hexCode != "" {
			material.HexCode = &hexCode
		}

		if err := tx.Create(&material).Error; err != nil {
			if strings.Contains(err.Error(), "duplicate") {
				if findErr := tx.Where("LOWER(name) = LOWER(?)", name).First(&material).Error; findErr == nil {
					return nil
				}
			}
			return fmt.Errorf("failed to create material %q: %w", name, err)
		}
		created = true
		return nil
	})
	if err != nil {
		return uuid.Nil, false, err
	}
	if created {
		r.invalidate(ctx, "catalog:materials:list")
	}
	return material.ID, created, nil
}

// CreateImportedProduct persists one extracted product with its resolved
// associations in a single transaction.
func (r *CatalogRepository) CreateImportedProduct(ctx context.Context, p models.ProcessedProduct, categoryID uuid.UUID, dimensionIDs, materialIDs []uuid.UUID) (*models.Product, error) {
	product := &models.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(p.Name),
		Price:       p.Price,
		CategoryID:  categoryID,
		IsActive:    true,
		StockStatus: models.StockStatusInStock,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if product.Name == "" {
		return nil, fmt.Errorf("product name is empty")
	}
	product.Slug = uniqueSlug(product.Name, product.ID)
	if desc := strings.TrimSpace(p.Description); desc != "" {
		product.Description = &desc
	}
	if img := strings.TrimSpace(p.ImageURL); img != "" {
		product.ImageURL = &img
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Dimensions", "Materials", "Category").Create(product).Error; err != nil {
			return err
		}
		return r.replaceAssociations(tx, product.ID, dimensionIDs, materialIDs, false)
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, "catalog:products:list")
	return product, nil
}

// uniqueSlug appends the first 8 chars of the entity id so equal names
// never collide.
func uniqueSlug(name string, id uuid.UUID) string {
	return fmt.Sprintf("%s-%s", importer.Slugify(name), id.String()[:8])
}
