package models

import (
	"time"

	"github.com/google/uuid"
)

// MaterialType classifies a material entry (wood finish, fabric, metal, ...)
type MaterialType string

const (
	MaterialTypeWood   MaterialType = "wood"
	MaterialTypeFabric MaterialType = "fabric"
	MaterialTypeMetal  MaterialType = "metal"
	MaterialTypeFinish MaterialType = "finish"
	MaterialTypeOther  MaterialType = "other"
)

// StockStatus represents product availability shown in the storefront
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusOnDemand   StockStatus = "on_demand"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// Category represents a product category
type Category struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string    `json:"name" gorm:"not null;uniqueIndex:idx_categories_name"`
	Slug         string    `json:"slug" gorm:"not null;uniqueIndex:idx_categories_slug"`
	Description  *string   `json:"description,omitempty"`
	ImageURL     *string   `json:"imageUrl,omitempty" gorm:"column:image_url"`
	DisplayOrder int       `json:"displayOrder" gorm:"column:display_order;not null;default:0"`
	IsActive     bool      `json:"isActive" gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Material represents a material or color option products can be offered in
type Material struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string       `json:"name" gorm:"not null;uniqueIndex:idx_materials_name"`
	Type         MaterialType `json:"type" gorm:"not null;default:'other'"`
	HexCode      *string      `json:"hexCode,omitempty" gorm:"column:hex_code"`
	Description  *string      `json:"description,omitempty"`
	IsCustom     bool         `json:"isCustom" gorm:"column:is_custom;not null;default:false"`
	DisplayOrder int          `json:"displayOrder" gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Dimension represents a size/measurement option (e.g. "P", "2 Lugares")
type Dimension struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string    `json:"name" gorm:"not null;uniqueIndex:idx_dimensions_name"`
	WidthCm      *float64  `json:"widthCm,omitempty" gorm:"column:width_cm"`
	HeightCm     *float64  `json:"heightCm,omitempty" gorm:"column:height_cm"`
	DepthCm      *float64  `json:"depthCm,omitempty" gorm:"column:depth_cm"`
	DisplayOrder int       `json:"displayOrder" gorm:"column:display_order;not null;default:0"`
	IsActive     bool      `json:"isActive" gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Product represents a catalog product
type Product struct {
	ID               uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name             string      `json:"name" gorm:"not null;index"`
	Slug             string      `json:"slug" gorm:"not null;uniqueIndex:idx_products_slug"`
	Description      *string     `json:"description,omitempty"`
	Price            float64     `json:"price" gorm:"not null"`
	DiscountPrice    *float64    `json:"discountPrice,omitempty" gorm:"column:discount_price"`
	CategoryID       uuid.UUID   `json:"categoryId" gorm:"type:uuid;not null;index"`
	Category         *Category   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	ImageURL         *string     `json:"imageUrl,omitempty" gorm:"column:image_url"`
	WeightKg         *float64    `json:"weightKg,omitempty" gorm:"column:weight_kg"`
	WarrantyMonths   int         `json:"warrantyMonths" gorm:"column:warranty_months;not null;default:12"`
	AssemblyRequired bool        `json:"assemblyRequired" gorm:"column:assembly_required;not null;default:true"`
	IsActive         bool        `json:"isActive" gorm:"column:is_active;not null;default:true;index"`
	IsFeatured       bool        `json:"isFeatured" gorm:"column:is_featured;not null;default:false"`
	StockStatus      StockStatus `json:"stockStatus" gorm:"column:stock_status;not null;default:'in_stock'"`
	Dimensions       []Dimension `json:"dimensions,omitempty" gorm:"many2many:product_dimensions;"`
	Materials        []Material  `json:"materials,omitempty" gorm:"many2many:product_materials;"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// ProductDimension is an association row between a product and a dimension
type ProductDimension struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID       uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`
	DimensionID     uuid.UUID `json:"dimensionId" gorm:"type:uuid;not null;index"`
	PriceAdjustment *float64  `json:"priceAdjustment,omitempty" gorm:"column:price_adjustment"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ProductMaterial is an association row between a product and a material
type ProductMaterial struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID       uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`
	MaterialID      uuid.UUID `json:"materialId" gorm:"type:uuid;not null;index"`
	ImageURL        *string   `json:"imageUrl,omitempty" gorm:"column:image_url"`
	PriceAdjustment *float64  `json:"priceAdjustment,omitempty" gorm:"column:price_adjustment"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (Category) TableName() string         { return "categories" }
func (Material) TableName() string         { return "materials" }
func (Dimension) TableName() string        { return "dimensions" }
func (Product) TableName() string          { return "products" }
func (ProductDimension) TableName() string { return "product_dimensions" }
func (ProductMaterial) TableName() string  { return "product_materials" }

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  *string `json:"description,omitempty"`
	ImageURL     *string `json:"imageUrl,omitempty"`
	DisplayOrder *int    `json:"displayOrder,omitempty"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	ImageURL     *string `json:"imageUrl,omitempty"`
	DisplayOrder *int    `json:"displayOrder,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// CreateMaterialRequest represents a request to create a material
type CreateMaterialRequest struct {
	Name         string       `json:"name" binding:"required"`
	Type         MaterialType `json:"type,omitempty"`
	HexCode      *string      `json:"hexCode,omitempty"`
	Description  *string      `json:"description,omitempty"`
	IsCustom     *bool        `json:"isCustom,omitempty"`
	DisplayOrder *int         `json:"displayOrder,omitempty"`
}

// UpdateMaterialRequest represents a request to update a material
type UpdateMaterialRequest struct {
	Name         *string       `json:"name,omitempty"`
	Type         *MaterialType `json:"type,omitempty"`
	HexCode      *string       `json:"hexCode,omitempty"`
	Description  *string       `json:"description,omitempty"`
	IsCustom     *bool         `json:"isCustom,omitempty"`
	DisplayOrder *int          `json:"displayOrder,omitempty"`
}

// CreateDimensionRequest represents a request to create a dimension
type CreateDimensionRequest struct {
	Name         string   `json:"name" binding:"required"`
	WidthCm      *float64 `json:"widthCm,omitempty"`
	HeightCm     *float64 `json:"heightCm,omitempty"`
	DepthCm      *float64 `json:"depthCm,omitempty"`
	DisplayOrder *int     `json:"displayOrder,omitempty"`
}

// UpdateDimensionRequest represents a request to update a dimension
type UpdateDimensionRequest struct {
	Name         *string  `json:"name,omitempty"`
	WidthCm      *float64 `json:"widthCm,omitempty"`
	HeightCm     *float64 `json:"heightCm,omitempty"`
	DepthCm      *float64 `json:"depthCm,omitempty"`
	DisplayOrder *int     `json:"displayOrder,omitempty"`
	IsActive     *bool    `json:"isActive,omitempty"`
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name             string      `json:"name" binding:"required"`
	CategoryID       string      `json:"categoryId" binding:"required"`
	Description      *string     `json:"description,omitempty"`
	Price            float64     `json:"price" binding:"required"`
	DiscountPrice    *float64    `json:"discountPrice,omitempty"`
	ImageURL         *string     `json:"imageUrl,omitempty"`
	WeightKg         *float64    `json:"weightKg,omitempty"`
	WarrantyMonths   *int        `json:"warrantyMonths,omitempty"`
	AssemblyRequired *bool       `json:"assemblyRequired,omitempty"`
	StockStatus      *StockStatus `json:"stockStatus,omitempty"`
	DimensionIDs     []string    `json:"dimensionIds,omitempty"`
	MaterialIDs      []string    `json:"materialIds,omitempty"`
}

// UpdateProductRequest represents a request to update a product.
// DimensionIDs/MaterialIDs, when present, replace the association sets.
type UpdateProductRequest struct {
	Name             *string      `json:"name,omitempty"`
	CategoryID       *string      `json:"categoryId,omitempty"`
	Description      *string      `json:"description,omitempty"`
	Price            *float64     `json:"price,omitempty"`
	DiscountPrice    *float64     `json:"discountPrice,omitempty"`
	ImageURL         *string      `json:"imageUrl,omitempty"`
	WeightKg         *float64     `json:"weightKg,omitempty"`
	WarrantyMonths   *int         `json:"warrantyMonths,omitempty"`
	AssemblyRequired *bool        `json:"assemblyRequired,omitempty"`
	IsFeatured       *bool        `json:"isFeatured,omitempty"`
	StockStatus      *StockStatus `json:"stockStatus,omitempty"`
	DimensionIDs     []string     `json:"dimensionIds,omitempty"`
	MaterialIDs      []string     `json:"materialIds,omitempty"`
}

// Response envelopes

type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
	Message *string  `json:"message,omitempty"`
}

type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

type CategoryResponse struct {
	Success bool      `json:"success"`
	Data    *Category `json:"data"`
	Message *string   `json:"message,omitempty"`
}

type CategoryListResponse struct {
	Success bool       `json:"success"`
	Data    []Category `json:"data"`
}

type MaterialResponse struct {
	Success bool      `json:"success"`
	Data    *Material `json:"data"`
	Message *string   `json:"message,omitempty"`
}

type MaterialListResponse struct {
	Success bool       `json:"success"`
	Data    []Material `json:"data"`
}

type DimensionResponse struct {
	Success bool       `json:"success"`
	Data    *Dimension `json:"data"`
	Message *string    `json:"message,omitempty"`
}

type DimensionListResponse struct {
	Success bool        `json:"success"`
	Data    []Dimension `json:"data"`
}

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}
