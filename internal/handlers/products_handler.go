package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/events"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

type ProductsHandler struct {
	repo            *repository.CatalogRepository
	eventsPublisher *events.Publisher
	defaultPageSize int
	maxPageSize     int
}

func NewProductsHandler(repo *repository.CatalogRepository, eventsPublisher *events.Publisher, defaultPageSize, maxPageSize int) *ProductsHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &ProductsHandler{
		repo:            repo,
		eventsPublisher: eventsPublisher,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// CreateProduct creates a new product
// @Summary Create product
// @Description Create a new product with optional dimension and material links
// @Tags Products
// @Accept json
// @Produce json
// @Param product body models.CreateProductRequest true "Product data"
// @Success 201 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /products [post]
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error(), "")
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		respondValidationError(c, "Invalid category ID", "categoryId")
		return
	}
	if _, err := h.repo.GetCategoryByID(c.Request.Context(), categoryID); err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Category not found")
			return
		}
		respondInternalError(c, err)
		return
	}

	dimensionIDs, err := parseUUIDs(req.DimensionIDs)
	if err != nil {
		respondValidationError(c, "Invalid dimension ID", "dimensionIds")
		return
	}
	materialIDs, err := parseUUIDs(req.MaterialIDs)
	if err != nil {
		respondValidationError(c, "Invalid material ID", "materialIds")
		return
	}

	product := &models.Product{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		DiscountPrice:  req.DiscountPrice,
		CategoryID:     categoryID,
		ImageURL:       req.ImageURL,
		WeightKg:       req.WeightKg,
		WarrantyMonths: 12,
		IsActive:       true,
		StockStatus:    models.StockStatusInStock,
	}
	if req.WarrantyMonths != nil {
		product.WarrantyMonths = *req.WarrantyMonths
	}
	product.AssemblyRequired = req.AssemblyRequired == nil || *req.AssemblyRequired
	if req.StockStatus != nil {
		product.StockStatus = *req.StockStatus
	}

	if err := h.repo.CreateProduct(c.Request.Context(), product, dimensionIDs, materialIDs); err != nil {
		respondInternalError(c, err)
		return
	}

	h.eventsPublisher.PublishProductCreated(c.Request.Context(), product)

	created, err := h.repo.GetProductByID(c.Request.Context(), product.ID)
	if err != nil {
		created = product
	}
	c.JSON(http.StatusCreated, models.ProductResponse{Success: true, Data: created})
}

// GetProducts lists products with optional category and text filters
// @Summary List products
// @Description List products with pagination, category and text filters
// @Tags Products
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param categoryId query string false "Filter by category ID"
// @Param q query string false "Search in name and description"
// @Param includeInactive query bool false "Include deactivated products"
// @Success 200 {object} models.ProductListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /products [get]
func (h *ProductsHandler) GetProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Query:           c.Query("q"),
		IncludeInactive: c.Query("includeInactive") == "true",
		Page:            h.parseIntQuery(c, "page", 1),
		Limit:           h.parseIntQuery(c, "limit", h.defaultPageSize),
	}
	if filter.Limit > h.maxPageSize {
		filter.Limit = h.maxPageSize
	}

	if categoryParam := c.Query("categoryId"); categoryParam != "" {
		categoryID, err := uuid.Parse(categoryParam)
		if err != nil {
			respondValidationError(c, "Invalid category ID", "categoryId")
			return
		}
		filter.CategoryID = &categoryID
	}

	products, total, err := h.repo.GetProducts(c.Request.Context(), filter)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    products,
		Pagination: &models.PaginationInfo{
			Page:        filter.Page,
			Limit:       filter.Limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     filter.Page < totalPages,
			HasPrevious: filter.Page > 1,
		},
	})
}

// GetProduct retrieves a product by ID
// @Summary Get product
// @Description Get a product by ID with its category, dimensions and materials
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := h.repo.GetProductByID(c.Request.Context(), id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Product not found")
			return
		}
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// UpdateProduct applies a partial update to a product
// @Summary Update product
// @Description Update product fields and optionally replace its associations
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body models.UpdateProductRequest true "Product data"
// @Success 200 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error(), "")
		return
	}

	updates := map[string]interface{}{}
	var changedFields []string
	setField := func(column string, value interface{}) {
		updates[column] = value
		changedFields = append(changedFields, column)
	}

	if req.Name != nil {
		setField("name", *req.Name)
	}
	if req.Description != nil {
		setField("description", *req.Description)
	}
	if req.Price != nil {
		setField("price", *req.Price)
	}
	if req.DiscountPrice != nil {
		setField("discount_price", *req.DiscountPrice)
	}
	if req.ImageURL != nil {
		setField("image_url", *req.ImageURL)
	}
	if req.WeightKg != nil {
		setField("weight_kg", *req.WeightKg)
	}
	if req.WarrantyMonths != nil {
		setField("warranty_months", *req.WarrantyMonths)
	}
	if req.AssemblyRequired != nil {
		setField("assembly_required", *req.AssemblyRequired)
	}
	if req.IsFeatured != nil {
		setField("is_featured", *req.IsFeatured)
	}
	if req.StockStatus != nil {
		setField("stock_status", *req.StockStatus)
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			respondValidationError(c, "Invalid category ID", "categoryId")
			return
		}
		if _, err := h.repo.GetCategoryByID(c.Request.Context(), categoryID); err != nil {
			if err == gorm.ErrRecordNotFound {
				respondNotFound(c, "Category not found")
				return
			}
			respondInternalError(c, err)
			return
		}
		setField("category_id", categoryID)
	}

	replaceLinks := req.DimensionIDs != nil || req.MaterialIDs != nil
	dimensionIDs, err := parseUUIDs(req.DimensionIDs)
	if err != nil {
		respondValidationError(c, "Invalid dimension ID", "dimensionIds")
		return
	}
	materialIDs, err := parseUUIDs(req.MaterialIDs)
	if err != nil {
		respondValidationError(c, "Invalid material ID", "materialIds")
		return
	}

	if len(updates) == 0 && !replaceLinks {
		respondValidationError(c, "No fields to update", "")
		return
	}

	product, err := h.repo.UpdateProduct(c.Request.Context(), id, updates, dimensionIDs, materialIDs, replaceLinks)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Product not found")
			return
		}
		respondInternalError(c, err)
		return
	}

	h.eventsPublisher.PublishProductUpdated(c.Request.Context(), product, changedFields)
	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// DeleteProduct deactivates a product
// @Summary Delete product
// @Description Deactivate a product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.repo.GetProductByID(c.Request.Context(), id); err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Product not found")
			return
		}
		respondInternalError(c, err)
		return
	}

	if err := h.repo.DeleteProduct(c.Request.Context(), id); err != nil {
		respondInternalError(c, err)
		return
	}

	h.eventsPublisher.PublishProductDeleted(c.Request.Context(), id)
	message := "Product deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

func (h *ProductsHandler) parseIntQuery(c *gin.Context, key string, fallback int) int {
	val, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil || val < 1 {
		return fallback
	}
	return val
}

// shared handler helpers

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidationError(c, "Invalid ID", "id")
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func respondValidationError(c *gin.Context, message, field string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: "VALIDATION_ERROR", Message: message, Field: field},
	})
}

func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: "NOT_FOUND", Message: message},
	})
}

func respondInternalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: "INTERNAL_ERROR", Message: err.Error()},
	})
}
