package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"catalog-service/internal/events"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

type CategoriesHandler struct {
	repo            *repository.CatalogRepository
	eventsPublisher *events.Publisher
}

func NewCategoriesHandler(repo *repository.CatalogRepository, eventsPublisher *events.Publisher) *CategoriesHandler {
	return &CategoriesHandler{repo: repo, eventsPublisher: eventsPublisher}
}

// CreateCategory creates a new category
// @Summary Create category
// @Description Create a new category
// @Tags Categories
// @Accept json
// @Produce json
// @Param category body models.CreateCategoryRequest true "Category data"
// @Success 201 {object} models.CategoryResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /categories [post]
func (h *CategoriesHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error(), "")
		return
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if req.DisplayOrder != nil {
		category.DisplayOrder = *req.DisplayOrder
	}

	if err := h.repo.CreateCategory(c.Request.Context(), category); err != nil {
		respondInternalError(c, err)
		return
	}

	h.eventsPublisher.PublishCategoryCreated(c.Request.Context(), category)
	c.JSON(http.StatusCreated, models.CategoryResponse{Success: true, Data: category})
}

// GetCategories lists categories, active only unless includeInactive=true
// @Summary List categories
// @Description List categories, active only by default
// @Tags Categories
// @Accept json
// @Produce json
// @Param includeInactive query bool false "Include deactivated categories"
// @Success 200 {object} models.CategoryListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /categories [get]
func (h *CategoriesHandler) GetCategories(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"

	categories, err := h.repo.GetCategories(c.Request.Context(), includeInactive)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CategoryListResponse{Success: true, Data: categories})
}

// GetCategory retrieves a category by ID
// @Summary Get category
// @Description Get a category by ID
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} models.CategoryResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [get]
func (h *CategoriesHandler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	category, err := h.repo.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Category not found")
			return
		}
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CategoryResponse{Success: true, Data: category})
}

// UpdateCategory applies a partial update to a category
// @Summary Update category
// @Description Update an existing category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param category body models.UpdateCategoryRequest true "Category data"
// @Success 200 {object} models.CategoryResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [put]
func (h *CategoriesHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error(), "")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.DisplayOrder != nil {
		updates["display_order"] = *req.DisplayOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		respondValidationError(c, "No fields to update", "")
		return
	}

	category, err := h.repo.UpdateCategory(c.Request.Context(), id, updates)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Category not found")
			return
		}
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CategoryResponse{Success: true, Data: category})
}

// DeleteCategory deactivates a category
// @Summary Delete category
// @Description Deactivate a category, products keep their reference
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoriesHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.repo.GetCategoryByID(c.Request.Context(), id); err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Category not found")
			return
		}
		respondInternalError(c, err)
		return
	}

	if err := h.repo.DeleteCategory(c.Request.Context(), id); err != nil {
		respondInternalError(c, err)
		return
	}

	message := "Category deactivated"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}
