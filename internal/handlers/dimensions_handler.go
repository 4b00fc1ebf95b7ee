package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

type DimensionsHandler struct {
	repo *repository.CatalogRepository
}

func NewDimensionsHandler(repo *repository.CatalogRepository) *DimensionsHandler {
	return &DimensionsHandler{repo: repo}
}

// CreateDimension creates a new dimension
// @Summary Create dimension
// @Description Create a new dimension
// @Tags Dimensions
// @Accept json
// @Produce json
// @Param dimension body models.CreateDimensionRequest true "Dimension data"
// @Success 201 {object} models.DimensionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /dimensions [post]
func (h *DimensionsHandler) CreateDimension(c *gin.Context) {
	var req models.CreateDimensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error(), "")
		return
	}

	dimension := &models.Dimension{
		Name:     req.Name,
		WidthCm:  req.WidthCm,
		HeightCm: req.HeightCm,
		DepthCm:  req.DepthCm,
		IsActive: true,
	}
	if req.DisplayOrder != nil {
		dimension.DisplayOrder = *req.DisplayOrder
	}

	if err := h.repo.CreateDimension(c.Request.Context(), dimension); err != nil {
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.DimensionResponse{Success: true, Data: dimension})
}

// GetDimensions lists dimensions, active only unless includeInactive=true
// @Summary List dimensions
// @Description List dimensions, active only by default
// @Tags Dimensions
// @Accept json
// @Produce json
// @Param includeInactive query bool false "Include deactivated dimensions"
// @Success 200 {object} models.DimensionListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /dimensions [get]
func (h *DimensionsHandler) GetDimensions(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true"

	dimensions, err := h.repo.GetDimensions(c.Request.Context(), includeInactive)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DimensionListResponse{Success: true, Data: dimensions})
}

// GetDimension retrieves a dimension by ID
// @Summary Get dimension
// @Description Get a dimension by ID
// @Tags Dimensions
// @Accept json
// @Produce json
// @Param id path string true "Dimension ID"
// @Success 200 {object} models.DimensionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /dimensions/{id} [get]
func (h *DimensionsHandler) GetDimension(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	dimension, err := h.repo.GetDimensionByID(c.Request.Context(), id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Dimension not found")
			return
		}
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DimensionResponse{Success: true, Data: dimension})
}

// UpdateDimension applies a partial update to a dimension
// @Summary Update dimension
// @Description Update an existing dimension
// @Tags Dimensions
// @Accept json
// @Produce json
// @Param id path string true "Dimension ID"
// @Param dimension body models.UpdateDimensionRequest true "Dimension data"
// @Success 200 {object} models.DimensionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /dimensions/{id} [put]
func (h *DimensionsHandler) UpdateDimension(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.UpdateDimensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error(), "")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.WidthCm != nil {
		updates["width_cm"] = *req.WidthCm
	}
	if req.HeightCm != nil {
		updates["height_cm"] = *req.HeightCm
	}
	if req.DepthCm != nil {
		updates["depth_cm"] = *req.DepthCm
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

	dimension, err := h.repo.UpdateDimension(c.Request.Context(), id, updates)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Dimension not found")
			return
		}
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DimensionResponse{Success: true, Data: dimension})
}

// DeleteDimension deactivates a dimension
// @Summary Delete dimension
// @Description Deactivate a dimension
// @Tags Dimensions
// @Accept json
// @Produce json
// @Param id path string true "Dimension ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /dimensions/{id} [delete]
func (h *DimensionsHandler) DeleteDimension(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.repo.GetDimensionByID(c.Request.Context(), id); err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Dimension not found")
			return
		}
		respondInternalError(c, err)
		return
	}

	if err := h.repo.DeleteDimension(c.Request.Context(), id); err != nil {
		respondInternalError(c, err)
		return
	}

	message := "Dimension deactivated"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}
