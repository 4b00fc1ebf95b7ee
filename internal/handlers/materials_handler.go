package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

type MaterialsHandler struct {
	repo *repository.CatalogRepository
}

func NewMaterialsHandler(repo *repository.CatalogRepository) *MaterialsHandler {
	return &MaterialsHandler{repo: repo}
}

// CreateMaterial creates a new material
// @Summary Create material
// @Description Create a new material
// @Tags Materials
// @Accept json
// @Produce json
// @Param material body models.CreateMaterialRequest true "Material data"
// @Success 201 {object} models.MaterialResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /materials [post]
func (h *MaterialsHandler) CreateMaterial(c *gin.Context) {
	var req models.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error(), "")
		return
	}

	material := &models.Material{
		Name:        req.Name,
		Type:        req.Type,
		HexCode:     req.HexCode,
		Description: req.Description,
		IsCustom:    true,
	}
	if req.IsCustom != nil {
		material.IsCustom = *req.IsCustom
	}
	if req.DisplayOrder != nil {
		material.DisplayOrder = *req.DisplayOrder
	}

	if err := h.repo.CreateMaterial(c.Request.Context(), material); err != nil {
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.MaterialResponse{Success: true, Data: material})
}

// GetMaterials lists materials, optionally filtered by type
// @Summary List materials
// @Description List materials, optionally filtered by type
// @Tags Materials
// @Accept json
// @Produce json
// @Param type query string false "Filter by material type"
// @Success 200 {object} models.MaterialListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /materials [get]
func (h *MaterialsHandler) GetMaterials(c *gin.Context) {
	materials, err := h.repo.GetMaterials(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MaterialListResponse{Success: true, Data: materials})
}

// GetMaterial retrieves a material by ID
// @Summary Get material
// @Description Get a material by ID
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} models.MaterialResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /materials/{id} [get]
func (h *MaterialsHandler) GetMaterial(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	material, err := h.repo.GetMaterialByID(c.Request.Context(), id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Material not found")
			return
		}
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MaterialResponse{Success: true, Data: material})
}

// UpdateMaterial applies a partial update to a material
// @Summary Update material
// @Description Update an existing material
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Param material body models.UpdateMaterialRequest true "Material data"
// @Success 200 {object} models.MaterialResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /materials/{id} [put]
func (h *MaterialsHandler) UpdateMaterial(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error(), "")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.HexCode != nil {
		updates["hex_code"] = *req.HexCode
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsCustom != nil {
		updates["is_custom"] = *req.IsCustom
	}
	if req.DisplayOrder != nil {
		updates["display_order"] = *req.DisplayOrder
	}
	if len(updates) == 0 {
		respondValidationError(c, "No fields to update", "")
		return
	}

	material, err := h.repo.UpdateMaterial(c.Request.Context(), id, updates)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Material not found")
			return
		}
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MaterialResponse{Success: true, Data: material})
}

// DeleteMaterial removes a material and its product links
// @Summary Delete material
// @Description Remove a material and its product links
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /materials/{id} [delete]
func (h *MaterialsHandler) DeleteMaterial(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.repo.GetMaterialByID(c.Request.Context(), id); err != nil {
		if err == gorm.ErrRecordNotFound {
			respondNotFound(c, "Material not found")
			return
		}
		respondInternalError(c, err)
		return
	}

	if err := h.repo.DeleteMaterial(c.Request.Context(), id); err != nil {
		respondInternalError(c, err)
		return
	}

	message := "Material deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}
