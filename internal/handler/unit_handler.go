package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartmlms/smartlms-backend/internal/model"
	"github.com/smartmlms/smartlms-backend/internal/response"
	"github.com/smartmlms/smartlms-backend/internal/service"
	"github.com/smartmlms/smartlms-backend/internal/validator"
)

// UnitHandler handles organizational unit endpoints.
type UnitHandler struct {
	unitService *service.UnitService
}

// NewUnitHandler creates a new UnitHandler.
func NewUnitHandler(unitService *service.UnitService) *UnitHandler {
	return &UnitHandler{unitService: unitService}
}

// List godoc
// GET /api/v1/units
func (h *UnitHandler) List(c *gin.Context) {
	units, err := h.unitService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"units": units})
}

// Tree godoc
// GET /api/v1/units/tree
// Returns the unit hierarchy as a forest of root nodes.
func (h *UnitHandler) Tree(c *gin.Context) {
	tree, err := h.unitService.Tree(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tree": tree})
}

// Get godoc
// GET /api/v1/units/:id
func (h *UnitHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	unit, err := h.unitService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unit": unit})
}

// Create godoc
// POST /api/v1/units
func (h *UnitHandler) Create(c *gin.Context) {
	var req model.CreateUnitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	unit, err := h.unitService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"unit": unit})
}

// Update godoc
// PUT /api/v1/units/:id
func (h *UnitHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateUnitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	unit, err := h.unitService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrUnitNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unit": unit})
}

// Delete godoc
// DELETE /api/v1/units/:id
func (h *UnitHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.unitService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "unit deleted successfully"})
}
