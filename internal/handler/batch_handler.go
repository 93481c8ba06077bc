package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/receptia/scheduling-api/internal/service"
	appErrors "github.com/receptia/scheduling-api/pkg/errors"
	"github.com/receptia/scheduling-api/pkg/response"
)

// BatchHandler applies one action to a selection of appointments.
type BatchHandler struct {
	service *service.BatchService
}

// NewBatchHandler constructs handler.
func NewBatchHandler(svc *service.BatchService) *BatchHandler {
	return &BatchHandler{service: svc}
}

// ApplyStatus godoc
// @Summary Batch status update
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body service.BatchStatusRequest true "Selection and status"
// @Success 200 {object} response.Envelope
// @Router /batch/appointments/status [post]
func (h *BatchHandler) ApplyStatus(c *gin.Context) {
	var req service.BatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.ApplyStatus(c.Request.Context(), businessIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Batch delete
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body service.BatchDeleteRequest true "Selection"
// @Success 200 {object} response.Envelope
// @Router /batch/appointments/delete [post]
func (h *BatchHandler) Delete(c *gin.Context) {
	var req service.BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Delete(c.Request.Context(), businessIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
