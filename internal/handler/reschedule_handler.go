package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/receptia/scheduling-api/internal/service"
	appErrors "github.com/receptia/scheduling-api/pkg/errors"
	"github.com/receptia/scheduling-api/pkg/response"
)

// RescheduleHandler serves the quick-reschedule picker and the apply action.
type RescheduleHandler struct {
	service *service.RescheduleService
}

// NewRescheduleHandler constructs handler.
func NewRescheduleHandler(svc *service.RescheduleService) *RescheduleHandler {
	return &RescheduleHandler{service: svc}
}

// Options godoc
// @Summary Quick-reschedule slot options
// @Tags Reschedule
// @Produce json
// @Param id path string true "Appointment ID"
// @Param from query string false "First day of the window (YYYY-MM-DD), defaults to the appointment's day"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/reschedule-options [get]
func (h *RescheduleHandler) Options(c *gin.Context) {
	var from time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid from date, expected YYYY-MM-DD"))
			return
		}
		from = parsed
	}

	opts, err := h.service.Options(c.Request.Context(), businessIDFromContext(c), c.Param("id"), from)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opts, nil)
}

// Apply godoc
// @Summary Apply a reschedule
// @Tags Reschedule
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body service.ApplyRescheduleRequest true "Target slot"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Unacknowledged booking conflict; data carries the conflict set"
// @Router /appointments/{id}/reschedule [post]
func (h *RescheduleHandler) Apply(c *gin.Context) {
	var req service.ApplyRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	appt, err := h.service.Apply(c.Request.Context(), businessIDFromContext(c), c.Param("id"), req)
	if err != nil {
		respondPossiblyConflict(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}
