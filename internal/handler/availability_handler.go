package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/receptia/scheduling-api/internal/service"
	appErrors "github.com/receptia/scheduling-api/pkg/errors"
	"github.com/receptia/scheduling-api/pkg/response"
)

// AvailabilityHandler serves the day availability grid.
type AvailabilityHandler struct {
	service *service.AvailabilityService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// DayGrid godoc
// @Summary Day availability grid
// @Tags Availability
// @Produce json
// @Param date query string true "Day (YYYY-MM-DD)"
// @Param duration query int false "Candidate duration in minutes"
// @Success 200 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) DayGrid(c *gin.Context) {
	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid or missing date, expected YYYY-MM-DD"))
		return
	}

	duration := 0
	if raw := c.Query("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid duration"))
			return
		}
	}

	grid, err := h.service.DayGrid(c.Request.Context(), businessIDFromContext(c), day, duration)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}
