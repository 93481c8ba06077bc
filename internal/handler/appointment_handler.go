package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/receptia/scheduling-api/internal/models"
	"github.com/receptia/scheduling-api/internal/service"
	appErrors "github.com/receptia/scheduling-api/pkg/errors"
	"github.com/receptia/scheduling-api/pkg/response"
)

// AppointmentHandler manages appointment CRUD endpoints.
type AppointmentHandler struct {
	service *service.AppointmentService
}

// NewAppointmentHandler constructs handler.
func NewAppointmentHandler(svc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: svc}
}

// List godoc
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Param from query string false "Start of range (RFC3339)"
// @Param to query string false "End of range (RFC3339)"
// @Param status query string false "Comma-separated statuses"
// @Param contactId query string false "Filter by contact"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param order query string false "asc or desc by start time"
// @Success 200 {object} response.Envelope
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	var req service.ListAppointmentsRequest
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid from timestamp"))
			return
		}
		req.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid to timestamp"))
			return
		}
		req.To = &t
	}
	if raw := c.Query("status"); raw != "" {
		req.Status = strings.Split(raw, ",")
	}
	req.ContactID = c.Query("contactId")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		req.PageSize = limit
	}
	req.SortOrder = c.Query("order")

	appts, pagination, err := h.service.List(c.Request.Context(), businessIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appts, pagination)
}

// Get godoc
// @Summary Get appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	appt, err := h.service.Get(c.Request.Context(), businessIDFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}

// Create godoc
// @Summary Create appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body service.CreateAppointmentRequest true "Appointment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Unacknowledged booking conflict; data carries the conflict set"
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req service.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Create(c.Request.Context(), businessIDFromContext(c), req)
	if err != nil {
		respondPossiblyConflict(c, err)
		return
	}
	response.Created(c, result)
}

// Update godoc
// @Summary Update appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body service.UpdateAppointmentRequest true "Appointment payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Unacknowledged booking conflict; data carries the conflict set"
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Update(c *gin.Context) {
	var req service.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	appt, err := h.service.Update(c.Request.Context(), businessIDFromContext(c), c.Param("id"), req)
	if err != nil {
		respondPossiblyConflict(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}

// Duplicate godoc
// @Summary Duplicate appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body service.DuplicateAppointmentRequest true "Duplicate payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Unacknowledged booking conflict; data carries the conflict set"
// @Router /appointments/{id}/duplicate [post]
func (h *AppointmentHandler) Duplicate(c *gin.Context) {
	var req service.DuplicateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	appt, err := h.service.Duplicate(c.Request.Context(), businessIDFromContext(c), c.Param("id"), req)
	if err != nil {
		respondPossiblyConflict(c, err)
		return
	}
	response.Created(c, appt)
}

// Delete godoc
// @Summary Delete appointment
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 204
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), businessIDFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// respondPossiblyConflict renders booking-conflict rejections with the
// conflict set in the data field so clients can show the acknowledge dialog.
func respondPossiblyConflict(c *gin.Context, err error) {
	var conflictErr *models.BookingConflictError
	if errors.As(err, &conflictErr) {
		response.ErrorWithData(c, err, gin.H{"conflicts": conflictErr.Conflicts})
		return
	}
	response.Error(c, err)
}
