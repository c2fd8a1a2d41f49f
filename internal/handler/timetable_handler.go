package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vistari-app/vistari-api/internal/models"
	"github.com/vistari-app/vistari-api/internal/service"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
	"github.com/vistari-app/vistari-api/pkg/response"
)

// TimetableHandler wires timetable CRUD endpoints.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler creates a new handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// List godoc
// @Summary List my timetables
// @Tags Timetables
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	timetables, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, timetables, nil)
}

// Get godoc
// @Summary Get a timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	timetable, err := h.service.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, timetable, nil)
}

// Create godoc
// @Summary Create a timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body service.CreateTimetableRequest true "Timetable payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}

	timetable, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, timetable)
}

// ReplaceSchedule godoc
// @Summary Replace a timetable's schedule
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable id"
// @Param payload body models.Schedule true "Schedule"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetables/{id}/schedule [put]
func (h *TimetableHandler) ReplaceSchedule(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var sched models.Schedule
	if err := c.ShouldBindJSON(&sched); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}

	timetable, err := h.service.ReplaceSchedule(c.Request.Context(), claims.UserID, c.Param("id"), sched)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, timetable, nil)
}

// Delete godoc
// @Summary Delete a timetable
// @Tags Timetables
// @Param id path string true "Timetable id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
