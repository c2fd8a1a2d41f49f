package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vistari-app/vistari-api/internal/dto"
	"github.com/vistari-app/vistari-api/internal/service"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
	"github.com/vistari-app/vistari-api/pkg/response"
)

type calendarService interface {
	Week(ctx context.Context, userID, timetableID, weekOf string) (*dto.CalendarWeek, bool, error)
	MoveItem(ctx context.Context, userID string, req dto.MoveRequest) (*dto.CalendarWeek, error)
}

type calendarExportService interface {
	RenderWeek(ctx context.Context, userID, timetableID, weekOf, format string) (*service.ExportResult, error)
	EnqueueWeekExport(userID, timetableID, weekOf, format string) (string, error)
}

// CalendarHandler serves the week view, item moves and week exports.
type CalendarHandler struct {
	calendar calendarService
	exports  calendarExportService
}

// NewCalendarHandler creates a new handler.
func NewCalendarHandler(calendar calendarService, exports calendarExportService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, exports: exports}
}

// Week godoc
// @Summary Get calendar week
// @Description Flattened week view for a timetable plus events
// @Tags Calendar
// @Produce json
// @Param timetable_id query string true "Timetable id"
// @Param week_of query string false "Any date in the wanted week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendar/week [get]
func (h *CalendarHandler) Week(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	timetableID := c.Query("timetable_id")
	if timetableID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "timetable_id is required"))
		return
	}

	week, cacheHit, err := h.calendar.Week(c.Request.Context(), claims.UserID, timetableID, c.Query("week_of"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, week, nil, map[string]interface{}{"cache_hit": cacheHit})
}

// Move godoc
// @Summary Move a calendar item
// @Description Move a session or event to another day and return the refreshed week
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.MoveRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /calendar/move [post]
func (h *CalendarHandler) Move(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}

	week, err := h.calendar.MoveItem(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, week, nil)
}

// ExportWeek godoc
// @Summary Export a calendar week
// @Description Render the flattened week as csv, pdf or ics
// @Tags Calendar
// @Produce octet-stream
// @Param timetable_id query string true "Timetable id"
// @Param week_of query string false "Any date in the wanted week (YYYY-MM-DD)"
// @Param format query string true "csv | pdf | ics"
// @Param async query boolean false "Queue the render instead of streaming it"
// @Success 200 {file} binary
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/week/export [get]
func (h *CalendarHandler) ExportWeek(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	timetableID := c.Query("timetable_id")
	if timetableID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "timetable_id is required"))
		return
	}

	if c.Query("async") == "true" {
		jobID, err := h.exports.EnqueueWeekExport(claims.UserID, timetableID, c.Query("week_of"), c.Query("format"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusAccepted, gin.H{"job_id": jobID}, nil)
		return
	}

	result, err := h.exports.RenderWeek(c.Request.Context(), claims.UserID, timetableID, c.Query("week_of"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
