package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"shiftdesk/internal/service"
	"shiftdesk/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves spreadsheet downloads and the calendar feed.
type ExportHandler struct {
	exportSvc   service.ExportService
	calendarSvc service.CalendarService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService, calendarSvc service.CalendarService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, calendarSvc: calendarSvc}
}

// ExportShifts downloads the full shift table as a workbook.
// GET /api/v1/admin/export/shifts
func (h *ExportHandler) ExportShifts(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportShifts(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	writeDownload(c, xlsxContentType, filename, buf.Bytes())
}

// ExportRequests downloads the full swap request table as a workbook.
// GET /api/v1/admin/export/requests
func (h *ExportHandler) ExportRequests(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportRequests(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	writeDownload(c, xlsxContentType, filename, buf.Bytes())
}

// MyCalendar serves the caller's posted shifts as an iCalendar feed.
// GET /api/v1/calendar/mine
func (h *ExportHandler) MyCalendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	feed, err := h.calendarSvc.MyShifts(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	writeDownload(c, "text/calendar; charset=utf-8", "my-shifts.ics", []byte(feed))
}

func writeDownload(c *gin.Context, contentType, filename string, body []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, body)
}
