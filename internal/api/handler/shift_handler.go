package handler

import (
	"github.com/gin-gonic/gin"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/service"
	"shiftdesk/pkg/response"
)

// ShiftHandler serves the shift marketplace endpoints.
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler creates a ShiftHandler.
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// ListOpen lists open shifts, optionally filtered by area.
// GET /api/v1/shifts?area=Gaming
func (h *ShiftHandler) ListOpen(c *gin.Context) {
	shifts, err := h.shiftSvc.ListOpen(c.Request.Context(), c.Query("area"))
	if err != nil {
		writeServiceError(c, err, 12001)
		return
	}
	response.OK(c, gin.H{"list": shifts})
}

// ListMine lists the caller's posted shifts.
// GET /api/v1/shifts/mine
func (h *ShiftHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shifts, err := h.shiftSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": shifts})
}

// Get returns one shift.
// GET /api/v1/shifts/:id
func (h *ShiftHandler) Get(c *gin.Context) {
	shift, err := h.shiftSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, 12002)
		return
	}
	response.OK(c, shift)
}

// Post puts a shift on the marketplace.
// POST /api/v1/shifts
func (h *ShiftHandler) Post(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PostShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	shift, err := h.shiftSvc.Post(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err, 12003)
		return
	}
	response.Created(c, shift)
}

// Claim takes an open giveaway.
// POST /api/v1/shifts/:id/claim
func (h *ShiftHandler) Claim(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.shiftSvc.ClaimGiveaway(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeServiceError(c, err, 12004)
		return
	}
	response.OK(c, result)
}

// MarkOutcome records the manager's decision on a claimed shift.
// PUT /api/v1/shifts/:id/outcome
func (h *ShiftHandler) MarkOutcome(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MarkOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	shift, err := h.shiftSvc.MarkOutcome(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		writeServiceError(c, err, 12005, service.ErrNotShiftOwner)
		return
	}
	response.OK(c, shift)
}

// Delete removes the caller's own open shift.
// DELETE /api/v1/shifts/:id
func (h *ShiftHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.shiftSvc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeServiceError(c, err, 12006, service.ErrNotShiftOwner)
		return
	}
	response.OK(c, nil)
}
