package handler

import (
	"github.com/gin-gonic/gin"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/service"
	"shiftdesk/pkg/response"
)

// SwapHandler serves the swap request endpoints.
type SwapHandler struct {
	swapSvc service.SwapService
}

// NewSwapHandler creates a SwapHandler.
func NewSwapHandler(swapSvc service.SwapService) *SwapHandler {
	return &SwapHandler{swapSvc: swapSvc}
}

// Propose offers a slot against an open swap shift.
// POST /api/v1/shifts/:id/requests
func (h *SwapHandler) Propose(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ProposeSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.swapSvc.Propose(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		writeServiceError(c, err, 13001)
		return
	}
	response.Created(c, result)
}

// Accept runs the accept protocol on a pending request.
// POST /api/v1/requests/:id/accept
func (h *SwapHandler) Accept(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Accept(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeServiceError(c, err, 13002, service.ErrNotRecipient)
		return
	}
	response.OK(c, result)
}

// Decline resolves a pending request to Declined.
// POST /api/v1/requests/:id/decline
func (h *SwapHandler) Decline(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Decline(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeServiceError(c, err, 13003, service.ErrNotRecipient)
		return
	}
	response.OK(c, result)
}

// ListIncoming lists requests targeting the caller's shifts.
// GET /api/v1/requests/incoming
func (h *SwapHandler) ListIncoming(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	requests, err := h.swapSvc.ListIncoming(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": requests})
}

// ListOutgoing lists the caller's own proposals.
// GET /api/v1/requests/outgoing
func (h *SwapHandler) ListOutgoing(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	requests, err := h.swapSvc.ListOutgoing(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": requests})
}
