package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	"shiftdesk/internal/service"
	"shiftdesk/pkg/response"
)

// AdminHandler serves the admin endpoints: roster management, the status
// override, and retention controls. The router mounts all of it behind
// JWTAuth + AdminOnly.
type AdminHandler struct {
	adminSvc   service.AdminService
	shiftSvc   service.ShiftService
	swapSvc    service.SwapService
	cleanupSvc service.CleanupService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	adminSvc service.AdminService,
	shiftSvc service.ShiftService,
	swapSvc service.SwapService,
	cleanupSvc service.CleanupService,
) *AdminHandler {
	return &AdminHandler{
		adminSvc:   adminSvc,
		shiftSvc:   shiftSvc,
		swapSvc:    swapSvc,
		cleanupSvc: cleanupSvc,
	}
}

// ── roster ──

// ListUsers lists every profile.
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	profiles, err := h.adminSvc.ListProfiles(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": profiles})
}

// DeleteUser removes a profile.
// DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.adminSvc.DeleteProfile(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err, 14001)
		return
	}
	response.OK(c, nil)
}

// SetAdminRequest toggles admin access.
type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

// SetAdmin grants or revokes a profile's admin access.
// PUT /api/v1/admin/users/:id/admin
func (h *AdminHandler) SetAdmin(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	profile, err := h.adminSvc.SetAdmin(c.Request.Context(), c.Param("id"), callerID, *req.IsAdmin)
	if err != nil {
		writeServiceError(c, err, 14002)
		return
	}
	response.OK(c, profile)
}

// ── shift overrides ──

// ListAllShifts lists every shift regardless of status.
// GET /api/v1/admin/shifts
func (h *AdminHandler) ListAllShifts(c *gin.Context) {
	shifts, err := h.shiftSvc.ListAll(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": shifts})
}

// SetShiftStatus overrides a shift's status, bypassing the transition table.
// PUT /api/v1/admin/shifts/:id/status
func (h *AdminHandler) SetShiftStatus(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SetShiftStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	shift, err := h.shiftSvc.SetStatus(c.Request.Context(), c.Param("id"), callerID, model.ShiftStatus(req.Status))
	if err != nil {
		writeServiceError(c, err, 14003)
		return
	}
	response.OK(c, shift)
}

// DeleteShift removes any shift in any status.
// DELETE /api/v1/admin/shifts/:id
func (h *AdminHandler) DeleteShift(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.shiftSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		writeServiceError(c, err, 14004)
		return
	}
	response.OK(c, nil)
}

// ── swap request overrides ──

// ListAllRequests lists every swap request.
// GET /api/v1/admin/requests
func (h *AdminHandler) ListAllRequests(c *gin.Context) {
	requests, err := h.swapSvc.ListAll(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": requests})
}

// DeleteRequest removes a swap request outright.
// DELETE /api/v1/admin/requests/:id
func (h *AdminHandler) DeleteRequest(c *gin.Context) {
	if err := h.swapSvc.AdminDelete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err, 14005)
		return
	}
	response.OK(c, nil)
}

// ── retention ──

// SweepStats reports what a sweep would delete right now.
// GET /api/v1/admin/cleanup/stats
func (h *AdminHandler) SweepStats(c *gin.Context) {
	stats, err := h.cleanupSvc.Stats(c.Request.Context(), time.Now())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, stats)
}

// Sweep runs a retention sweep immediately.
// POST /api/v1/admin/cleanup/sweep
func (h *AdminHandler) Sweep(c *gin.Context) {
	result, err := h.cleanupSvc.Sweep(c.Request.Context(), time.Now())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
