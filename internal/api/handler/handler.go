package handler

import (
	"shiftdesk/internal/service"
	"shiftdesk/pkg/redis"
)

// Handler aggregates all HTTP handlers.
type Handler struct {
	Auth   *AuthHandler
	Shift  *ShiftHandler
	Swap   *SwapHandler
	Admin  *AdminHandler
	Export *ExportHandler
	Events *EventsHandler
}

// NewHandler creates the handler aggregate.
func NewHandler(svc *service.Service, rdb *redis.Client) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc.Auth),
		Shift:  NewShiftHandler(svc.Shift),
		Swap:   NewSwapHandler(svc.Swap),
		Admin:  NewAdminHandler(svc.Admin, svc.Shift, svc.Swap, svc.Cleanup),
		Export: NewExportHandler(svc.Export, svc.Calendar),
		Events: NewEventsHandler(rdb),
	}
}
