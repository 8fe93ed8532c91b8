package service

import (
	"context"

	"go.uber.org/zap"

	"shiftdesk/config"
	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
	"shiftdesk/pkg/jwt"
	"shiftdesk/pkg/redis"
)

// ChangePublisher notifies observers after a committed write. Observers only
// learn that something changed and re-derive their view; delivery is
// fire-and-forget and may lag the write.
type ChangePublisher interface {
	PublishChange(ctx context.Context, table, action, entityID string)
}

const (
	tableShifts       = "shifts"
	tableSwapRequests = "swap_requests"
)

// Service aggregates all services.
type Service struct {
	Auth     AuthService
	Shift    ShiftService
	Swap     SwapService
	Admin    AdminService
	Cleanup  CleanupService
	Export   ExportService
	Calendar CalendarService
}

// NewService wires the service layer.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	docs := NewDocumentService(logger)
	return &Service{
		Auth:     NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Shift:    NewShiftService(cfg, repo, docs, rdb, logger),
		Swap:     NewSwapService(repo, docs, rdb, logger),
		Admin:    NewAdminService(repo, logger),
		Cleanup:  NewCleanupService(&cfg.Retention, repo, logger),
		Export:   NewExportService(repo, logger),
		Calendar: NewCalendarService(repo, logger),
	}
}

// ── response mapping ──

func toProfileResponse(p *model.Profile) *dto.ProfileResponse {
	if p == nil {
		return nil
	}
	return &dto.ProfileResponse{
		ProfileID:    p.ProfileID,
		FullName:     p.FullName,
		StaffID:      p.StaffID,
		Email:        p.Email,
		IsAdmin:      p.IsAdmin,
		HasSignature: p.HasSignature(),
		CreatedAt:    p.CreatedAt,
	}
}

func toShiftResponse(s *model.Shift) *dto.ShiftResponse {
	if s == nil {
		return nil
	}
	return &dto.ShiftResponse{
		ShiftID:   s.ShiftID,
		PosterID:  s.PosterID,
		Type:      string(s.Type),
		Date:      s.Date,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Area:      string(s.Area),
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		Poster:    toProfileResponse(s.Poster),
	}
}

func toSwapRequestResponse(r *model.SwapRequest) *dto.SwapRequestResponse {
	if r == nil {
		return nil
	}
	return &dto.SwapRequestResponse{
		SwapRequestID:     r.SwapRequestID,
		ShiftID:           r.ShiftID,
		ProposerID:        r.ProposerID,
		ProposerShiftDate: r.ProposerShiftDate,
		ProposerStartTime: r.ProposerStartTime,
		ProposerEndTime:   r.ProposerEndTime,
		ProposerArea:      string(r.ProposerArea),
		Status:            string(r.Status),
		CreatedAt:         r.CreatedAt,
		Shift:             toShiftResponse(r.Shift),
		Proposer:          toProfileResponse(r.Proposer),
	}
}
