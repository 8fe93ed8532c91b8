package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/repository"
	"shiftdesk/pkg/apperr"
)

var ErrSelfDemotion = apperr.New(apperr.KindValidation, "admins cannot revoke their own access")

// AdminService covers staff roster management. Everything here sits behind
// the admin-only router group; there is no caller-side permission check.
type AdminService interface {
	ListProfiles(ctx context.Context) ([]dto.ProfileResponse, error)
	DeleteProfile(ctx context.Context, profileID string) error
	// SetAdmin grants or revokes admin access. An admin may not revoke
	// their own access, so the system always keeps at least one.
	SetAdmin(ctx context.Context, profileID, callerID string, isAdmin bool) (*dto.ProfileResponse, error)
}

type adminService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(repo *repository.Repository, logger *zap.Logger) AdminService {
	return &adminService{repo: repo, logger: logger}
}

func (s *adminService) ListProfiles(ctx context.Context) ([]dto.ProfileResponse, error) {
	profiles, err := s.repo.Profile.List(ctx)
	if err != nil {
		s.logger.Error("list profiles failed", zap.Error(err))
		return nil, err
	}
	out := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, *toProfileResponse(&profiles[i]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *adminService) DeleteProfile(ctx context.Context, profileID string) error {
	if _, err := s.repo.Profile.GetByID(ctx, profileID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	if err := s.repo.Profile.Delete(ctx, profileID); err != nil {
		s.logger.Error("delete profile failed", zap.Error(err))
		return err
	}
	s.logger.Info("profile deleted", zap.String("profile_id", profileID))
	return nil
}

func (s *adminService) SetAdmin(ctx context.Context, profileID, callerID string, isAdmin bool) (*dto.ProfileResponse, error) {
	if profileID == callerID && !isAdmin {
		return nil, ErrSelfDemotion
	}

	profile, err := s.repo.Profile.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if err := s.repo.Profile.SetAdmin(ctx, profileID, isAdmin); err != nil {
		s.logger.Error("set admin failed", zap.Error(err))
		return nil, err
	}
	profile.IsAdmin = isAdmin
	s.logger.Info("admin access changed",
		zap.String("profile_id", profileID),
		zap.Bool("is_admin", isAdmin),
	)
	return toProfileResponse(profile), nil
}
