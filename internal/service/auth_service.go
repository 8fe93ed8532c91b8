package service

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shiftdesk/config"
	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
	"shiftdesk/pkg/apperr"
	"shiftdesk/pkg/jwt"
	"shiftdesk/pkg/redis"
)

// ── auth business errors ──

var (
	ErrEmailTaken         = apperr.New(apperr.KindValidation, "email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSignatureTooLarge  = apperr.New(apperr.KindValidation, "signature image too large")
	ErrSignatureInvalid   = apperr.New(apperr.KindValidation, "signature must be base64-encoded image data")
)

// AuthService is the account boundary: registration, sessions, and the
// signature upload that gates posting and proposing.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.ProfileResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout revokes the presented access token for its remaining lifetime.
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	// UploadSignature stores the signed-image payload. Presence is the
	// gate; content is not validated here.
	UploadSignature(ctx context.Context, userID string, req *dto.UploadSignatureRequest) (*dto.ProfileResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{cfg: cfg, repo: repo, jwtMgr: jwtMgr, rdb: rdb, logger: logger}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.ProfileResponse, error) {
	if _, err := s.repo.Profile.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("lookup email failed", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.Auth.BCryptCost)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		FullName:     req.FullName,
		StaffID:      req.StaffID,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Profile.Create(ctx, profile); err != nil {
		s.logger.Error("create profile failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("profile registered", zap.String("profile_id", profile.ProfileID))
	return toProfileResponse(profile), nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	profile, err := s.repo.Profile.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("lookup profile failed", zap.Error(err))
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(profile)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}

	blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Warn("blacklist check failed, accepting token", zap.Error(err))
	} else if blacklisted {
		return nil, ErrInvalidToken
	}

	profile, err := s.repo.Profile.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// One refresh per token: revoke the presented one for its remainder.
	if err := s.rdb.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		s.logger.Warn("blacklist refresh token failed", zap.Error(err))
	}

	return s.issueTokens(profile)
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if err := s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Warn("blacklist token failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) GetCurrentProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	profile, err := s.repo.Profile.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return toProfileResponse(profile), nil
}

func (s *authService) UploadSignature(ctx context.Context, userID string, req *dto.UploadSignatureRequest) (*dto.ProfileResponse, error) {
	blob, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		return nil, ErrSignatureInvalid
	}
	if len(blob) == 0 {
		return nil, ErrSignatureInvalid
	}
	if max := s.cfg.Auth.SignatureMaxSizeBytes; max > 0 && len(blob) > max {
		return nil, ErrSignatureTooLarge
	}

	profile, err := s.repo.Profile.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if err := s.repo.Profile.SetSignature(ctx, userID, blob); err != nil {
		s.logger.Error("store signature failed", zap.Error(err))
		return nil, err
	}

	profile.SignatureBlob = blob
	s.logger.Info("signature stored", zap.String("profile_id", userID))
	return toProfileResponse(profile), nil
}

func (s *authService) issueTokens(profile *model.Profile) (*dto.TokenResponse, error) {
	access, err := s.jwtMgr.GenerateAccessToken(profile.ProfileID, profile.IsAdmin)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMgr.GenerateRefreshToken(profile.ProfileID, profile.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
	}, nil
}
