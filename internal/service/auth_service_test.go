package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shiftdesk/config"
	"shiftdesk/internal/dto"
	"shiftdesk/pkg/jwt"
)

// ── test helpers ──

func setupTestAuthService(t *testing.T) (AuthService, *mockProfileRepo) {
	t.Helper()
	profiles := newMockProfileRepo()
	shifts := newMockShiftRepo()
	requests := newMockSwapRequestRepo(shifts)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret-please-rotate",
			AccessTokenTTL:        15 * time.Minute,
			RefreshTokenTTL:       7 * 24 * time.Hour,
			BCryptCost:            bcrypt.MinCost,
			SignatureMaxSizeBytes: 1024,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, testRepository(profiles, shifts, requests), jwtMgr, nil, zap.NewNop())
	return svc, profiles
}

func registerReq() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		FullName: "Alice Poster",
		StaffID:  "S-1001",
		Email:    "alice@example.com",
		Password: "correct horse",
	}
}

// ── Register / Login ──

func TestAuthService_Register_Success(t *testing.T) {
	svc, _ := setupTestAuthService(t)

	result, err := svc.Register(context.Background(), registerReq())
	if err != nil {
		t.Fatalf("Register should succeed: %v", err)
	}
	if result.Email != "alice@example.com" {
		t.Errorf("unexpected email: %s", result.Email)
	}
	if result.IsAdmin {
		t.Error("new profiles must not be admins")
	}
	if result.HasSignature {
		t.Error("new profiles have no signature on file")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := setupTestAuthService(t)

	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatalf("first Register should succeed: %v", err)
	}
	_, err := svc.Register(context.Background(), registerReq())
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got: %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _ := setupTestAuthService(t)
	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatalf("Register should succeed: %v", err)
	}

	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Login should succeed: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("login should issue both tokens")
	}
	if tokens.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("unexpected expires_in: %d", tokens.ExpiresIn)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _ := setupTestAuthService(t)
	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatalf("Register should succeed: %v", err)
	}

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "battery staple",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _ := setupTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

// ── RefreshToken ──

func TestAuthService_RefreshToken_RotatesPair(t *testing.T) {
	svc, _ := setupTestAuthService(t)
	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatalf("Register should succeed: %v", err)
	}
	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "alice@example.com", Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Login should succeed: %v", err)
	}

	fresh, err := svc.RefreshToken(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken should succeed: %v", err)
	}
	if fresh.AccessToken == "" || fresh.RefreshToken == "" {
		t.Error("refresh should issue a full pair")
	}
}

func TestAuthService_RefreshToken_RejectsAccessToken(t *testing.T) {
	svc, _ := setupTestAuthService(t)
	if _, err := svc.Register(context.Background(), registerReq()); err != nil {
		t.Fatalf("Register should succeed: %v", err)
	}
	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "alice@example.com", Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Login should succeed: %v", err)
	}

	_, err = svc.RefreshToken(context.Background(), tokens.AccessToken)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("an access token must not refresh, got: %v", err)
	}
}

func TestAuthService_RefreshToken_Garbage(t *testing.T) {
	svc, _ := setupTestAuthService(t)

	_, err := svc.RefreshToken(context.Background(), "not.a.token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got: %v", err)
	}
}

// ── UploadSignature ──

func TestAuthService_UploadSignature_Success(t *testing.T) {
	svc, profiles := setupTestAuthService(t)
	profiles.profiles["prof-1"] = signedProfile("prof-1", "Alice Poster")
	profiles.profiles["prof-1"].SignatureBlob = nil

	blob := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a}
	result, err := svc.UploadSignature(context.Background(), "prof-1", &dto.UploadSignatureRequest{
		Signature: base64.StdEncoding.EncodeToString(blob),
	})
	if err != nil {
		t.Fatalf("UploadSignature should succeed: %v", err)
	}
	if !result.HasSignature {
		t.Error("profile should report a signature on file")
	}
	if len(profiles.profiles["prof-1"].SignatureBlob) != len(blob) {
		t.Error("signature bytes should be stored")
	}
}

func TestAuthService_UploadSignature_NotBase64(t *testing.T) {
	svc, profiles := setupTestAuthService(t)
	profiles.profiles["prof-1"] = signedProfile("prof-1", "Alice Poster")

	_, err := svc.UploadSignature(context.Background(), "prof-1", &dto.UploadSignatureRequest{
		Signature: "%%% not base64 %%%",
	})
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("expected ErrSignatureInvalid, got: %v", err)
	}
}

func TestAuthService_UploadSignature_TooLarge(t *testing.T) {
	svc, profiles := setupTestAuthService(t)
	profiles.profiles["prof-1"] = signedProfile("prof-1", "Alice Poster")

	big := make([]byte, 2048) // limit is 1024 in the test config
	_, err := svc.UploadSignature(context.Background(), "prof-1", &dto.UploadSignatureRequest{
		Signature: base64.StdEncoding.EncodeToString(big),
	})
	if !errors.Is(err, ErrSignatureTooLarge) {
		t.Errorf("expected ErrSignatureTooLarge, got: %v", err)
	}
}

// ── GetCurrentProfile ──

func TestAuthService_GetCurrentProfile_NotFound(t *testing.T) {
	svc, _ := setupTestAuthService(t)

	_, err := svc.GetCurrentProfile(context.Background(), "ghost")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got: %v", err)
	}
}
