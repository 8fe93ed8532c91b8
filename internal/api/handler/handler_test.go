package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	"shiftdesk/internal/service"
	"shiftdesk/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Mock ShiftService ──

type mockShiftService struct {
	postResult    *dto.ShiftResponse
	postErr       error
	claimResult   *dto.ClaimResult
	claimErr      error
	outcomeResult *dto.ShiftResponse
	outcomeErr    error
	deleteErr     error
	setResult     *dto.ShiftResponse
	setErr        error
	listOpen      []dto.ShiftResponse
	listOpenErr   error
	listMine      []dto.ShiftResponse
	listAll       []dto.ShiftResponse
	getResult     *dto.ShiftResponse
	getErr        error
}

func (m *mockShiftService) Post(_ context.Context, _ string, _ *dto.PostShiftRequest) (*dto.ShiftResponse, error) {
	return m.postResult, m.postErr
}
func (m *mockShiftService) ClaimGiveaway(_ context.Context, _, _ string) (*dto.ClaimResult, error) {
	return m.claimResult, m.claimErr
}
func (m *mockShiftService) MarkOutcome(_ context.Context, _, _ string, _ *dto.MarkOutcomeRequest) (*dto.ShiftResponse, error) {
	return m.outcomeResult, m.outcomeErr
}
func (m *mockShiftService) Delete(_ context.Context, _, _ string) error { return m.deleteErr }
func (m *mockShiftService) SetStatus(_ context.Context, _, _ string, _ model.ShiftStatus) (*dto.ShiftResponse, error) {
	return m.setResult, m.setErr
}
func (m *mockShiftService) ListOpen(_ context.Context, _ string) ([]dto.ShiftResponse, error) {
	return m.listOpen, m.listOpenErr
}
func (m *mockShiftService) ListMine(_ context.Context, _ string) ([]dto.ShiftResponse, error) {
	return m.listMine, nil
}
func (m *mockShiftService) ListAll(_ context.Context) ([]dto.ShiftResponse, error) {
	return m.listAll, nil
}
func (m *mockShiftService) Get(_ context.Context, _ string) (*dto.ShiftResponse, error) {
	return m.getResult, m.getErr
}

// ── Mock SwapService ──

type mockSwapService struct {
	proposeResult *dto.SwapRequestResponse
	proposeErr    error
	acceptResult  *dto.AcceptResult
	acceptErr     error
	declineResult *dto.SwapRequestResponse
	declineErr    error
	incoming      []dto.SwapRequestResponse
	outgoing      []dto.SwapRequestResponse
	all           []dto.SwapRequestResponse
	adminDelErr   error
}

func (m *mockSwapService) Propose(_ context.Context, _, _ string, _ *dto.ProposeSwapRequest) (*dto.SwapRequestResponse, error) {
	return m.proposeResult, m.proposeErr
}
func (m *mockSwapService) Accept(_ context.Context, _, _ string) (*dto.AcceptResult, error) {
	return m.acceptResult, m.acceptErr
}
func (m *mockSwapService) Decline(_ context.Context, _, _ string) (*dto.SwapRequestResponse, error) {
	return m.declineResult, m.declineErr
}
func (m *mockSwapService) ListIncoming(_ context.Context, _ string) ([]dto.SwapRequestResponse, error) {
	return m.incoming, nil
}
func (m *mockSwapService) ListOutgoing(_ context.Context, _ string) ([]dto.SwapRequestResponse, error) {
	return m.outgoing, nil
}
func (m *mockSwapService) ListAll(_ context.Context) ([]dto.SwapRequestResponse, error) {
	return m.all, nil
}
func (m *mockSwapService) AdminDelete(_ context.Context, _ string) error { return m.adminDelErr }

// ── helpers ──

// authenticated injects the identity the JWT middleware would have set.
func authenticated(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("is_admin", false)
		c.Next()
	}
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var env response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	return env
}

// ── ShiftHandler ──

func TestShiftHandler_Post_Created(t *testing.T) {
	svc := &mockShiftService{postResult: &dto.ShiftResponse{ShiftID: "shift-1", Status: "Open"}}
	h := NewShiftHandler(svc)

	r := gin.New()
	r.POST("/shifts", authenticated("poster-001"), h.Post)

	w := doJSON(r, http.MethodPost, "/shifts", gin.H{
		"type": "Giveaway", "date": "2026-03-14",
		"start_time": "18:00", "end_time": "23:00", "area": "Bar",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestShiftHandler_Post_BindingRejectsBadEnum(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{})

	r := gin.New()
	r.POST("/shifts", authenticated("poster-001"), h.Post)

	w := doJSON(r, http.MethodPost, "/shifts", gin.H{
		"type": "Loan", "date": "2026-03-14",
		"start_time": "18:00", "end_time": "23:00", "area": "Bar",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown type, got %d", w.Code)
	}
}

func TestShiftHandler_Claim_ConflictMapsTo409(t *testing.T) {
	svc := &mockShiftService{claimErr: service.ErrShiftTaken}
	h := NewShiftHandler(svc)

	r := gin.New()
	r.POST("/shifts/:id/claim", authenticated("claimant-001"), h.Claim)

	w := doJSON(r, http.MethodPost, "/shifts/shift-1/claim", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestShiftHandler_Claim_ValidationMapsTo400(t *testing.T) {
	svc := &mockShiftService{claimErr: service.ErrSignatureRequired}
	h := NewShiftHandler(svc)

	r := gin.New()
	r.POST("/shifts/:id/claim", authenticated("claimant-001"), h.Claim)

	w := doJSON(r, http.MethodPost, "/shifts/shift-1/claim", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestShiftHandler_Get_NotFoundMapsTo404(t *testing.T) {
	svc := &mockShiftService{getErr: service.ErrShiftNotFound}
	h := NewShiftHandler(svc)

	r := gin.New()
	r.GET("/shifts/:id", h.Get)

	w := doJSON(r, http.MethodGet, "/shifts/ghost", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestShiftHandler_MarkOutcome_OwnershipMapsTo403(t *testing.T) {
	svc := &mockShiftService{outcomeErr: service.ErrNotShiftOwner}
	h := NewShiftHandler(svc)

	r := gin.New()
	r.PUT("/shifts/:id/outcome", authenticated("intruder"), h.MarkOutcome)

	w := doJSON(r, http.MethodPut, "/shifts/shift-1/outcome", gin.H{"outcome": "Completed"})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestShiftHandler_Claim_SurfacesSecondaryFaults(t *testing.T) {
	svc := &mockShiftService{claimResult: &dto.ClaimResult{
		Shift:           dto.ShiftResponse{ShiftID: "shift-1", Status: "Claimed"},
		SecondaryFaults: []string{"secondary fault at render_document: printer on fire"},
	}}
	h := NewShiftHandler(svc)

	r := gin.New()
	r.POST("/shifts/:id/claim", authenticated("claimant-001"), h.Claim)

	w := doJSON(r, http.MethodPost, "/shifts/shift-1/claim", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("claim with faults is still a 200, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	data, _ := json.Marshal(env.Data)
	var result dto.ClaimResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode claim result: %v", err)
	}
	if len(result.SecondaryFaults) != 1 {
		t.Errorf("secondary faults should ride along in the body, got %+v", result)
	}
}

// ── SwapHandler ──

func TestSwapHandler_Accept_ResolvedMapsTo409(t *testing.T) {
	svc := &mockSwapService{acceptErr: service.ErrRequestResolved}
	h := NewSwapHandler(svc)

	r := gin.New()
	r.POST("/requests/:id/accept", authenticated("poster-001"), h.Accept)

	w := doJSON(r, http.MethodPost, "/requests/req-1/accept", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestSwapHandler_Accept_NotRecipientMapsTo403(t *testing.T) {
	svc := &mockSwapService{acceptErr: service.ErrNotRecipient}
	h := NewSwapHandler(svc)

	r := gin.New()
	r.POST("/requests/:id/accept", authenticated("intruder"), h.Accept)

	w := doJSON(r, http.MethodPost, "/requests/req-1/accept", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestSwapHandler_Propose_Created(t *testing.T) {
	svc := &mockSwapService{proposeResult: &dto.SwapRequestResponse{SwapRequestID: "req-1", Status: "Pending"}}
	h := NewSwapHandler(svc)

	r := gin.New()
	r.POST("/shifts/:id/requests", authenticated("proposer-001"), h.Propose)

	w := doJSON(r, http.MethodPost, "/shifts/shift-1/requests", gin.H{
		"date": "2026-03-16", "start_time": "10:00", "end_time": "16:00", "area": "GPU",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSwapHandler_Propose_Unauthenticated(t *testing.T) {
	h := NewSwapHandler(&mockSwapService{})

	r := gin.New()
	r.POST("/shifts/:id/requests", h.Propose) // no identity middleware

	w := doJSON(r, http.MethodPost, "/shifts/shift-1/requests", gin.H{
		"date": "2026-03-16", "start_time": "10:00", "end_time": "16:00", "area": "GPU",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
