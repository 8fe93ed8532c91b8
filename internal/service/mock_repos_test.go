package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
)

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
	failGet  error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, profile *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if profile.ProfileID == "" {
		profile.ProfileID = fmt.Sprintf("prof-%04d", len(m.profiles)+1)
	}
	profile.CreatedAt = time.Now()
	m.profiles[profile.ProfileID] = profile
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	if p, ok := m.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) List(_ context.Context) ([]model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Profile
	for _, p := range m.profiles {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockProfileRepo) SetSignature(_ context.Context, id string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.SignatureBlob = blob
	return nil
}

func (m *mockProfileRepo) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsAdmin = isAdmin
	return nil
}

func (m *mockProfileRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, id)
	return nil
}

// ── Mock ShiftRepository ──

// mockShiftRepo guards its map with a mutex so claim races can be exercised
// from concurrent goroutines; UpdateStatus is atomic like the SQL it mocks.
type mockShiftRepo struct {
	mu            sync.Mutex
	shifts        map[string]*model.Shift
	failSetStatus error
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift)}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if shift.ShiftID == "" {
		shift.ShiftID = fmt.Sprintf("shift-%04d", len(m.shifts)+1)
	}
	shift.CreatedAt = time.Now()
	cp := *shift
	m.shifts[shift.ShiftID] = &cp
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.shifts[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) ListOpen(_ context.Context, area model.Area) ([]model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Shift
	for _, s := range m.shifts {
		if s.Status != model.ShiftOpen {
			continue
		}
		if area != "" && s.Area != area {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockShiftRepo) ListByPoster(_ context.Context, posterID string) ([]model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Shift
	for _, s := range m.shifts {
		if s.PosterID == posterID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockShiftRepo) ListAll(_ context.Context) ([]model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Shift
	for _, s := range m.shifts {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockShiftRepo) UpdateStatus(_ context.Context, id string, from, to model.ShiftStatus) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("%w: shift %s→%s", repository.ErrIllegalTransition, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shifts[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	return true, nil
}

func (m *mockShiftRepo) SetStatus(_ context.Context, id string, to model.ShiftStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSetStatus != nil {
		return m.failSetStatus
	}
	s, ok := m.shifts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = to
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.shifts, id)
	return nil
}

// ── Mock SwapRequestRepository ──

type mockSwapRequestRepo struct {
	mu          sync.Mutex
	requests    map[string]*model.SwapRequest
	shifts      *mockShiftRepo
	failDecline error
}

func newMockSwapRequestRepo(shifts *mockShiftRepo) *mockSwapRequestRepo {
	return &mockSwapRequestRepo{
		requests: make(map[string]*model.SwapRequest),
		shifts:   shifts,
	}
}

func (m *mockSwapRequestRepo) Create(_ context.Context, request *model.SwapRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if request.SwapRequestID == "" {
		request.SwapRequestID = fmt.Sprintf("req-%04d", len(m.requests)+1)
	}
	request.CreatedAt = time.Now()
	cp := *request
	cp.Shift = nil
	cp.Proposer = nil
	m.requests[request.SwapRequestID] = &cp
	return nil
}

func (m *mockSwapRequestRepo) GetByID(ctx context.Context, id string) (*model.SwapRequest, error) {
	m.mu.Lock()
	r, ok := m.requests[id]
	if !ok {
		m.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	m.mu.Unlock()

	// Preload the shift like the real repo does.
	if m.shifts != nil {
		if shift, err := m.shifts.GetByID(ctx, cp.ShiftID); err == nil {
			cp.Shift = shift
		}
	}
	return &cp, nil
}

func (m *mockSwapRequestRepo) ListByShiftPoster(ctx context.Context, posterID string) ([]model.SwapRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.SwapRequest
	for _, r := range m.requests {
		if m.shifts == nil {
			continue
		}
		s, ok := m.shifts.shifts[r.ShiftID]
		if !ok || s.PosterID != posterID {
			continue
		}
		cp := *r
		scp := *s
		cp.Shift = &scp
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockSwapRequestRepo) ListByProposer(_ context.Context, proposerID string) ([]model.SwapRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.SwapRequest
	for _, r := range m.requests {
		if r.ProposerID == proposerID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockSwapRequestRepo) ListAll(_ context.Context) ([]model.SwapRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.SwapRequest
	for _, r := range m.requests {
		result = append(result, *r)
	}
	return result, nil
}

func (m *mockSwapRequestRepo) UpdateStatus(_ context.Context, id string, from, to model.RequestStatus) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("%w: request %s→%s", repository.ErrIllegalTransition, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (m *mockSwapRequestRepo) DeclineRivals(_ context.Context, shiftID, acceptedID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDecline != nil {
		return nil, m.failDecline
	}
	var declined []string
	for _, r := range m.requests {
		if r.ShiftID == shiftID && r.SwapRequestID != acceptedID && r.Status == model.RequestPending {
			r.Status = model.RequestDeclined
			declined = append(declined, r.SwapRequestID)
		}
	}
	return declined, nil
}

func (m *mockSwapRequestRepo) DeleteResolvedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, r := range m.requests {
		if r.Status.Resolved() && r.CreatedAt.Before(cutoff) {
			delete(m.requests, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockSwapRequestRepo) CountResolvedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, r := range m.requests {
		if r.Status.Resolved() && r.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (m *mockSwapRequestRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.requests, id)
	return nil
}

// ── Mock DocumentService ──

type mockDocumentService struct {
	mu      sync.Mutex
	renders int
	fail    error
}

func (m *mockDocumentService) RenderGiveaway(*model.Shift, *model.Profile, *model.Profile) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	m.renders++
	return []byte("%PDF-giveaway"), nil
}

func (m *mockDocumentService) RenderSwap(*model.Shift, *model.SwapRequest, *model.Profile, *model.Profile) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	m.renders++
	return []byte("%PDF-swap"), nil
}

func (m *mockDocumentService) renderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renders
}

// ── Mock ChangePublisher ──

type publishedEvent struct {
	table, action, entityID string
}

type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (m *mockPublisher) PublishChange(_ context.Context, table, action, entityID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{table, action, entityID})
}

func (m *mockPublisher) published() []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedEvent(nil), m.events...)
}

// ── fixtures ──

func testRepository(profiles *mockProfileRepo, shifts *mockShiftRepo, requests *mockSwapRequestRepo) *repository.Repository {
	return &repository.Repository{
		Profile:     profiles,
		Shift:       shifts,
		SwapRequest: requests,
	}
}

func signedProfile(id, name string) *model.Profile {
	return &model.Profile{
		ProfileID:     id,
		FullName:      name,
		StaffID:       "S-" + id,
		Email:         id + "@example.com",
		SignatureBlob: []byte{0x89, 0x50, 0x4e, 0x47},
		CreatedAt:     time.Now(),
	}
}
