package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shiftdesk/internal/model"
)

// SwapRequestRepository is the data access interface for swap requests.
//
// UpdateStatus is the guarded single-row write the accept protocol hinges
// on; DeclineRivals is the best-effort bulk write that resolves the losing
// side. DeleteResolvedBefore/CountResolvedBefore serve the retention
// sweeper and by construction never touch Pending rows.
type SwapRequestRepository interface {
	Create(ctx context.Context, request *model.SwapRequest) error
	GetByID(ctx context.Context, id string) (*model.SwapRequest, error)
	ListByShiftPoster(ctx context.Context, posterID string) ([]model.SwapRequest, error)
	ListByProposer(ctx context.Context, proposerID string) ([]model.SwapRequest, error)
	ListAll(ctx context.Context) ([]model.SwapRequest, error)
	UpdateStatus(ctx context.Context, id string, from, to model.RequestStatus) (bool, error)
	DeclineRivals(ctx context.Context, shiftID, acceptedID string) ([]string, error)
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
}

type swapRequestRepo struct {
	db *gorm.DB
}

func NewSwapRequestRepo(db *gorm.DB) SwapRequestRepository {
	return &swapRequestRepo{db: db}
}

func (r *swapRequestRepo) Create(ctx context.Context, request *model.SwapRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *swapRequestRepo) GetByID(ctx context.Context, id string) (*model.SwapRequest, error) {
	var request model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Shift.Poster").
		Preload("Proposer").
		Where("swap_request_id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByShiftPoster returns the incoming projection: requests whose target
// shift was posted by posterID, newest first.
func (r *swapRequestRepo) ListByShiftPoster(ctx context.Context, posterID string) ([]model.SwapRequest, error) {
	var requests []model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Shift.Poster").
		Preload("Proposer").
		Joins("JOIN shifts ON shifts.shift_id = swap_requests.shift_id").
		Where("shifts.poster_id = ?", posterID).
		Order("swap_requests.created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *swapRequestRepo) ListByProposer(ctx context.Context, proposerID string) ([]model.SwapRequest, error) {
	var requests []model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Shift.Poster").
		Preload("Proposer").
		Where("proposer_id = ?", proposerID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *swapRequestRepo) ListAll(ctx context.Context) ([]model.SwapRequest, error) {
	var requests []model.SwapRequest
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Proposer").
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// UpdateStatus applies the guarded transition from→to. Edges outside the
// request transition table are rejected with ErrIllegalTransition before any
// SQL runs. False means another actor already resolved the request.
func (r *swapRequestRepo) UpdateStatus(ctx context.Context, id string, from, to model.RequestStatus) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("%w: request %s→%s", ErrIllegalTransition, from, to)
	}
	result := r.db.WithContext(ctx).
		Model(&model.SwapRequest{}).
		Where("swap_request_id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeclineRivals bulk-declines every Pending request for shiftID other than
// the accepted one and returns the declined ids, so the caller can announce
// each resolved rival.
func (r *swapRequestRepo) DeclineRivals(ctx context.Context, shiftID, acceptedID string) ([]string, error) {
	var rivals []model.SwapRequest
	result := r.db.WithContext(ctx).
		Model(&rivals).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "swap_request_id"}}}).
		Where("shift_id = ? AND swap_request_id != ? AND status = ?",
			shiftID, acceptedID, model.RequestPending).
		Update("status", model.RequestDeclined)
	if result.Error != nil {
		return nil, result.Error
	}
	ids := make([]string, 0, len(rivals))
	for _, rival := range rivals {
		ids = append(ids, rival.SwapRequestID)
	}
	return ids, nil
}

func (r *swapRequestRepo) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?",
			[]model.RequestStatus{model.RequestAccepted, model.RequestDeclined}, cutoff).
		Delete(&model.SwapRequest{})
	return result.RowsAffected, result.Error
}

func (r *swapRequestRepo) CountResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SwapRequest{}).
		Where("status IN ? AND created_at < ?",
			[]model.RequestStatus{model.RequestAccepted, model.RequestDeclined}, cutoff).
		Count(&count).Error
	return count, err
}

func (r *swapRequestRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("swap_request_id = ?", id).
		Delete(&model.SwapRequest{}).Error
}
