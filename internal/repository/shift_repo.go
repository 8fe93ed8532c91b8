package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shiftdesk/internal/model"
)

// ShiftRepository is the data access interface for shifts.
//
// UpdateStatus is the single-row conditional write the lifecycle engine is
// built on: the transition lands only if the row still holds the expected
// prior status, and the caller learns whether it did.
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	ListOpen(ctx context.Context, area model.Area) ([]model.Shift, error)
	ListByPoster(ctx context.Context, posterID string) ([]model.Shift, error)
	ListAll(ctx context.Context) ([]model.Shift, error)
	UpdateStatus(ctx context.Context, id string, from, to model.ShiftStatus) (bool, error)
	SetStatus(ctx context.Context, id string, to model.ShiftStatus) error
	Delete(ctx context.Context, id string) error
}

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("Poster").
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) ListOpen(ctx context.Context, area model.Area) ([]model.Shift, error) {
	q := r.db.WithContext(ctx).
		Preload("Poster").
		Where("status = ?", model.ShiftOpen).
		Order("date ASC").
		Order("start_time ASC")
	if area != "" {
		q = q.Where("area = ?", area)
	}
	var shifts []model.Shift
	err := q.Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) ListByPoster(ctx context.Context, posterID string) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Where("poster_id = ?", posterID).
		Order("date DESC").
		Order("start_time DESC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) ListAll(ctx context.Context) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Preload("Poster").
		Order("created_at DESC").
		Find(&shifts).Error
	return shifts, err
}

// UpdateStatus applies the guarded transition from→to. Edges outside the
// shift transition table are rejected with ErrIllegalTransition before any
// SQL runs. Returns false when the guard failed because the row no longer
// holds the expected status (or the row is gone); the caller lost a race and
// must report a conflict.
func (r *shiftRepo) UpdateStatus(ctx context.Context, id string, from, to model.ShiftStatus) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("%w: shift %s→%s", ErrIllegalTransition, from, to)
	}
	result := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shift_id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetStatus writes the status unconditionally, bypassing the transition
// table. Two callers: the admin override, and the accept flow's claim step,
// which must land Claimed whatever the shift row looks like by then.
func (r *shiftRepo) SetStatus(ctx context.Context, id string, to model.ShiftStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shift_id = ?", id).
		Update("status", to).Error
}

func (r *shiftRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("shift_id = ?", id).
		Delete(&model.Shift{}).Error
}
