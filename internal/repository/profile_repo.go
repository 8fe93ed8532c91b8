package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftdesk/internal/model"
)

// ProfileRepository is the data access interface for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
	SetSignature(ctx context.Context, id string, blob []byte) error
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
	Delete(ctx context.Context, id string) error
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", id).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) List(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) SetSignature(ctx context.Context, id string, blob []byte) error {
	return r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("profile_id = ?", id).
		Update("signature_blob", blob).Error
}

func (r *profileRepo) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("profile_id = ?", id).
		Update("is_admin", isAdmin).Error
}

func (r *profileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("profile_id = ?", id).
		Delete(&model.Profile{}).Error
}
