package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrIllegalTransition is returned by the UpdateStatus methods when the
// requested from→to edge is not in the entity's transition table. The tables
// are the contract; a caller asking for an edge outside them is a bug, not a
// lost race, so this is an error rather than a false guard result.
var ErrIllegalTransition = errors.New("illegal status transition")

// Repository aggregates all entity repositories.
type Repository struct {
	Profile     ProfileRepository
	Shift       ShiftRepository
	SwapRequest SwapRequestRepository
}

// NewRepository builds the aggregate.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Profile:     NewProfileRepo(db),
		Shift:       NewShiftRepo(db),
		SwapRequest: NewSwapRequestRepo(db),
	}
}
