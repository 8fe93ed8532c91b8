package model

import "time"

// ShiftType is the wire-level shift kind.
type ShiftType string

const (
	TypeGiveaway ShiftType = "Giveaway" // relinquished to whoever claims first
	TypeSwap     ShiftType = "Swap"     // exchanged for an accepted counter-offer
)

// Valid reports whether t is a known shift type.
func (t ShiftType) Valid() bool { return t == TypeGiveaway || t == TypeSwap }

// Area is the wire-level area of work.
type Area string

const (
	AreaGaming Area = "Gaming"
	AreaGPU    Area = "GPU"
	AreaBar    Area = "Bar"
)

// Valid reports whether a is a known area.
func (a Area) Valid() bool { return a == AreaGaming || a == AreaGPU || a == AreaBar }

// ShiftStatus is the wire-level shift lifecycle state.
type ShiftStatus string

const (
	ShiftOpen        ShiftStatus = "Open"
	ShiftClaimed     ShiftStatus = "Claimed"
	ShiftCompleted   ShiftStatus = "Completed"
	ShiftUncompleted ShiftStatus = "Uncompleted"
)

// shiftTransitions is the shift state machine. A Claimed shift returning to
// market is stored as Open directly (the manager declined the change), so
// Claimed→Open is a legal edge alongside the Uncompleted terminal.
var shiftTransitions = map[ShiftStatus][]ShiftStatus{
	ShiftOpen:        {ShiftClaimed},
	ShiftClaimed:     {ShiftCompleted, ShiftUncompleted, ShiftOpen},
	ShiftUncompleted: {ShiftOpen},
	ShiftCompleted:   {},
}

// CanTransition reports whether s→to is in the transition table.
func (s ShiftStatus) CanTransition(to ShiftStatus) bool {
	for _, next := range shiftTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s ShiftStatus) Valid() bool {
	_, ok := shiftTransitions[s]
	return ok
}

// Shift is a postable unit of work availability: table shifts.
//
// Date and the time fields are local wall-clock strings (YYYY-MM-DD, HH:MM)
// with no timezone, matching the paper form they end up on.
type Shift struct {
	ShiftID   string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	PosterID  string      `gorm:"type:uuid;not null"                             json:"poster_id"`
	Type      ShiftType   `gorm:"type:varchar(10);not null"                      json:"type"`
	Date      string      `gorm:"type:varchar(10);not null"                      json:"date"`
	StartTime string      `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime   string      `gorm:"type:varchar(5);not null"                       json:"end_time"`
	Area      Area        `gorm:"type:varchar(10);not null"                      json:"area"`
	Status    ShiftStatus `gorm:"type:varchar(12);not null;default:'Open'"       json:"status"`
	CreatedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Poster *Profile `gorm:"foreignKey:PosterID;references:ProfileID" json:"poster,omitempty"`
}

// TableName sets the table name.
func (Shift) TableName() string { return "shifts" }

// StartsAt parses the shift's wall-clock start into a time in loc.
func (s *Shift) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", s.Date+" "+s.StartTime, loc)
}
