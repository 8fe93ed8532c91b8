package model

import "time"

// RequestStatus is the wire-level swap request state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestAccepted RequestStatus = "Accepted"
	RequestDeclined RequestStatus = "Declined"
)

// requestTransitions is the request state machine. Accepted and Declined are
// terminal; a resolved request never re-enters Pending.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:  {RequestAccepted, RequestDeclined},
	RequestAccepted: {},
	RequestDeclined: {},
}

// CanTransition reports whether s→to is in the transition table.
func (s RequestStatus) CanTransition(to RequestStatus) bool {
	for _, next := range requestTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Resolved reports whether the request has left Pending.
func (s RequestStatus) Resolved() bool {
	return s == RequestAccepted || s == RequestDeclined
}

// SwapRequest is a proposal to exchange an offered slot for a target shift;
// table swap_requests.
//
// The proposer_* fields are a snapshot of the offered slot captured at
// proposal time. They are a fixed commitment: never re-derived from or
// synced against any shift row afterwards.
type SwapRequest struct {
	SwapRequestID     string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"swap_request_id"`
	ShiftID           string        `gorm:"type:uuid;not null"                             json:"shift_id"`
	ProposerID        string        `gorm:"type:uuid;not null"                             json:"proposer_id"`
	ProposerShiftDate string        `gorm:"type:varchar(10);not null"                      json:"proposer_shift_date"`
	ProposerStartTime string        `gorm:"type:varchar(5);not null"                       json:"proposer_start_time"`
	ProposerEndTime   string        `gorm:"type:varchar(5);not null"                       json:"proposer_end_time"`
	ProposerArea      Area          `gorm:"type:varchar(10);not null"                      json:"proposer_area"`
	Status            RequestStatus `gorm:"type:varchar(10);not null;default:'Pending'"    json:"status"`
	CreatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Shift    *Shift   `gorm:"foreignKey:ShiftID;references:ShiftID"      json:"shift,omitempty"`
	Proposer *Profile `gorm:"foreignKey:ProposerID;references:ProfileID" json:"proposer,omitempty"`
}

// TableName sets the table name.
func (SwapRequest) TableName() string { return "swap_requests" }
