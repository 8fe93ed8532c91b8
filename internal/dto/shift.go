package dto

import "time"

// PostShiftRequest posts a shift to the marketplace.
type PostShiftRequest struct {
	Type      string `json:"type"       binding:"required,oneof=Giveaway Swap"`
	Date      string `json:"date"       binding:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" binding:"required,datetime=15:04"`
	EndTime   string `json:"end_time"   binding:"required,datetime=15:04"`
	Area      string `json:"area"       binding:"required,oneof=Gaming GPU Bar"`
}

// MarkOutcomeRequest records the manager's decision on a claimed shift.
type MarkOutcomeRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=Completed Uncompleted"`
}

// SetShiftStatusRequest is the admin status override.
type SetShiftStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Open Claimed Completed Uncompleted"`
}

// ShiftResponse is the public view of a shift.
type ShiftResponse struct {
	ShiftID   string           `json:"shift_id"`
	PosterID  string           `json:"poster_id"`
	Type      string           `json:"type"`
	Date      string           `json:"date"`
	StartTime string           `json:"start_time"`
	EndTime   string           `json:"end_time"`
	Area      string           `json:"area"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	Poster    *ProfileResponse `json:"poster,omitempty"`
}

// ClaimResult reports a completed giveaway claim.
//
// Document holds the rendered PDF when step 2 of the claim (rendering)
// succeeded. SecondaryFaults lists advisory post-commit failures; the claim
// itself has already stuck either way.
type ClaimResult struct {
	Shift           ShiftResponse `json:"shift"`
	Document        []byte        `json:"document,omitempty"`
	DocumentName    string        `json:"document_name,omitempty"`
	SecondaryFaults []string      `json:"secondary_faults,omitempty"`
}
