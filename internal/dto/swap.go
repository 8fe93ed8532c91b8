package dto

import "time"

// ProposeSwapRequest offers a slot in exchange for a target shift.
// The offered slot is snapshotted verbatim onto the request row.
type ProposeSwapRequest struct {
	Date      string `json:"date"       binding:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" binding:"required,datetime=15:04"`
	EndTime   string `json:"end_time"   binding:"required,datetime=15:04"`
	Area      string `json:"area"       binding:"required,oneof=Gaming GPU Bar"`
}

// SwapRequestResponse is the public view of a swap request.
type SwapRequestResponse struct {
	SwapRequestID     string           `json:"swap_request_id"`
	ShiftID           string           `json:"shift_id"`
	ProposerID        string           `json:"proposer_id"`
	ProposerShiftDate string           `json:"proposer_shift_date"`
	ProposerStartTime string           `json:"proposer_start_time"`
	ProposerEndTime   string           `json:"proposer_end_time"`
	ProposerArea      string           `json:"proposer_area"`
	Status            string           `json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	Shift             *ShiftResponse   `json:"shift,omitempty"`
	Proposer          *ProfileResponse `json:"proposer,omitempty"`
}

// AcceptResult reports the outcome of the accept protocol.
//
// Request is always the accepted request: once the first step commits the
// decision is final. DeclinedRivals counts the Pending siblings that were
// bulk-declined. SecondaryFaults lists best-effort steps that failed after
// the acceptance committed (rival decline, shift claim, document render);
// they call for manual follow-up, never a revert.
type AcceptResult struct {
	Request         SwapRequestResponse `json:"request"`
	DeclinedRivals  int64               `json:"declined_rivals"`
	Document        []byte              `json:"document,omitempty"`
	DocumentName    string              `json:"document_name,omitempty"`
	SecondaryFaults []string            `json:"secondary_faults,omitempty"`
}
