package service

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"shiftdesk/internal/model"
)

// DocumentService renders the signed paper trail handed to management once
// an exchange is final.
//
// Rendering is pure: it reads the entities it is given and produces a byte
// blob, or an error the caller treats as a secondary fault. A party without
// a usable signature image gets their form rendered anyway, signature line
// left blank.
type DocumentService interface {
	// RenderGiveaway fills the changeover form for a claimed giveaway.
	RenderGiveaway(shift *model.Shift, giver, taker *model.Profile) ([]byte, error)
	// RenderSwap fills the two-sided form for an accepted swap: the target
	// shift on the poster's side, the request's snapshotted offered slot on
	// the proposer's side.
	RenderSwap(shift *model.Shift, request *model.SwapRequest, poster, proposer *model.Profile) ([]byte, error)
}

type documentService struct {
	logger *zap.Logger
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(logger *zap.Logger) DocumentService {
	return &documentService{logger: logger}
}

// Fixed layout of the A4 portrait form, in points.
const (
	docLeftColX    = 60.0
	docRightColX   = 320.0
	docHeaderY     = 70.0
	docBlockTopY   = 130.0
	docLineGap     = 26.0
	docSigWidth    = 140.0
	docSigHeight   = 50.0
	docFooterY     = 760.0
	docTextSize    = 11.0
	docHeadingSize = 16.0
)

type slotFields struct {
	date      string
	startTime string
	endTime   string
	area      string
}

func (s *documentService) RenderGiveaway(shift *model.Shift, giver, taker *model.Profile) ([]byte, error) {
	pdf := s.newForm("SHIFT GIVEAWAY")

	slot := slotFields{shift.Date, shift.StartTime, shift.EndTime, string(shift.Area)}
	s.drawParty(pdf, docLeftColX, "Releasing staff member", giver, slot)
	s.drawParty(pdf, docRightColX, "Receiving staff member", taker, slot)
	s.drawFooter(pdf)

	return s.output(pdf)
}

func (s *documentService) RenderSwap(shift *model.Shift, request *model.SwapRequest, poster, proposer *model.Profile) ([]byte, error) {
	pdf := s.newForm("SHIFT SWAP")

	posterSlot := slotFields{shift.Date, shift.StartTime, shift.EndTime, string(shift.Area)}
	offeredSlot := slotFields{
		request.ProposerShiftDate,
		request.ProposerStartTime,
		request.ProposerEndTime,
		string(request.ProposerArea),
	}
	s.drawParty(pdf, docLeftColX, "Staff member 1 (original shift)", poster, posterSlot)
	s.drawParty(pdf, docRightColX, "Staff member 2 (offered shift)", proposer, offeredSlot)
	s.drawFooter(pdf)

	return s.output(pdf)
}

func (s *documentService) newForm(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", docHeadingSize)
	pdf.Text(docLeftColX, docHeaderY, title+" / CHANGEOVER FORM")
	pdf.SetFont("Helvetica", "", docTextSize)
	pdf.Text(docLeftColX, docHeaderY+20, "Completed form must be emailed to management for approval.")
	return pdf
}

func (s *documentService) drawParty(pdf *gofpdf.Fpdf, x float64, label string, p *model.Profile, slot slotFields) {
	y := docBlockTopY

	pdf.SetFont("Helvetica", "B", docTextSize)
	pdf.Text(x, y, label)
	pdf.SetFont("Helvetica", "", docTextSize)

	lines := []string{
		"Name: " + p.FullName,
		"Staff #: " + p.StaffID,
		"Shift date: " + slot.date,
		fmt.Sprintf("Shift time: %s - %s", slot.startTime, slot.endTime),
		"Area of work: " + slot.area,
	}
	for _, line := range lines {
		y += docLineGap
		pdf.Text(x, y, line)
	}

	y += docLineGap
	pdf.Text(x, y, "Signature:")
	s.drawSignature(pdf, x+60, y-docSigHeight+10, p)

	y += docSigHeight + docLineGap
	pdf.Text(x, y, "Date signed: "+time.Now().Format("2006-01-02"))
}

// drawSignature embeds the party's signature PNG. A missing or undecodable
// blob leaves the signature area blank; the form is still valid paper, it
// just needs a pen.
func (s *documentService) drawSignature(pdf *gofpdf.Fpdf, x, y float64, p *model.Profile) {
	if !p.HasSignature() {
		return
	}
	if _, err := png.Decode(bytes.NewReader(p.SignatureBlob)); err != nil {
		s.logger.Warn("signature blob is not a decodable PNG, omitting from document",
			zap.String("profile_id", p.ProfileID),
			zap.Error(err),
		)
		return
	}

	name := "sig-" + p.ProfileID
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(p.SignatureBlob))
	pdf.ImageOptions(name, x, y, docSigWidth, docSigHeight, false, opts, 0, "")
}

func (s *documentService) drawFooter(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(docLeftColX, docFooterY, "Manager approval is recorded on paper; this form is the record of the staff agreement.")
}

func (s *documentService) output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}
