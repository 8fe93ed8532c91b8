package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"shiftdesk/internal/repository"
)

// ExportService produces admin spreadsheets of the marketplace state.
// Output is returned as a buffer plus a suggested filename; the handler
// sets the download headers.
type ExportService interface {
	ExportShifts(ctx context.Context) (*bytes.Buffer, string, error)
	ExportRequests(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportShifts(ctx context.Context) (*bytes.Buffer, string, error) {
	shifts, err := s.repo.Shift.ListAll(ctx)
	if err != nil {
		s.logger.Error("list shifts for export failed", zap.Error(err))
		return nil, "", err
	}

	header := []string{"Shift ID", "Poster", "Staff #", "Type", "Date", "Start", "End", "Area", "Status", "Created"}
	rows := make([][]interface{}, 0, len(shifts))
	for i := range shifts {
		sh := &shifts[i]
		posterName, staffID := "", ""
		if sh.Poster != nil {
			posterName, staffID = sh.Poster.FullName, sh.Poster.StaffID
		}
		rows = append(rows, []interface{}{
			sh.ShiftID, posterName, staffID, string(sh.Type),
			sh.Date, sh.StartTime, sh.EndTime, string(sh.Area),
			string(sh.Status), sh.CreatedAt.Format(time.RFC3339),
		})
	}

	buf, err := writeSheet("Shifts", header, rows)
	if err != nil {
		s.logger.Error("build shifts workbook failed", zap.Error(err))
		return nil, "", err
	}
	filename := fmt.Sprintf("shifts-%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) ExportRequests(ctx context.Context) (*bytes.Buffer, string, error) {
	requests, err := s.repo.SwapRequest.ListAll(ctx)
	if err != nil {
		s.logger.Error("list requests for export failed", zap.Error(err))
		return nil, "", err
	}

	header := []string{"Request ID", "Target Shift", "Proposer", "Offered Date", "Offered Start", "Offered End", "Offered Area", "Status", "Created"}
	rows := make([][]interface{}, 0, len(requests))
	for i := range requests {
		r := &requests[i]
		target := r.ShiftID
		if r.Shift != nil {
			target = fmt.Sprintf("%s %s-%s (%s)", r.Shift.Date, r.Shift.StartTime, r.Shift.EndTime, r.Shift.Area)
		}
		proposerName := r.ProposerID
		if r.Proposer != nil {
			proposerName = r.Proposer.FullName
		}
		rows = append(rows, []interface{}{
			r.SwapRequestID, target, proposerName,
			r.ProposerShiftDate, r.ProposerStartTime, r.ProposerEndTime,
			string(r.ProposerArea), string(r.Status), r.CreatedAt.Format(time.RFC3339),
		})
	}

	buf, err := writeSheet("Swap Requests", header, rows)
	if err != nil {
		s.logger.Error("build requests workbook failed", zap.Error(err))
		return nil, "", err
	}
	filename := fmt.Sprintf("swap-requests-%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

func writeSheet(sheet string, header []string, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}
	for rowIdx, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f.WriteToBuffer()
}
