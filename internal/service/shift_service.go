package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/config"
	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
	"shiftdesk/pkg/apperr"
)

// ── shift lifecycle business errors ──

var (
	ErrShiftNotFound     = apperr.New(apperr.KindNotFound, "shift not found")
	ErrProfileNotFound   = apperr.New(apperr.KindNotFound, "profile not found")
	ErrSignatureRequired = apperr.New(apperr.KindValidation, "a signature must be on file before posting or taking shifts")
	ErrShiftInPast       = apperr.New(apperr.KindValidation, "cannot post shifts that have already started")
	ErrShiftTooSoon      = apperr.New(apperr.KindValidation, "cannot post shifts this close to their start time")
	ErrOwnShift          = apperr.New(apperr.KindValidation, "cannot take your own shift")
	ErrNotGiveaway       = apperr.New(apperr.KindValidation, "shift is not a giveaway")
	ErrShiftNotClaimed   = apperr.New(apperr.KindValidation, "shift is not awaiting a manager outcome")
	ErrNotShiftOwner     = apperr.New(apperr.KindValidation, "only the shift's poster may do this")
	ErrDeleteNotOpen     = apperr.New(apperr.KindValidation, "only open shifts can be deleted")
	ErrInvalidArea       = apperr.New(apperr.KindValidation, "unknown area")

	// Conflicts: the guard of a conditional write failed because another
	// actor got there first. Callers must refresh, never retry blindly.
	ErrShiftTaken        = apperr.New(apperr.KindConflict, "shift is no longer available")
	ErrShiftStateChanged = apperr.New(apperr.KindConflict, "shift was already updated by someone else")
)

// ShiftService owns the shift state machine.
type ShiftService interface {
	// Post puts a shift on the marketplace. Hard gates: the poster must have
	// a signature on file and the shift must start at least the configured
	// lead time from now.
	Post(ctx context.Context, posterID string, req *dto.PostShiftRequest) (*dto.ShiftResponse, error)
	// ClaimGiveaway transitions an open giveaway to Claimed for claimantID.
	// Exactly one of any set of racing claimants wins; the rest get
	// ErrShiftTaken. The giveaway document is rendered after the claim
	// commits and its failure never reverts the claim.
	ClaimGiveaway(ctx context.Context, shiftID, claimantID string) (*dto.ClaimResult, error)
	// MarkOutcome records the manager's decision on a claimed shift.
	// Uncompleted returns the shift to the marketplace (status Open).
	MarkOutcome(ctx context.Context, shiftID, callerID string, req *dto.MarkOutcomeRequest) (*dto.ShiftResponse, error)
	// Delete removes a shift. Owners may delete their own Open shifts;
	// admins may delete any shift in any status. Both paths deliberate.
	Delete(ctx context.Context, shiftID, callerID string) error
	// SetStatus is the admin status override; it bypasses the transition
	// table.
	SetStatus(ctx context.Context, shiftID, callerID string, status model.ShiftStatus) (*dto.ShiftResponse, error)

	ListOpen(ctx context.Context, area string) ([]dto.ShiftResponse, error)
	ListMine(ctx context.Context, posterID string) ([]dto.ShiftResponse, error)
	ListAll(ctx context.Context) ([]dto.ShiftResponse, error)
	Get(ctx context.Context, shiftID string) (*dto.ShiftResponse, error)
}

type shiftService struct {
	repo        *repository.Repository
	docs        DocumentService
	events      ChangePublisher
	logger      *zap.Logger
	minLeadTime time.Duration
	now         func() time.Time
}

// NewShiftService creates a ShiftService.
func NewShiftService(
	cfg *config.Config,
	repo *repository.Repository,
	docs DocumentService,
	events ChangePublisher,
	logger *zap.Logger,
) ShiftService {
	return &shiftService{
		repo:        repo,
		docs:        docs,
		events:      events,
		logger:      logger,
		minLeadTime: cfg.Posting.MinLeadTime,
		now:         time.Now,
	}
}

func (s *shiftService) publish(ctx context.Context, action, id string) {
	if s.events != nil {
		s.events.PublishChange(ctx, tableShifts, action, id)
	}
}

func (s *shiftService) Post(ctx context.Context, posterID string, req *dto.PostShiftRequest) (*dto.ShiftResponse, error) {
	poster, err := s.repo.Profile.GetByID(ctx, posterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("load poster failed", zap.Error(err))
		return nil, err
	}
	if !poster.HasSignature() {
		return nil, ErrSignatureRequired
	}

	startsAt, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.StartTime, time.Local)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, fmt.Errorf("invalid shift start: %w", err))
	}
	now := s.now()
	if !startsAt.After(now) {
		return nil, ErrShiftInPast
	}
	if startsAt.Sub(now) < s.minLeadTime {
		return nil, ErrShiftTooSoon
	}

	shift := &model.Shift{
		PosterID:  posterID,
		Type:      model.ShiftType(req.Type),
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Area:      model.Area(req.Area),
		Status:    model.ShiftOpen,
	}
	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		s.logger.Error("create shift failed", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, "insert", shift.ShiftID)
	s.logger.Info("shift posted",
		zap.String("shift_id", shift.ShiftID),
		zap.String("type", req.Type),
		zap.String("date", req.Date),
	)

	shift.Poster = poster
	return toShiftResponse(shift), nil
}

func (s *shiftService) ClaimGiveaway(ctx context.Context, shiftID, claimantID string) (*dto.ClaimResult, error) {
	claimant, err := s.repo.Profile.GetByID(ctx, claimantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("load claimant failed", zap.Error(err))
		return nil, err
	}
	if !claimant.HasSignature() {
		return nil, ErrSignatureRequired
	}

	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("load shift failed", zap.Error(err))
		return nil, err
	}
	if shift.Type != model.TypeGiveaway {
		return nil, ErrNotGiveaway
	}
	if shift.PosterID == claimantID {
		return nil, ErrOwnShift
	}
	if shift.Status != model.ShiftOpen {
		return nil, ErrShiftTaken
	}

	// The claim itself: a guarded Open→Claimed write. Racing claimants all
	// reach this point; the guard picks exactly one winner.
	applied, err := s.repo.Shift.UpdateStatus(ctx, shiftID, model.ShiftOpen, model.ShiftClaimed)
	if err != nil {
		s.logger.Error("claim shift failed", zap.Error(err))
		return nil, err
	}
	if !applied {
		return nil, ErrShiftTaken
	}
	shift.Status = model.ShiftClaimed
	s.publish(ctx, "update", shiftID)
	s.logger.Info("giveaway claimed",
		zap.String("shift_id", shiftID),
		zap.String("claimant_id", claimantID),
	)

	// Everything below is paperwork. The claim has committed; a failure
	// here is reported, never unwound.
	result := &dto.ClaimResult{Shift: *toShiftResponse(shift)}

	giver, err := s.repo.Profile.GetByID(ctx, shift.PosterID)
	if err != nil {
		fault := &apperr.SecondaryFault{Step: "render_document", Err: fmt.Errorf("load poster profile: %w", err)}
		s.logger.Warn("giveaway document skipped", zap.Error(fault))
		result.SecondaryFaults = append(result.SecondaryFaults, fault.Error())
		return result, nil
	}

	doc, err := s.docs.RenderGiveaway(shift, giver, claimant)
	if err != nil {
		fault := &apperr.SecondaryFault{Step: "render_document", Err: err}
		s.logger.Warn("giveaway document failed", zap.Error(fault))
		result.SecondaryFaults = append(result.SecondaryFaults, fault.Error())
		return result, nil
	}

	result.Document = doc
	result.DocumentName = fmt.Sprintf("shift-giveaway-%s-%s.pdf", shift.Date, giver.FullName)
	return result, nil
}

func (s *shiftService) MarkOutcome(ctx context.Context, shiftID, callerID string, req *dto.MarkOutcomeRequest) (*dto.ShiftResponse, error) {
	shift, caller, err := s.loadShiftAndCaller(ctx, shiftID, callerID)
	if err != nil {
		return nil, err
	}
	if shift.PosterID != callerID && !caller.IsAdmin {
		return nil, ErrNotShiftOwner
	}
	if shift.Status != model.ShiftClaimed {
		return nil, ErrShiftNotClaimed
	}

	// "Uncompleted" means the manager declined the change: the shift goes
	// back on the marketplace rather than parking in a dead state.
	target := model.ShiftCompleted
	if req.Outcome == string(model.ShiftUncompleted) {
		target = model.ShiftOpen
	}

	applied, err := s.repo.Shift.UpdateStatus(ctx, shiftID, model.ShiftClaimed, target)
	if err != nil {
		s.logger.Error("mark outcome failed", zap.Error(err))
		return nil, err
	}
	if !applied {
		return nil, ErrShiftStateChanged
	}

	shift.Status = target
	s.publish(ctx, "update", shiftID)
	s.logger.Info("shift outcome recorded",
		zap.String("shift_id", shiftID),
		zap.String("outcome", req.Outcome),
	)
	return toShiftResponse(shift), nil
}

func (s *shiftService) Delete(ctx context.Context, shiftID, callerID string) error {
	shift, caller, err := s.loadShiftAndCaller(ctx, shiftID, callerID)
	if err != nil {
		return err
	}

	// Two deliberate paths: owners may remove their own Open postings; the
	// admin override may remove any shift regardless of status.
	if !caller.IsAdmin {
		if shift.PosterID != callerID {
			return ErrNotShiftOwner
		}
		if shift.Status != model.ShiftOpen {
			return ErrDeleteNotOpen
		}
	}

	if err := s.repo.Shift.Delete(ctx, shiftID); err != nil {
		s.logger.Error("delete shift failed", zap.Error(err))
		return err
	}
	s.publish(ctx, "delete", shiftID)
	return nil
}

func (s *shiftService) SetStatus(ctx context.Context, shiftID, callerID string, status model.ShiftStatus) (*dto.ShiftResponse, error) {
	shift, caller, err := s.loadShiftAndCaller(ctx, shiftID, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin {
		return nil, ErrNotShiftOwner
	}
	if !status.Valid() {
		return nil, apperr.New(apperr.KindValidation, "unknown shift status")
	}

	if err := s.repo.Shift.SetStatus(ctx, shiftID, status); err != nil {
		s.logger.Error("set shift status failed", zap.Error(err))
		return nil, err
	}
	shift.Status = status
	s.publish(ctx, "update", shiftID)
	return toShiftResponse(shift), nil
}

func (s *shiftService) ListOpen(ctx context.Context, area string) ([]dto.ShiftResponse, error) {
	if area != "" && !model.Area(area).Valid() {
		return nil, ErrInvalidArea
	}
	shifts, err := s.repo.Shift.ListOpen(ctx, model.Area(area))
	if err != nil {
		s.logger.Error("list open shifts failed", zap.Error(err))
		return nil, err
	}
	return mapShifts(shifts), nil
}

func (s *shiftService) ListMine(ctx context.Context, posterID string) ([]dto.ShiftResponse, error) {
	shifts, err := s.repo.Shift.ListByPoster(ctx, posterID)
	if err != nil {
		s.logger.Error("list my shifts failed", zap.Error(err))
		return nil, err
	}
	return mapShifts(shifts), nil
}

func (s *shiftService) ListAll(ctx context.Context) ([]dto.ShiftResponse, error) {
	shifts, err := s.repo.Shift.ListAll(ctx)
	if err != nil {
		s.logger.Error("list all shifts failed", zap.Error(err))
		return nil, err
	}
	return mapShifts(shifts), nil
}

func (s *shiftService) Get(ctx context.Context, shiftID string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	return toShiftResponse(shift), nil
}

func (s *shiftService) loadShiftAndCaller(ctx context.Context, shiftID, callerID string) (*model.Shift, *model.Profile, error) {
	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrShiftNotFound
		}
		s.logger.Error("load shift failed", zap.Error(err))
		return nil, nil, err
	}
	caller, err := s.repo.Profile.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProfileNotFound
		}
		s.logger.Error("load caller failed", zap.Error(err))
		return nil, nil, err
	}
	return shift, caller, nil
}

func mapShifts(shifts []model.Shift) []dto.ShiftResponse {
	out := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		out = append(out, *toShiftResponse(&shifts[i]))
	}
	return out
}
