package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
	"shiftdesk/pkg/apperr"
)

// ── swap reconciliation business errors ──

var (
	ErrRequestNotFound = apperr.New(apperr.KindNotFound, "swap request not found")
	ErrNotSwap         = apperr.New(apperr.KindValidation, "shift is not a swap")
	ErrShiftNotOpen    = apperr.New(apperr.KindValidation, "shift is no longer open")
	ErrNotRecipient    = apperr.New(apperr.KindValidation, "only the shift's poster may resolve this request")
	ErrRequestResolved = apperr.New(apperr.KindConflict, "request was already resolved")
)

// SwapService owns the swap-request state machine and the accept protocol.
//
// Accept is a saga over independent conditional writes, not a transaction:
// the single guarded step is the request's own Pending→Accepted transition,
// and once it commits the acceptance is final. Declining rivals, claiming
// the shift and rendering the paperwork are best-effort follow-ups whose
// failures surface as secondary faults: a clerical error someone can fix,
// unlike a silently reverted human decision.
type SwapService interface {
	// Propose creates a Pending request against an open swap shift with the
	// offered slot snapshotted verbatim. The same proposer may hold several
	// Pending requests against one shift; rivals are reconciled at accept
	// time.
	Propose(ctx context.Context, shiftID, proposerID string, req *dto.ProposeSwapRequest) (*dto.SwapRequestResponse, error)
	// Accept runs the ordered accept protocol for the shift's poster.
	Accept(ctx context.Context, requestID, callerID string) (*dto.AcceptResult, error)
	// Decline resolves a Pending request to Declined.
	Decline(ctx context.Context, requestID, callerID string) (*dto.SwapRequestResponse, error)

	// ListIncoming returns requests targeting shifts posted by userID.
	ListIncoming(ctx context.Context, userID string) ([]dto.SwapRequestResponse, error)
	// ListOutgoing returns requests proposed by userID.
	ListOutgoing(ctx context.Context, userID string) ([]dto.SwapRequestResponse, error)

	ListAll(ctx context.Context) ([]dto.SwapRequestResponse, error)
	AdminDelete(ctx context.Context, requestID string) error
}

type swapService struct {
	repo   *repository.Repository
	docs   DocumentService
	events ChangePublisher
	logger *zap.Logger
}

// NewSwapService creates a SwapService.
func NewSwapService(
	repo *repository.Repository,
	docs DocumentService,
	events ChangePublisher,
	logger *zap.Logger,
) SwapService {
	return &swapService{repo: repo, docs: docs, events: events, logger: logger}
}

func (s *swapService) publish(ctx context.Context, action, id string) {
	if s.events != nil {
		s.events.PublishChange(ctx, tableSwapRequests, action, id)
	}
}

func (s *swapService) Propose(ctx context.Context, shiftID, proposerID string, req *dto.ProposeSwapRequest) (*dto.SwapRequestResponse, error) {
	proposer, err := s.repo.Profile.GetByID(ctx, proposerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("load proposer failed", zap.Error(err))
		return nil, err
	}
	if !proposer.HasSignature() {
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
	if shift.Type != model.TypeSwap {
		return nil, ErrNotSwap
	}
	if shift.Status != model.ShiftOpen {
		return nil, ErrShiftNotOpen
	}
	if shift.PosterID == proposerID {
		return nil, ErrOwnShift
	}

	request := &model.SwapRequest{
		ShiftID:           shiftID,
		ProposerID:        proposerID,
		ProposerShiftDate: req.Date,
		ProposerStartTime: req.StartTime,
		ProposerEndTime:   req.EndTime,
		ProposerArea:      model.Area(req.Area),
		Status:            model.RequestPending,
	}
	if err := s.repo.SwapRequest.Create(ctx, request); err != nil {
		s.logger.Error("create swap request failed", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, "insert", request.SwapRequestID)
	s.logger.Info("swap proposed",
		zap.String("swap_request_id", request.SwapRequestID),
		zap.String("shift_id", shiftID),
		zap.String("proposer_id", proposerID),
	)

	request.Shift = shift
	request.Proposer = proposer
	return toSwapRequestResponse(request), nil
}

func (s *swapService) Accept(ctx context.Context, requestID, callerID string) (*dto.AcceptResult, error) {
	request, caller, err := s.loadRequestAndCaller(ctx, requestID, callerID)
	if err != nil {
		return nil, err
	}
	if request.Shift == nil {
		return nil, ErrShiftNotFound
	}
	if request.Shift.PosterID != callerID && !caller.IsAdmin {
		return nil, ErrNotRecipient
	}

	// Step 1: the decision. Guarded Pending→Accepted; losing this guard
	// means a rival acceptance or a decline got there first, and nothing
	// below may run.
	applied, err := s.repo.SwapRequest.UpdateStatus(ctx, requestID, model.RequestPending, model.RequestAccepted)
	if err != nil {
		s.logger.Error("accept swap request failed", zap.Error(err))
		return nil, err
	}
	if !applied {
		return nil, ErrRequestResolved
	}
	request.Status = model.RequestAccepted
	s.publish(ctx, "update", requestID)
	s.logger.Info("swap accepted",
		zap.String("swap_request_id", requestID),
		zap.String("shift_id", request.ShiftID),
	)

	result := &dto.AcceptResult{Request: *toSwapRequestResponse(request)}

	// Step 2: decline rivals. Best effort: a failure leaves stray Pending
	// rows to clean up, not a broken acceptance.
	rivals, err := s.repo.SwapRequest.DeclineRivals(ctx, request.ShiftID, requestID)
	if err != nil {
		s.addFault(result, "decline_rivals", err)
	} else {
		result.DeclinedRivals = int64(len(rivals))
		for _, rivalID := range rivals {
			s.publish(ctx, "update", rivalID)
		}
	}

	// Step 3: take the shift off the market. No status guard here: whatever
	// the shift row looks like now, the accepted swap says Claimed.
	if err := s.repo.Shift.SetStatus(ctx, request.ShiftID, model.ShiftClaimed); err != nil {
		s.addFault(result, "claim_shift", err)
	} else {
		request.Shift.Status = model.ShiftClaimed
		result.Request.Shift.Status = string(model.ShiftClaimed)
		if s.events != nil {
			s.events.PublishChange(ctx, tableShifts, "update", request.ShiftID)
		}
	}

	// Step 4: paperwork, with both profiles re-fetched fresh so the form
	// carries current names and signatures rather than proposal-time state.
	s.renderSwapDocument(ctx, request, result)

	return result, nil
}

func (s *swapService) renderSwapDocument(ctx context.Context, request *model.SwapRequest, result *dto.AcceptResult) {
	poster, err := s.repo.Profile.GetByID(ctx, request.Shift.PosterID)
	if err != nil {
		s.addFault(result, "render_document", fmt.Errorf("load poster profile: %w", err))
		return
	}
	proposer, err := s.repo.Profile.GetByID(ctx, request.ProposerID)
	if err != nil {
		s.addFault(result, "render_document", fmt.Errorf("load proposer profile: %w", err))
		return
	}

	doc, err := s.docs.RenderSwap(request.Shift, request, poster, proposer)
	if err != nil {
		s.addFault(result, "render_document", err)
		return
	}

	result.Document = doc
	result.DocumentName = fmt.Sprintf("shift-swap-%s-%s.pdf", request.Shift.Date, poster.FullName)
}

func (s *swapService) addFault(result *dto.AcceptResult, step string, err error) {
	fault := &apperr.SecondaryFault{Step: step, Err: err}
	s.logger.Warn("accept saga secondary fault",
		zap.String("swap_request_id", result.Request.SwapRequestID),
		zap.String("step", step),
		zap.Error(err),
	)
	result.SecondaryFaults = append(result.SecondaryFaults, fault.Error())
}

func (s *swapService) Decline(ctx context.Context, requestID, callerID string) (*dto.SwapRequestResponse, error) {
	request, caller, err := s.loadRequestAndCaller(ctx, requestID, callerID)
	if err != nil {
		return nil, err
	}
	if request.Shift != nil && request.Shift.PosterID != callerID && !caller.IsAdmin {
		return nil, ErrNotRecipient
	}

	applied, err := s.repo.SwapRequest.UpdateStatus(ctx, requestID, model.RequestPending, model.RequestDeclined)
	if err != nil {
		s.logger.Error("decline swap request failed", zap.Error(err))
		return nil, err
	}
	if !applied {
		return nil, ErrRequestResolved
	}

	request.Status = model.RequestDeclined
	s.publish(ctx, "update", requestID)
	return toSwapRequestResponse(request), nil
}

func (s *swapService) ListIncoming(ctx context.Context, userID string) ([]dto.SwapRequestResponse, error) {
	requests, err := s.repo.SwapRequest.ListByShiftPoster(ctx, userID)
	if err != nil {
		s.logger.Error("list incoming requests failed", zap.Error(err))
		return nil, err
	}
	return mapRequests(requests), nil
}

func (s *swapService) ListOutgoing(ctx context.Context, userID string) ([]dto.SwapRequestResponse, error) {
	requests, err := s.repo.SwapRequest.ListByProposer(ctx, userID)
	if err != nil {
		s.logger.Error("list outgoing requests failed", zap.Error(err))
		return nil, err
	}
	return mapRequests(requests), nil
}

func (s *swapService) ListAll(ctx context.Context) ([]dto.SwapRequestResponse, error) {
	requests, err := s.repo.SwapRequest.ListAll(ctx)
	if err != nil {
		s.logger.Error("list all requests failed", zap.Error(err))
		return nil, err
	}
	return mapRequests(requests), nil
}

func (s *swapService) AdminDelete(ctx context.Context, requestID string) error {
	if _, err := s.repo.SwapRequest.GetByID(ctx, requestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	if err := s.repo.SwapRequest.Delete(ctx, requestID); err != nil {
		s.logger.Error("delete swap request failed", zap.Error(err))
		return err
	}
	s.publish(ctx, "delete", requestID)
	return nil
}

func (s *swapService) loadRequestAndCaller(ctx context.Context, requestID, callerID string) (*model.SwapRequest, *model.Profile, error) {
	request, err := s.repo.SwapRequest.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRequestNotFound
		}
		s.logger.Error("load swap request failed", zap.Error(err))
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
	return request, caller, nil
}

func mapRequests(requests []model.SwapRequest) []dto.SwapRequestResponse {
	out := make([]dto.SwapRequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, *toSwapRequestResponse(&requests[i]))
	}
	return out
}
