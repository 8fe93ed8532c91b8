package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"shiftdesk/config"
	"shiftdesk/internal/dto"
	"shiftdesk/internal/repository"
)

// CleanupService purges resolved swap requests past the retention window.
//
// Sweeping only ever matches Accepted/Declined rows, so it is idempotent and
// safe to run concurrently with itself and with the reconciliation engine;
// Pending rows are untouchable regardless of age. Shifts are never swept.
type CleanupService interface {
	// Sweep deletes every resolved request older than the retention window
	// relative to now.
	Sweep(ctx context.Context, now time.Time) (*dto.SweepResult, error)
	// Stats reports what Sweep would delete, without deleting.
	Stats(ctx context.Context, now time.Time) (*dto.SweepStats, error)
	// Run blocks, sweeping on the configured cadence until ctx is
	// cancelled. Call it in its own goroutine.
	Run(ctx context.Context)
}

type cleanupService struct {
	repo          *repository.Repository
	logger        *zap.Logger
	window        time.Duration
	sweepInterval time.Duration
	sweepOnStart  bool
}

// NewCleanupService creates a CleanupService.
func NewCleanupService(cfg *config.RetentionConfig, repo *repository.Repository, logger *zap.Logger) CleanupService {
	return &cleanupService{
		repo:          repo,
		logger:        logger,
		window:        cfg.Window,
		sweepInterval: cfg.SweepInterval,
		sweepOnStart:  cfg.SweepOnStart,
	}
}

func (s *cleanupService) Sweep(ctx context.Context, now time.Time) (*dto.SweepResult, error) {
	cutoff := now.Add(-s.window)
	deleted, err := s.repo.SwapRequest.DeleteResolvedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("sweep failed", zap.Error(err))
		return nil, err
	}
	if deleted > 0 {
		s.logger.Info("swept resolved swap requests",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return &dto.SweepResult{DeletedCount: deleted, Cutoff: cutoff}, nil
}

func (s *cleanupService) Stats(ctx context.Context, now time.Time) (*dto.SweepStats, error) {
	cutoff := now.Add(-s.window)
	eligible, err := s.repo.SwapRequest.CountResolvedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("sweep stats failed", zap.Error(err))
		return nil, err
	}
	return &dto.SweepStats{EligibleCount: eligible, Cutoff: cutoff}, nil
}

func (s *cleanupService) Run(ctx context.Context) {
	if s.sweepOnStart {
		if _, err := s.Sweep(ctx, time.Now()); err != nil {
			s.logger.Warn("startup sweep failed", zap.Error(err))
		}
	}

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, time.Now()); err != nil {
				s.logger.Warn("periodic sweep failed", zap.Error(err))
			}
		}
	}
}
