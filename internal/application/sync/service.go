package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"agromarket/internal/domain/outbox"
	"agromarket/internal/domain/repository"
	"agromarket/internal/metrics"
	"agromarket/pkg/logger"
)

// ErrDrainInProgress is returned when a drain is invoked while another
// one is still running. The caller can simply try again later; the
// running drain will pick up everything that was pending when it started.
var ErrDrainInProgress = errors.New("sync drain already in progress")

// Submitter delivers one queued order to the submission endpoint.
type Submitter interface {
	Submit(ctx context.Context, order *outbox.QueuedOrder) error
}

// DrainResult summarizes one drain pass. Partial failure is the expected
// steady state on an unreliable network, so it is reported here rather
// than as an error.
type DrainResult struct {
	SyncedCount int `json:"synced_count"`
	ErrorCount  int `json:"error_count"`
}

// Service drains the offline outbox: it snapshots the unsynced records,
// submits them to the server one at a time in insertion order, and flips
// the synced flag on each confirmed acceptance. Only one drain runs at a
// time; when to invoke a drain (reconnect event, timer, app foreground)
// is entirely the caller's business.
type Service struct {
	repo      repository.OutboxRepository
	submitter Submitter
	log       logger.Logger
	draining  atomic.Bool
}

func NewService(repo repository.OutboxRepository, submitter Submitter, log logger.Logger) *Service {
	return &Service{repo: repo, submitter: submitter, log: log}
}

// Drain runs one full pass over the current outbox snapshot. Records
// enqueued after the snapshot is taken wait for the next invocation.
//
// Per-record submission failures never abort the pass: the record stays
// unsynced and the loop moves on, so one oversized payload cannot block
// every other pending order. Only a failure to read the snapshot itself
// aborts and propagates.
func (s *Service) Drain(ctx context.Context) (DrainResult, error) {
	if !s.draining.CompareAndSwap(false, true) {
		metrics.RecordDrain("busy")
		return DrainResult{}, ErrDrainInProgress
	}
	defer s.draining.Store(false)

	drainLog := s.log.WithFields(logger.String("drain_id", uuid.NewString()))

	snapshot, err := s.repo.ListUnsynced(ctx)
	if err != nil {
		metrics.RecordDrain("error")
		return DrainResult{}, fmt.Errorf("read outbox snapshot: %w", err)
	}

	if len(snapshot) == 0 {
		metrics.RecordDrain("completed")
		drainLog.Debug("outbox empty, nothing to sync")
		return DrainResult{}, nil
	}

	drainLog.Info("sync drain started", logger.Int("pending", len(snapshot)))

	// Sequential on purpose: the target environment is a constrained
	// mobile uplink, and each submission may carry a multi-hundred-KB
	// voice note. One upload at a time beats competing timeouts.
	var result DrainResult
	for i := range snapshot {
		order := &snapshot[i]

		if err := s.submitter.Submit(ctx, order); err != nil {
			result.ErrorCount++
			metrics.RecordSubmission(false)
			drainLog.Warn("order submission failed",
				logger.Int64("local_id", order.LocalID),
				logger.Error(err),
			)
			continue
		}

		if err := s.repo.MarkSynced(ctx, order.LocalID); err != nil {
			// The server accepted the order but the local flag write
			// failed, so the record stays queued and the next drain
			// will resubmit it. Known duplicate-submission gap: the
			// endpoint contract offers no idempotency key to dedupe on.
			result.ErrorCount++
			metrics.RecordSubmission(false)
			drainLog.Warn("order accepted but flag update failed, will resubmit",
				logger.Int64("local_id", order.LocalID),
				logger.Error(err),
			)
			continue
		}

		result.SyncedCount++
		metrics.RecordSubmission(true)
		drainLog.Info("order synced", logger.Int64("local_id", order.LocalID))
	}

	metrics.RecordDrain("completed")
	drainLog.Info("sync drain finished",
		logger.Int("synced", result.SyncedCount),
		logger.Int("failed", result.ErrorCount),
	)
	return result, nil
}

// InProgress reports whether a drain is currently running.
func (s *Service) InProgress() bool {
	return s.draining.Load()
}

// PendingCount returns the number of unsynced orders, for the status
// surface the UI polls.
func (s *Service) PendingCount(ctx context.Context) (int64, error) {
	count, err := s.repo.CountUnsynced(ctx)
	if err != nil {
		return 0, fmt.Errorf("count pending orders: %w", err)
	}
	metrics.SetPendingOrders(count)
	return count, nil
}
