package outbox

import (
	"context"
	"fmt"
	"time"

	domain "agromarket/internal/domain/outbox"
	"agromarket/internal/domain/repository"
	"agromarket/internal/metrics"
	"agromarket/pkg/logger"
)

// Service is the outbox writer: it turns checkout-collected data into a
// durable unsynced record. Failing to queue an order is a visible,
// immediate failure the UI must report, so storage errors propagate
// unchanged and nothing is retried here.
type Service struct {
	repo repository.OutboxRepository
	log  logger.Logger
}

func NewService(repo repository.OutboxRepository, log logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Enqueue persists one new order with synced=false and a fresh UTC
// timestamp, returning the store-assigned local id.
func (s *Service) Enqueue(ctx context.Context, in domain.NewOrderInput) (int64, error) {
	order, err := domain.NewQueuedOrder(in)
	if err != nil {
		return 0, err
	}

	localID, err := s.repo.Insert(ctx, order)
	if err != nil {
		return 0, fmt.Errorf("queue order: %w", err)
	}

	metrics.RecordEnqueue()

	voiceNoteSize := 0
	if order.VoiceNote != nil {
		voiceNoteSize = len(order.VoiceNote.Data)
	}
	s.log.Info("order queued offline",
		logger.Int64("local_id", localID),
		logger.Int("items", len(order.Items)),
		logger.Float64("total_amount", order.TotalAmount),
		logger.Int("voice_note_bytes", voiceNoteSize),
	)
	return localID, nil
}

// Get returns one queued order by its local id.
func (s *Service) Get(ctx context.Context, localID int64) (*domain.QueuedOrder, error) {
	return s.repo.FindByID(ctx, localID)
}

// PurgeSynced deletes already-delivered records older than the cutoff.
// This is the caller-side cleanup the sync engine itself never performs.
func (s *Service) PurgeSynced(ctx context.Context, before time.Time) (int64, error) {
	purged, err := s.repo.PurgeSynced(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("purge synced orders: %w", err)
	}
	if purged > 0 {
		s.log.Info("purged synced orders", logger.Int64("count", purged))
	}
	return purged, nil
}
