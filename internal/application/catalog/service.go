package catalog

import (
	"context"
	"fmt"

	domain "agromarket/internal/domain/catalog"
	"agromarket/internal/domain/repository"
	"agromarket/pkg/logger"
)

// Service maintains the offline catalogue cache. The cache is replaced
// wholesale after every successful online fetch; individual entries are
// never mutated.
type Service struct {
	repo repository.ProductRepository
	log  logger.Logger
}

func NewService(repo repository.ProductRepository, log logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Replace swaps the cached catalogue for a fresh snapshot, atomically.
func (s *Service) Replace(ctx context.Context, products []domain.Product) error {
	if err := s.repo.ReplaceAll(ctx, products); err != nil {
		return fmt.Errorf("replace catalogue cache: %w", err)
	}
	s.log.Info("catalogue cache replaced", logger.Int("products", len(products)))
	return nil
}

// List serves the offline catalogue view, optionally scoped to a region.
func (s *Service) List(ctx context.Context, region string) ([]domain.Product, error) {
	products, err := s.repo.List(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("list cached catalogue: %w", err)
	}
	return products, nil
}
