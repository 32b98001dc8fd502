package cart

import (
	"context"
	"fmt"

	domain "agromarket/internal/domain/cart"
	"agromarket/internal/domain/repository"
	"agromarket/pkg/logger"
)

// Service persists the shopping cart between app sessions. The cart's
// lifecycle is independent of orders: checkout clears it wholesale once
// an order has been created from it.
type Service struct {
	repo repository.CartRepository
	log  logger.Logger
}

func NewService(repo repository.CartRepository, log logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Add(ctx context.Context, productID string, quantity int) (int64, error) {
	line, err := domain.NewLine(productID, quantity)
	if err != nil {
		return 0, err
	}
	localID, err := s.repo.Add(ctx, line)
	if err != nil {
		return 0, fmt.Errorf("add cart line: %w", err)
	}
	return localID, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Line, error) {
	lines, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return lines, nil
}

func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.log.Debug("cart cleared")
	return nil
}
