package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "agromarket/internal/domain/catalog"
	"agromarket/pkg/logger"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ReplaceAll(ctx context.Context, products []domain.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, region string) ([]domain.Product, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...logger.Field) {}
func (nopLogger) Info(string, ...logger.Field) {}
func (nopLogger) Warn(string, ...logger.Field) {}
func (nopLogger) Error(string, ...logger.Field) {}
func (nopLogger) Fatal(string, ...logger.Field) {}
func (n nopLogger) WithFields(...logger.Field) logger.Logger {
	return n
}
func (nopLogger) Sync() error {
	return nil
}

func TestService_Replace(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewService(mockRepo, nopLogger{})

	products := []domain.Product{
		{ProductID: "p1", Region: "centre", Name: "Millet", UpdatedAt: time.Now().UTC()},
	}
	mockRepo.On("ReplaceAll", mock.Anything, products).Return(nil)

	require.NoError(t, service.Replace(context.Background(), products))
	mockRepo.AssertExpectations(t)
}

func TestService_Replace_StorageFailure(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewService(mockRepo, nopLogger{})

	mockRepo.On("ReplaceAll", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	err := service.Replace(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replace catalogue cache")
}

func TestService_List_PassesRegion(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := NewService(mockRepo, nopLogger{})

	expected := []domain.Product{{ProductID: "p1", Region: "centre"}}
	mockRepo.On("List", mock.Anything, "centre").Return(expected, nil)

	products, err := service.List(context.Background(), "centre")
	require.NoError(t, err)
	assert.Equal(t, expected, products)
}
