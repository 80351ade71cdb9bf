package order

import (
	"context"

	domorder "example.com/storefront/internal/domain/order"
)

type Service struct {
	repo domorder.Repository
}

func NewService(repo domorder.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*domorder.Order, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domorder.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus moves an order along its lifecycle; payment-confirmation
// collaborators and the admin API both go through here.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domorder.Status) (*domorder.Order, error) {
	if !status.IsValid() {
		return nil, domorder.ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
