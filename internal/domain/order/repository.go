package order

import "context"

type Repository interface {
	Create(ctx context.Context, o *Order) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
}
