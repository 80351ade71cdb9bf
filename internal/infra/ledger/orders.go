package ledger

import (
	"context"
	"fmt"
	"time"

	domorder "example.com/storefront/internal/domain/order"
	"example.com/storefront/internal/domain/record"
)

// OrderRepository stores orders as records of the orders collection.
type OrderRepository struct {
	store record.Store
	seq   record.Sequence
	now   func() time.Time
}

func NewOrderRepository(store record.Store, prefix string) *OrderRepository {
	return &OrderRepository{
		store: store,
		seq:   record.YearlySequence{Prefix: prefix},
		now:   time.Now,
	}
}

func (r *OrderRepository) Create(ctx context.Context, o *domorder.Order) (*domorder.Order, error) {
	rec, err := record.FromValue(o)
	if err != nil {
		return nil, err
	}
	delete(rec, record.FieldID)

	id, err := r.store.AppendSequenced(ctx, record.CollectionOrders, rec, r.seq)
	if err != nil {
		return nil, err
	}
	created := *o
	created.ID = id
	return &created, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]*domorder.Order, error) {
	recs, err := r.store.ReadAll(ctx, record.CollectionOrders)
	if err != nil {
		return nil, err
	}
	out := make([]*domorder.Order, 0, len(recs))
	for _, rec := range recs {
		o, err := decodeOrder(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domorder.Order, error) {
	recs, err := r.store.ReadAll(ctx, record.CollectionOrders)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if rec.ID() == id {
			return decodeOrder(rec)
		}
	}
	return nil, domorder.ErrOrderNotFound
}

// UpdateStatus checks the transition against the stored status inside the collection lock.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domorder.Status) (*domorder.Order, error) {
	var updated *domorder.Order
	found, err := r.store.Update(ctx, record.CollectionOrders, record.ByID(id), func(rec record.Record) error {
		current, err := decodeOrder(rec)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", domorder.ErrInvalidTransition, current.Status, status)
		}
		now := r.now().UTC()
		rec["status"] = string(status)
		rec["updated_at"] = now.Format(time.RFC3339Nano)
		current.Status = status
		current.UpdatedAt = now
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domorder.ErrOrderNotFound
	}
	return updated, nil
}

func decodeOrder(rec record.Record) (*domorder.Order, error) {
	var o domorder.Order
	if err := rec.Decode(&o); err != nil {
		return nil, fmt.Errorf("%w: order %s: %v", record.ErrCorrupt, rec.ID(), err)
	}
	return &o, nil
}
