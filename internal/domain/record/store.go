package record

import "context"

// Store is an append-oriented ledger of named collections. Every write to a
// collection runs its whole read-modify-write cycle under an exclusive lock
// scoped to that collection.
type Store interface {
	// Append stores rec and returns its id, generating a UUID when rec has none.
	Append(ctx context.Context, collection string, rec Record) (string, error)
	// AppendSequenced allocates the id from seq inside the collection lock.
	AppendSequenced(ctx context.Context, collection string, rec Record, seq Sequence) (string, error)
	// Update applies mutate to every record matching match and reports whether any matched.
	// A mutate error aborts the update without writing.
	Update(ctx context.Context, collection string, match func(Record) bool, mutate func(Record) error) (bool, error)
	// ReadAll returns the collection in insertion order.
	ReadAll(ctx context.Context, collection string) ([]Record, error)
}

type MatchFunc func(Record) bool

func ByID(id string) MatchFunc {
	return func(r Record) bool { return r.ID() == id }
}
