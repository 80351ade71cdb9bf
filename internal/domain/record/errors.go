package record

import "errors"

var (
	// ErrBusy means the collection lock could not be taken in time. Retryable.
	ErrBusy              = errors.New("record store busy")
	ErrUnwritable        = errors.New("record store unwritable")
	ErrCorrupt           = errors.New("record collection corrupt")
	ErrInvalidCollection = errors.New("invalid collection name")
	ErrSequenceExhausted = errors.New("id sequence exhausted")
	ErrDuplicateID       = errors.New("record id already exists")
)
