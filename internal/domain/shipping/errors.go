package shipping

import "errors"

var (
	ErrUnknownMethod     = errors.New("unknown shipping method")
	ErrMethodUnavailable = errors.New("shipping method is not available")
	ErrNoMethodEnabled   = errors.New("no shipping method is enabled")
)
