package session

import "context"

// Store hands out sessions one request at a time: Open blocks while another
// request holds the same session, until Release.
type Store interface {
	Open(ctx context.Context, id string) (*Context, error)
	Save(ctx context.Context, s *Context) error
	Release(id string)
}
