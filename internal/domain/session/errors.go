package session

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session is in use")
)
