package session

import "errors"

var (
	ErrNoActiveSession = errors.New("no active shopping session")
	ErrUpdateInFlight  = errors.New("item update already in flight")
)
