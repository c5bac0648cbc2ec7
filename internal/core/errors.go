package core

import "errors"

var (
	// ErrAlreadyActive means Start was called while a session exists.
	ErrAlreadyActive = errors.New("CAN session already active")
	// ErrNotStarted means Send was called with no active session.
	ErrNotStarted = errors.New("CAN not started")
)
