package tutor

import "errors"

// ErrSessionCompleted rejects evaluated turns on a completed session.
var ErrSessionCompleted = errors.New("lesson already completed")

// ErrSessionNotFound marks a turn against an unknown session.
var ErrSessionNotFound = errors.New("session not found")
