package models

import (
	"context"
	"errors"
)

// Engine error taxonomy. Services return these (wrapped with context via %w);
// controllers translate them into HTTP status codes.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrAlreadyFriends     = errors.New("users are already friends")
	ErrRequestAlreadySent = errors.New("friend request already sent")
	ErrBlocked            = errors.New("relationship is blocked")
	ErrRateLimitExceeded  = errors.New("daily swipe limit reached")
	ErrNotFound           = errors.New("not found")
	ErrTransientNetwork   = errors.New("transient network failure")
	ErrServer             = errors.New("server error")
)

// IsTransient reports whether err is a recoverable network condition,
// including user-initiated cancellation. Callers swallow these and proceed
// with whatever state they already had.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientNetwork) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
