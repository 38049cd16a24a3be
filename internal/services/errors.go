package services

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNotFound is returned when the referenced thread, user or
	// notification does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when an actor tries to edit or delete
	// content they do not own.
	ErrUnauthorized = errors.New("actor does not own this content")

	// ErrModerationUnavailable is returned when the classifier response
	// carries no usable category scores. The gate fails closed: creation is
	// refused.
	ErrModerationUnavailable = errors.New("moderation classifier unavailable")

	// ErrAlreadyUpvoted is returned on a repeated upvote by the same
	// identity. The upvotes list never gets a duplicate entry.
	ErrAlreadyUpvoted = errors.New("thread already upvoted by this user")

	// ErrSelfAction is returned when an operation targets its own actor,
	// e.g. following yourself.
	ErrSelfAction = errors.New("operation cannot target the acting user")
)

// ValidationRejectedError is the typed moderation rejection. It is a normal
// result shown to the user, not an infrastructure failure; it carries the
// offending category scores.
type ValidationRejectedError struct {
	Scores map[string]float64
}

func (e *ValidationRejectedError) Error() string {
	cats := make([]string, 0, len(e.Scores))
	for c := range e.Scores {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return fmt.Sprintf("content rejected by moderation: %v", cats)
}
