package repositories

import "errors"

// ErrNotFound is returned when a referenced record does not exist. Both the
// Mongo and Postgres implementations translate their driver's not-found
// result into this sentinel so callers never depend on driver errors.
var ErrNotFound = errors.New("record not found")
