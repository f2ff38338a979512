package domain

import "errors"

// ErrNotFound is returned when a named resource does not exist.
var ErrNotFound = errors.New("resource not found")

// ErrStreamClosed is reported when a watch stream ends without being cancelled.
var ErrStreamClosed = errors.New("watch stream closed")

// ErrWatchCancelled is returned when an operation targets a cancelled watch.
var ErrWatchCancelled = errors.New("watch cancelled")

// ErrInvalidAction is returned for an unknown interaction action kind.
var ErrInvalidAction = errors.New("invalid action")

// ErrNoFreightSelected is returned when an approval has no freight to approve.
var ErrNoFreightSelected = errors.New("no freight selected")
