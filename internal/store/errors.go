package store

import "errors"

var (
	// ErrNotFound reports a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateSlot reports a violation of the active-slot uniqueness
	// constraint on (worker_id, date, start_time).
	ErrDuplicateSlot = errors.New("duplicate active reservation slot")
	// ErrStaleVersion reports an optimistic-concurrency failure: the row
	// changed between read and write.
	ErrStaleVersion = errors.New("reservation modified concurrently")
)
