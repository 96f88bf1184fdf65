package repository

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrImmutableHistory indicates an attempt to change a progress
	// record whose date is already in the past relative to the write's
	// as-of date.
	ErrImmutableHistory = errors.New("past progress records are immutable")

	// ErrPlanAlreadySet indicates an attempt to re-write the frozen
	// initial plan baseline.
	ErrPlanAlreadySet = errors.New("initial plan baseline already set")
)
