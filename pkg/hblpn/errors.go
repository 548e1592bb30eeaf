package hblpn

import "errors"

var (
	// ErrInvalidParameter is wrapped by every parameter validation failure
	// (dimension, error rate, sample count, candidate length).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotFound reports that a search exhausted its candidates without acceptance.
	// Search strategies never return it directly; see SearchResult.Err.
	ErrNotFound = errors.New("no candidate accepted")
)
