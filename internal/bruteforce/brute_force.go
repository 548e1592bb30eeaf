// Package bruteforce enumerates an index space [0, total) and reports the first
// index accepted by a caller-supplied test. It knows nothing about what the
// indices encode.
package bruteforce

import (
	"context"
)

// TestFunc evaluates the candidate with the given index.
type TestFunc func(ctx context.Context, index uint64) (bool, error)

// Result contains the outcome of a search.
type Result struct {
	Index   uint64 // Accepted index, valid when Found
	Found   bool
	Visited uint64 // Number of indices tested
}

// Search tests indices 0, 1, ..., total-1 in order and stops at the first
// acceptance. The visiting order is exactly ascending.
func Search(ctx context.Context, total uint64, test TestFunc) (*Result, error) {
	res := &Result{}
	for i := uint64(0); i < total; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		ok, err := test(ctx, i)
		res.Visited++
		if err != nil {
			return res, err
		}
		if ok {
			res.Index = i
			res.Found = true
			return res, nil
		}
	}
	return res, nil
}
