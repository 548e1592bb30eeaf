package hblpn

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

// SearchStrategy recovers the secret of an oracle.
// Implement this interface to plug in custom attacks.
type SearchStrategy interface {
	// Search returns a result whose Found field tells whether a candidate was
	// accepted. Exhaustion is not an error. Errors are reserved for invalid
	// parameters and context cancellation.
	Search(ctx context.Context, oracle *Oracle) (*SearchResult, error)

	// Name returns a human-readable name for this strategy.
	Name() string
}

// SearchResult is the outcome of a search: either Found with a Candidate, or not found.
type SearchResult struct {
	Candidate BitVector // Accepted candidate, nil when not found
	Found     bool
	Visited   uint64 // Candidates evaluated (or classifier trials run)
	Strategy  string
}

// Err returns ErrNotFound when no candidate was accepted, nil otherwise.
func (r *SearchResult) Err() error {
	if r == nil || !r.Found {
		return ErrNotFound
	}
	return nil
}

// SearchConfig configures ExhaustiveSearch.
type SearchConfig struct {
	// NumWorkers controls parallelization: 1 = sequential and reproducible,
	// 0 = one worker per CPU.
	NumWorkers int

	// MaxDimension refuses oracles whose candidate space is too large to walk.
	MaxDimension int
}

// DefaultSearchConfig returns a sequential configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		NumWorkers:   1,
		MaxDimension: 24,
	}
}

// Validate reports every invalid field.
func (c SearchConfig) Validate() error {
	var err error
	if c.NumWorkers < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: workers %d must be >= 0", ErrInvalidParameter, c.NumWorkers))
	}
	if c.MaxDimension < 1 || c.MaxDimension > MaxEnumerableDimension {
		err = multierr.Append(err, fmt.Errorf("%w: max dimension %d outside [1, %d]",
			ErrInvalidParameter, c.MaxDimension, MaxEnumerableDimension))
	}
	return err
}

// ClassifierConfig configures ClassifierAttack.
type ClassifierConfig struct {
	// Samples drawn per trial; also the sample count of the acceptance threshold.
	Samples int

	// Tries bounds the number of independent trials.
	Tries int

	// Tolerance is added to the error rate in the acceptance threshold.
	Tolerance float64

	// TestFraction of each batch is held out to measure accuracy.
	TestFraction float64

	// Seed drives the train/test shuffle.
	Seed uint64
}

// DefaultClassifierConfig returns a configuration with a 2% tolerance and a 20% hold-out.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Samples:      10000,
		Tries:        5,
		Tolerance:    0.02,
		TestFraction: 0.20,
		Seed:         1,
	}
}

// Validate reports every invalid field.
func (c ClassifierConfig) Validate() error {
	var err error
	if c.Samples <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: samples %d must be positive", ErrInvalidParameter, c.Samples))
	}
	if c.Tries <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: tries %d must be positive", ErrInvalidParameter, c.Tries))
	}
	if c.Tolerance < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: tolerance %v must be >= 0", ErrInvalidParameter, c.Tolerance))
	}
	if !(c.TestFraction > 0 && c.TestFraction < 1) {
		err = multierr.Append(err, fmt.Errorf("%w: test fraction %v outside (0, 1)", ErrInvalidParameter, c.TestFraction))
	}
	if err == nil {
		train, test := splitSizes(c.Samples, c.TestFraction)
		if train == 0 || test == 0 {
			err = fmt.Errorf("%w: %d samples leave an empty train or test split", ErrInvalidParameter, c.Samples)
		}
	}
	return err
}
