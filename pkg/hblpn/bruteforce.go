package hblpn

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mahdiidarabi/hb-lpn/internal/bruteforce"
)

// ExhaustiveSearch walks all 2^dim candidates in binary counting order
// (000, 001, 010, ...) and returns the first one the tester accepts.
//
// Cost is exponential: 2^dim hypothesis tests, each drawing
// O(dim / (0.5-errorRate)^2) samples. Without parallelism this is practical
// only up to roughly dim 20.
type ExhaustiveSearch struct {
	Config   SearchConfig
	Tester   CandidateTester
	Reporter Reporter
	Logger   *zap.Logger
}

// NewExhaustiveSearch creates a sequential search backed by HypothesisTest.
func NewExhaustiveSearch() *ExhaustiveSearch {
	return &ExhaustiveSearch{
		Config:   DefaultSearchConfig(),
		Tester:   DefaultTester,
		Reporter: NopReporter{},
		Logger:   zap.NewNop(),
	}
}

// WithConfig sets the search configuration.
func (s *ExhaustiveSearch) WithConfig(config SearchConfig) *ExhaustiveSearch {
	s.Config = config
	return s
}

// WithTester replaces the per-candidate decision rule.
func (s *ExhaustiveSearch) WithTester(tester CandidateTester) *ExhaustiveSearch {
	s.Tester = tester
	return s
}

// WithReporter sets the progress observer.
func (s *ExhaustiveSearch) WithReporter(reporter Reporter) *ExhaustiveSearch {
	s.Reporter = reporter
	return s
}

// WithLogger sets the logger.
func (s *ExhaustiveSearch) WithLogger(logger *zap.Logger) *ExhaustiveSearch {
	s.Logger = logger
	return s
}

// Name returns the name of this strategy.
func (s *ExhaustiveSearch) Name() string {
	return "ExhaustiveSearch"
}

// Search implements the SearchStrategy interface.
func (s *ExhaustiveSearch) Search(ctx context.Context, oracle *Oracle) (*SearchResult, error) {
	if err := s.Config.Validate(); err != nil {
		return nil, err
	}
	dim := oracle.Dimension()
	if dim > s.Config.MaxDimension {
		return nil, fmt.Errorf("%w: dimension %d exceeds search limit %d", ErrInvalidParameter, dim, s.Config.MaxDimension)
	}
	// Reject a design that cannot be built before the first candidate.
	if _, err := NewTestDesign(dim, oracle.ErrorRate()); err != nil {
		return nil, err
	}

	tester := s.Tester
	if tester == nil {
		tester = DefaultTester
	}
	reporter := s.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	total := uint64(1) << uint(dim)
	logger.Info("starting exhaustive search",
		zap.Int("dimension", dim),
		zap.Float64("error_rate", oracle.ErrorRate()),
		zap.Uint64("candidates", total),
		zap.Int("workers", s.Config.NumWorkers))

	test := func(_ context.Context, index uint64) (bool, error) {
		candidate := CandidateAt(index, dim)
		ok, err := tester.Test(oracle, candidate)
		if err != nil {
			return false, err
		}
		reporter.CandidateEvaluated(candidate, ok)
		return ok, nil
	}

	var (
		res *bruteforce.Result
		err error
	)
	if s.Config.NumWorkers == 1 {
		res, err = bruteforce.Search(ctx, total, test)
	} else {
		res, err = bruteforce.SearchParallel(ctx, total, s.Config.NumWorkers, test)
	}
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Found:    res.Found,
		Visited:  res.Visited,
		Strategy: s.Name(),
	}
	if res.Found {
		result.Candidate = CandidateAt(res.Index, dim)
		logger.Info("candidate accepted",
			zap.Uint64("index", res.Index),
			zap.Stringer("candidate", result.Candidate),
			zap.Uint64("visited", res.Visited))
	} else {
		logger.Info("candidate space exhausted", zap.Uint64("visited", res.Visited))
	}

	reporter.Finished(result, oracle.Secret())
	return result, nil
}
