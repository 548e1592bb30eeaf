package hblpn

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordingReporter collects every callback.
type recordingReporter struct {
	mu        sync.Mutex
	evaluated []string
	passed    []bool
	finished  *SearchResult
	secret    BitVector
}

func (r *recordingReporter) CandidateEvaluated(c BitVector, passed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluated = append(r.evaluated, c.String())
	r.passed = append(r.passed, passed)
}

func (r *recordingReporter) Finished(res *SearchResult, secret BitVector) {
	r.finished = res
	r.secret = secret
}

func rejectAll(*Oracle, BitVector) (bool, error) { return false, nil }

func TestExhaustiveSearch_ExhaustionVisitsAllInOrder(t *testing.T) {
	o, err := NewOracle(MustBitVector(1, 0, 1), 0.125, NewSeededSource(1))
	require.NoError(t, err)

	rep := &recordingReporter{}
	s := NewExhaustiveSearch().
		WithTester(CandidateTesterFunc(rejectAll)).
		WithReporter(rep)

	res, err := s.Search(context.Background(), o)
	require.NoError(t, err)

	assert.False(t, res.Found)
	assert.Nil(t, res.Candidate)
	assert.Equal(t, uint64(8), res.Visited)
	assert.Equal(t, []string{
		"[0 0 0]", "[0 0 1]", "[0 1 0]", "[0 1 1]",
		"[1 0 0]", "[1 0 1]", "[1 1 0]", "[1 1 1]",
	}, rep.evaluated)
	require.NotNil(t, rep.finished)
	assert.Equal(t, BitVector{1, 0, 1}, rep.secret)
	assert.True(t, errors.Is(res.Err(), ErrNotFound))
}

func TestExhaustiveSearch_RecoversSecretReproducibly(t *testing.T) {
	secret := MustBitVector(1, 0, 1, 1)

	run := func() *SearchResult {
		o, err := NewOracle(secret, 0.125, NewSeededSource(7))
		require.NoError(t, err)
		res, err := NewExhaustiveSearch().WithLogger(zaptest.NewLogger(t)).Search(context.Background(), o)
		require.NoError(t, err)
		return res
	}

	first := run()
	require.True(t, first.Found)
	assert.Equal(t, secret, first.Candidate)
	assert.Equal(t, secret.Index()+1, first.Visited)
	assert.NoError(t, first.Err())

	second := run()
	assert.Equal(t, first, second)
}

func TestExhaustiveSearch_StopsAtFirstAcceptance(t *testing.T) {
	o, err := NewOracle(MustBitVector(0, 0, 0, 0), 0.1, NewSeededSource(1))
	require.NoError(t, err)

	var tested []uint64
	tester := CandidateTesterFunc(func(_ *Oracle, c BitVector) (bool, error) {
		tested = append(tested, c.Index())
		return c.Index() == 5 || c.Index() == 9, nil
	})

	res, err := NewExhaustiveSearch().WithTester(tester).Search(context.Background(), o)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, CandidateAt(5, 4), res.Candidate)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4, 5}, tested)
}

func TestExhaustiveSearch_Parallel(t *testing.T) {
	o, err := NewOracle(MustBitVector(1, 1, 0, 0, 1, 0), 0.1, NewSeededSource(1))
	require.NoError(t, err)

	tester := CandidateTesterFunc(func(_ *Oracle, c BitVector) (bool, error) {
		return c.Index() == 37, nil
	})
	rep := &recordingReporter{}
	s := NewExhaustiveSearch().
		WithConfig(SearchConfig{NumWorkers: 4, MaxDimension: 10}).
		WithTester(tester).
		WithReporter(rep)

	res, err := s.Search(context.Background(), o)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, uint64(37), res.Candidate.Index())
	assert.GreaterOrEqual(t, res.Visited, uint64(1))
	assert.Len(t, rep.evaluated, int(res.Visited))
}

func TestExhaustiveSearch_ParallelRecoversSecret(t *testing.T) {
	secret := MustBitVector(0, 1, 1, 0, 1)
	o, err := NewOracle(secret, 0.125, NewSeededSource(21))
	require.NoError(t, err)

	s := NewExhaustiveSearch().WithConfig(SearchConfig{NumWorkers: 0, MaxDimension: 24})
	res, err := s.Search(context.Background(), o)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, secret, res.Candidate)
}

func TestExhaustiveSearch_PropagatesTesterError(t *testing.T) {
	o, err := NewOracle(MustBitVector(1, 0), 0.1, NewSeededSource(1))
	require.NoError(t, err)

	boom := errors.New("boom")
	s := NewExhaustiveSearch().WithTester(CandidateTesterFunc(func(*Oracle, BitVector) (bool, error) {
		return false, boom
	}))
	_, err = s.Search(context.Background(), o)
	assert.ErrorIs(t, err, boom)
}

func TestExhaustiveSearch_InvalidConfig(t *testing.T) {
	o, err := NewOracle(MustBitVector(1, 0, 1, 0), 0.1, NewSeededSource(1))
	require.NoError(t, err)

	_, err = NewExhaustiveSearch().
		WithConfig(SearchConfig{NumWorkers: 1, MaxDimension: 3}).
		Search(context.Background(), o)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	_, err = NewExhaustiveSearch().
		WithConfig(SearchConfig{NumWorkers: -1, MaxDimension: 100}).
		Search(context.Background(), o)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestExhaustiveSearch_ContextCancelled(t *testing.T) {
	o, err := NewOracle(MustBitVector(1, 0, 1), 0.1, NewSeededSource(1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewExhaustiveSearch().Search(ctx, o)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExhaustiveSearch_Name(t *testing.T) {
	assert.Equal(t, "ExhaustiveSearch", NewExhaustiveSearch().Name())
}

func TestDefaultSearchConfig(t *testing.T) {
	c := DefaultSearchConfig()
	assert.Equal(t, 1, c.NumWorkers)
	assert.Equal(t, 24, c.MaxDimension)
	assert.NoError(t, c.Validate())
}
