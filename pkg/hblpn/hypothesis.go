package hblpn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// maxSampleSize bounds m so a design near error rate 0.5 fails loudly
// instead of allocating an absurd batch.
const maxSampleSize = 1 << 28

// TestDesign holds the sample size m and acceptance threshold t used by
// HypothesisTest for a given dimension and error rate:
//
//	m = ceil(4·dim / (0.5 - errorRate)^2)
//	t = m·errorRate + sqrt(dim·m)
//
// The constants are heuristic and kept as is.
type TestDesign struct {
	Dimension  int
	ErrorRate  float64
	SampleSize int
	Threshold  float64
}

// NewTestDesign computes the design, failing with ErrInvalidParameter for a
// non-positive dimension or an error rate outside (0, 0.5).
func NewTestDesign(dim int, errorRate float64) (TestDesign, error) {
	if dim <= 0 {
		return TestDesign{}, fmt.Errorf("%w: dimension %d must be positive", ErrInvalidParameter, dim)
	}
	if err := validateErrorRate(errorRate); err != nil {
		return TestDesign{}, err
	}

	gap := 0.5 - errorRate
	m := math.Ceil(4 * float64(dim) / (gap * gap))
	if math.IsInf(m, 0) || m > maxSampleSize {
		return TestDesign{}, fmt.Errorf("%w: sample size for error rate %v diverges", ErrInvalidParameter, errorRate)
	}

	size := int(m)
	return TestDesign{
		Dimension:  dim,
		ErrorRate:  errorRate,
		SampleSize: size,
		Threshold:  float64(size)*errorRate + math.Sqrt(float64(dim*size)),
	}, nil
}

// Accepts reports whether a residual weight passes the test.
func (d TestDesign) Accepts(weight int) bool {
	return float64(weight) <= d.Threshold
}

// FalseRejectRate is the exact probability that the true secret fails:
// P[Binomial(m, errorRate) > t].
func (d TestDesign) FalseRejectRate() float64 {
	b := distuv.Binomial{N: float64(d.SampleSize), P: d.ErrorRate}
	return 1 - b.CDF(math.Floor(d.Threshold))
}

// FalseAcceptRate is the probability that a wrong candidate passes, using the
// limit where its residual bits are fair coins: P[Binomial(m, 1/2) <= t].
func (d TestDesign) FalseAcceptRate() float64 {
	b := distuv.Binomial{N: float64(d.SampleSize), P: 0.5}
	return b.CDF(math.Floor(d.Threshold))
}

// CandidateTester decides whether a candidate is the oracle's secret.
type CandidateTester interface {
	Test(oracle *Oracle, candidate BitVector) (bool, error)
}

// CandidateTesterFunc adapts a function to CandidateTester.
type CandidateTesterFunc func(oracle *Oracle, candidate BitVector) (bool, error)

// Test calls f.
func (f CandidateTesterFunc) Test(oracle *Oracle, candidate BitVector) (bool, error) {
	return f(oracle, candidate)
}

// HypothesisTest draws a fresh batch of the designed size from oracle and
// accepts candidate iff the weight of A·candidate + b is at most the threshold.
//
// The test is probabilistic in both directions and never retries. All
// parameter checks happen before any sampling.
func HypothesisTest(oracle *Oracle, candidate BitVector) (bool, error) {
	if len(candidate) != oracle.Dimension() {
		return false, fmt.Errorf("%w: candidate length %d, oracle dimension %d",
			ErrInvalidParameter, len(candidate), oracle.Dimension())
	}
	if err := candidate.Validate(); err != nil {
		return false, err
	}
	design, err := NewTestDesign(oracle.Dimension(), oracle.ErrorRate())
	if err != nil {
		return false, err
	}

	batch, err := oracle.Sample(design.SampleSize)
	if err != nil {
		return false, err
	}
	w, err := batch.ResidualWeight(candidate)
	if err != nil {
		return false, err
	}
	return design.Accepts(w), nil
}

// DefaultTester is the CandidateTester backed by HypothesisTest.
var DefaultTester CandidateTester = CandidateTesterFunc(HypothesisTest)
