package hblpn

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/mahdiidarabi/hb-lpn/internal/dtree"
)

// Classifier is a trainable binary classifier. The attack only fits it on
// oracle rows and asks for predictions; its model is never inspected.
type Classifier interface {
	Fit(features mat.Matrix, labels mat.Vector) error
	Predict(features mat.Matrix) (*mat.VecDense, error)
}

// thresholdSlack lets a product that rounds just below an integer still
// truncate to that integer.
const thresholdSlack = 1e-9

// AcceptanceThreshold is sampleCount·(errorRate + tolerance) truncated to an
// integer.
func AcceptanceThreshold(sampleCount int, tolerance, errorRate float64) float64 {
	return math.Floor(float64(sampleCount)*(errorRate+tolerance) + thresholdSlack)
}

// Accept judges a candidate regardless of how it was produced: it accepts iff
// the weight of A·candidate + b over samples is strictly below
// AcceptanceThreshold(sampleCount, tolerance, errorRate).
func Accept(oracle *Oracle, candidate BitVector, samples *SampleBatch, sampleCount int, tolerance, errorRate float64) (bool, error) {
	ok, _, err := acceptWeight(oracle, candidate, samples, sampleCount, tolerance, errorRate)
	return ok, err
}

// acceptWeight is Accept that also returns the residual weight it measured.
func acceptWeight(oracle *Oracle, candidate BitVector, samples *SampleBatch, sampleCount int, tolerance, errorRate float64) (bool, int, error) {
	var err error
	if sampleCount <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: sample count %d must be positive", ErrInvalidParameter, sampleCount))
	}
	if !(tolerance >= 0) || math.IsInf(tolerance, 0) {
		err = multierr.Append(err, fmt.Errorf("%w: tolerance %v must be finite and >= 0", ErrInvalidParameter, tolerance))
	}
	err = multierr.Append(err, validateErrorRate(errorRate))
	if len(candidate) != oracle.Dimension() {
		err = multierr.Append(err, fmt.Errorf("%w: candidate length %d, oracle dimension %d",
			ErrInvalidParameter, len(candidate), oracle.Dimension()))
	}
	err = multierr.Append(err, candidate.Validate())
	if samples == nil {
		err = multierr.Append(err, fmt.Errorf("%w: nil sample batch", ErrInvalidParameter))
	} else if samples.Dimension() != oracle.Dimension() {
		err = multierr.Append(err, fmt.Errorf("%w: batch dimension %d, oracle dimension %d",
			ErrInvalidParameter, samples.Dimension(), oracle.Dimension()))
	}
	if err != nil {
		return false, 0, err
	}

	w, err := samples.ResidualWeight(candidate)
	if err != nil {
		return false, 0, err
	}
	return float64(w) < AcceptanceThreshold(sampleCount, tolerance, errorRate), w, nil
}

// ClassifierTrial records one fit/predict/accept round of ClassifierAttack.
type ClassifierTrial struct {
	Trial     int
	Candidate BitVector
	Confusion ConfusionMatrix
	Report    ClassificationReport
	Weight    int
	Threshold float64
	Accepted  bool
}

// ClassifierAttack trains a classifier to predict oracle outputs from oracle
// inputs, then reads the secret off its predictions on the standard basis:
// for a linear oracle, the label of e_i is secret_i.
type ClassifierAttack struct {
	Config     ClassifierConfig
	Classifier Classifier
	Reporter   Reporter
	Logger     *zap.Logger
}

// NewClassifierAttack creates an attack using an unbounded decision tree.
func NewClassifierAttack() *ClassifierAttack {
	return &ClassifierAttack{
		Config:     DefaultClassifierConfig(),
		Classifier: dtree.New(),
		Reporter:   NopReporter{},
		Logger:     zap.NewNop(),
	}
}

// WithConfig sets the attack configuration.
func (a *ClassifierAttack) WithConfig(config ClassifierConfig) *ClassifierAttack {
	a.Config = config
	return a
}

// WithClassifier substitutes the learning algorithm.
func (a *ClassifierAttack) WithClassifier(classifier Classifier) *ClassifierAttack {
	a.Classifier = classifier
	return a
}

// WithReporter sets the progress observer. If it implements
// ClassifierReporter it also receives each trial.
func (a *ClassifierAttack) WithReporter(reporter Reporter) *ClassifierAttack {
	a.Reporter = reporter
	return a
}

// WithLogger sets the logger.
func (a *ClassifierAttack) WithLogger(logger *zap.Logger) *ClassifierAttack {
	a.Logger = logger
	return a
}

// Name returns the name of this strategy.
func (a *ClassifierAttack) Name() string {
	return "ClassifierAttack"
}

// Search implements the SearchStrategy interface. It runs at most
// Config.Tries trials and stops at the first accepted candidate.
func (a *ClassifierAttack) Search(ctx context.Context, oracle *Oracle) (*SearchResult, error) {
	if err := a.Config.Validate(); err != nil {
		return nil, err
	}
	if a.Classifier == nil {
		return nil, fmt.Errorf("%w: nil classifier", ErrInvalidParameter)
	}
	reporter := a.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dim := oracle.Dimension()
	basis := StandardBasis(dim)
	shuffle := rand.New(NewSeededSource(a.Config.Seed))
	result := &SearchResult{Strategy: a.Name()}

	for trial := 1; trial <= a.Config.Tries; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := oracle.Sample(a.Config.Samples)
		if err != nil {
			return nil, err
		}
		train, test, err := SplitBatch(batch, a.Config.TestFraction, shuffle)
		if err != nil {
			return nil, err
		}

		if err := a.Classifier.Fit(train.A, train.B); err != nil {
			return nil, fmt.Errorf("trial %d: fit: %w", trial, err)
		}
		predicted, err := a.Classifier.Predict(test.A)
		if err != nil {
			return nil, fmt.Errorf("trial %d: predict held-out rows: %w", trial, err)
		}
		cm, err := NewConfusionMatrix(test.B, predicted)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}
		probe, err := a.Classifier.Predict(basis)
		if err != nil {
			return nil, fmt.Errorf("trial %d: predict standard basis: %w", trial, err)
		}
		if probe.Len() != dim {
			return nil, fmt.Errorf("trial %d: classifier returned %d predictions for %d basis vectors", trial, probe.Len(), dim)
		}
		candidate := BitVectorFromVec(probe)

		accepted, weight, err := acceptWeight(oracle, candidate, batch, a.Config.Samples, a.Config.Tolerance, oracle.ErrorRate())
		if err != nil {
			return nil, err
		}

		record := &ClassifierTrial{
			Trial:     trial,
			Candidate: candidate,
			Confusion: cm,
			Report:    cm.Report(),
			Weight:    weight,
			Threshold: AcceptanceThreshold(a.Config.Samples, a.Config.Tolerance, oracle.ErrorRate()),
			Accepted:  accepted,
		}
		if cr, ok := reporter.(ClassifierReporter); ok {
			cr.TrialCompleted(record)
		}
		reporter.CandidateEvaluated(candidate, accepted)
		logger.Info("classifier trial",
			zap.Int("trial", trial),
			zap.Float64("accuracy", cm.Accuracy()),
			zap.Int("weight", weight),
			zap.Float64("threshold", record.Threshold),
			zap.Bool("accepted", accepted))

		result.Visited++
		if accepted {
			result.Found = true
			result.Candidate = candidate
			break
		}
	}

	if !result.Found {
		logger.Info("no classifier candidate accepted", zap.Int("tries", a.Config.Tries))
	}
	reporter.Finished(result, oracle.Secret())
	return result, nil
}

// SplitBatch shuffles the rows of batch with rng and holds out
// ceil(testFraction·rows) of them as the test split.
func SplitBatch(batch *SampleBatch, testFraction float64, rng *rand.Rand) (train, test *SampleBatch, err error) {
	n := batch.Rows()
	nTrain, nTest := splitSizes(n, testFraction)
	if nTrain == 0 || nTest == 0 {
		return nil, nil, fmt.Errorf("%w: cannot split %d rows with test fraction %v", ErrInvalidParameter, n, testFraction)
	}
	perm := rng.Perm(n)
	return batch.Subset(perm[nTest:]), batch.Subset(perm[:nTest]), nil
}

func splitSizes(n int, testFraction float64) (train, test int) {
	if !(testFraction > 0 && testFraction < 1) {
		return n, 0
	}
	test = int(math.Ceil(float64(n) * testFraction))
	if test > n {
		test = n
	}
	return n - test, test
}
