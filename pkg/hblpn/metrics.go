package hblpn

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ConfusionMatrix counts binary predictions against true labels.
type ConfusionMatrix struct {
	TN, FP, FN, TP int
}

// NewConfusionMatrix compares predicted labels with the truth. Both vectors
// are reduced modulo 2.
func NewConfusionMatrix(truth, predicted mat.Vector) (ConfusionMatrix, error) {
	var cm ConfusionMatrix
	if truth.Len() != predicted.Len() {
		return cm, fmt.Errorf("%w: %d labels, %d predictions", ErrInvalidParameter, truth.Len(), predicted.Len())
	}
	for i := 0; i < truth.Len(); i++ {
		t, p := parity(truth.AtVec(i)), parity(predicted.AtVec(i))
		switch {
		case t == 0 && p == 0:
			cm.TN++
		case t == 0 && p == 1:
			cm.FP++
		case t == 1 && p == 0:
			cm.FN++
		default:
			cm.TP++
		}
	}
	return cm, nil
}

// Matrix returns the counts with rows indexed by true label and columns by
// predicted label.
func (cm ConfusionMatrix) Matrix() [2][2]int {
	return [2][2]int{{cm.TN, cm.FP}, {cm.FN, cm.TP}}
}

// Total is the number of predictions counted.
func (cm ConfusionMatrix) Total() int {
	return cm.TN + cm.FP + cm.FN + cm.TP
}

// Accuracy is the fraction of correct predictions, 0 for an empty matrix.
func (cm ConfusionMatrix) Accuracy() float64 {
	if cm.Total() == 0 {
		return 0
	}
	return float64(cm.TN+cm.TP) / float64(cm.Total())
}

// ClassMetrics are the per-label scores of a ClassificationReport.
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// ClassificationReport summarizes a ConfusionMatrix per label.
type ClassificationReport struct {
	Classes  [2]ClassMetrics
	Accuracy float64
	Support  int
}

// Report derives precision, recall and F1 for labels 0 and 1.
// Undefined ratios are reported as 0.
func (cm ConfusionMatrix) Report() ClassificationReport {
	m := cm.Matrix()
	var r ClassificationReport
	for label := 0; label < 2; label++ {
		tp := m[label][label]
		predicted := m[0][label] + m[1][label]
		actual := m[label][0] + m[label][1]

		c := ClassMetrics{Support: actual}
		if predicted > 0 {
			c.Precision = float64(tp) / float64(predicted)
		}
		if actual > 0 {
			c.Recall = float64(tp) / float64(actual)
		}
		if c.Precision+c.Recall > 0 {
			c.F1 = 2 * c.Precision * c.Recall / (c.Precision + c.Recall)
		}
		r.Classes[label] = c
	}
	r.Accuracy = cm.Accuracy()
	r.Support = cm.Total()
	return r
}

// String renders the report as a small table.
func (r ClassificationReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%8s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	for label, c := range r.Classes {
		fmt.Fprintf(&sb, "%8d %10.2f %10.2f %10.2f %10d\n", label, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(&sb, "%8s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, r.Support)
	return sb.String()
}

// EmpiricalNoiseRate re-derives e = b - A·secret mod 2 from a batch and
// returns the fraction of ones.
func EmpiricalNoiseRate(batch *SampleBatch, secret BitVector) (float64, error) {
	r, err := batch.Residual(secret)
	if err != nil {
		return 0, err
	}
	e := make([]float64, r.Len())
	for i := range e {
		e[i] = float64(parity(r.AtVec(i)))
	}
	return stat.Mean(e, nil), nil
}
