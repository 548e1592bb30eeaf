// Package dtree is a CART decision tree for binary features and binary labels.
//
// Features are treated as set when their value rounds to an odd integer,
// so 0/1 matrices from an oracle can be passed directly.
package dtree

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrNotFitted is returned by Predict before a successful Fit.
var ErrNotFitted = errors.New("dtree: classifier not fitted")

// Tree is a decision tree classifier. A zero MaxDepth grows until leaves are
// pure or no informative feature remains.
type Tree struct {
	MaxDepth        int
	MinSamplesSplit int

	root     *node
	features int
}

type node struct {
	feature int // -1 for a leaf
	label   float64
	zero    *node
	one     *node
}

// New returns an unbounded tree.
func New() *Tree {
	return &Tree{MinSamplesSplit: 2}
}

// WithMaxDepth bounds the depth of the tree.
func (t *Tree) WithMaxDepth(depth int) *Tree {
	t.MaxDepth = depth
	return t
}

// Fit grows a new tree, discarding any previous one.
func (t *Tree) Fit(features mat.Matrix, labels mat.Vector) error {
	rows, cols := features.Dims()
	if rows == 0 || cols == 0 {
		return fmt.Errorf("dtree: empty training set (%dx%d)", rows, cols)
	}
	if labels.Len() != rows {
		return fmt.Errorf("dtree: %d rows but %d labels", rows, labels.Len())
	}

	x := make([][]bool, rows)
	y := make([]bool, rows)
	for i := 0; i < rows; i++ {
		x[i] = make([]bool, cols)
		for j := 0; j < cols; j++ {
			x[i][j] = isSet(features.At(i, j))
		}
		y[i] = isSet(labels.AtVec(i))
	}

	idx := make([]int, rows)
	for i := range idx {
		idx[i] = i
	}
	used := make([]bool, cols)

	t.features = cols
	t.root = t.grow(x, y, idx, used, 0)
	return nil
}

// Predict labels each row of features with 0 or 1.
func (t *Tree) Predict(features mat.Matrix) (*mat.VecDense, error) {
	if t.root == nil {
		return nil, ErrNotFitted
	}
	rows, cols := features.Dims()
	if cols != t.features {
		return nil, fmt.Errorf("dtree: fitted on %d features, got %d", t.features, cols)
	}
	out := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		n := t.root
		for n.feature >= 0 {
			if isSet(features.At(i, n.feature)) {
				n = n.one
			} else {
				n = n.zero
			}
		}
		out.SetVec(i, n.label)
	}
	return out, nil
}

// Depth returns the depth of the fitted tree (0 for a single leaf).
func (t *Tree) Depth() int {
	return depth(t.root)
}

func depth(n *node) int {
	if n == nil || n.feature < 0 {
		return 0
	}
	return 1 + max(depth(n.zero), depth(n.one))
}

func (t *Tree) grow(x [][]bool, y []bool, idx []int, used []bool, level int) *node {
	ones := 0
	for _, i := range idx {
		if y[i] {
			ones++
		}
	}
	leaf := &node{feature: -1}
	// Ties go to 0.
	if 2*ones > len(idx) {
		leaf.label = 1
	}

	if ones == 0 || ones == len(idx) {
		return leaf
	}
	if t.MaxDepth > 0 && level >= t.MaxDepth {
		return leaf
	}
	if len(idx) < t.MinSamplesSplit {
		return leaf
	}

	feature, zeroIdx, oneIdx := bestSplit(x, y, idx, used)
	if feature < 0 {
		return leaf
	}

	used[feature] = true
	n := &node{
		feature: feature,
		label:   leaf.label,
		zero:    t.grow(x, y, zeroIdx, used, level+1),
		one:     t.grow(x, y, oneIdx, used, level+1),
	}
	used[feature] = false
	return n
}

// bestSplit picks the unused feature minimizing weighted Gini impurity among
// splits that leave both children non-empty. A split with zero gain is still
// taken: parity labels look pure noise to every single feature.
func bestSplit(x [][]bool, y []bool, idx []int, used []bool) (int, []int, []int) {
	best := -1
	bestScore := math.Inf(1)
	for f := range used {
		if used[f] {
			continue
		}
		var n0, n1, pos0, pos1 int
		for _, i := range idx {
			if x[i][f] {
				n1++
				if y[i] {
					pos1++
				}
			} else {
				n0++
				if y[i] {
					pos0++
				}
			}
		}
		if n0 == 0 || n1 == 0 {
			continue
		}
		score := float64(n0)*gini(pos0, n0) + float64(n1)*gini(pos1, n1)
		if score < bestScore {
			bestScore = score
			best = f
		}
	}
	if best < 0 {
		return -1, nil, nil
	}

	var zeroIdx, oneIdx []int
	for _, i := range idx {
		if x[i][best] {
			oneIdx = append(oneIdx, i)
		} else {
			zeroIdx = append(zeroIdx, i)
		}
	}
	return best, zeroIdx, oneIdx
}

func gini(pos, n int) float64 {
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}

func isSet(v float64) bool {
	return int64(math.Round(v))%2 != 0
}
