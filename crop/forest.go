package crop

import (
	"errors"
	"fmt"
)

// DecisionTree arrays follow scikit-learn's tree_ layout: node i splits on
// Feature[i] at Threshold[i], going Left when value <= threshold. A node whose
// Left child is -1 is a leaf predicting Class[i].
type DecisionTree struct {
	Feature   []int     `json:"feature"`
	Threshold []float64 `json:"threshold"`
	Left      []int     `json:"left"`
	Right     []int     `json:"right"`
	Class     []int     `json:"class"`
}

const leafMarker = -1

func (dt *DecisionTree) validate(width int) error {
	n := len(dt.Left)
	if n == 0 {
		return errors.New("tree has no nodes")
	}
	if len(dt.Feature) != n || len(dt.Threshold) != n || len(dt.Right) != n || len(dt.Class) != n {
		return errors.New("tree node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		if dt.Left[i] == leafMarker {
			continue
		}
		if dt.Feature[i] < 0 || dt.Feature[i] >= width {
			return fmt.Errorf("node %d splits on feature %d outside [0,%d)", i, dt.Feature[i], width)
		}
		// children always come after their parent in scikit-learn's depth-first layout
		if dt.Left[i] <= i || dt.Left[i] >= n || dt.Right[i] <= i || dt.Right[i] >= n {
			return fmt.Errorf("node %d has invalid children (%d, %d)", i, dt.Left[i], dt.Right[i])
		}
	}
	return nil
}

func (dt *DecisionTree) predictRow(row []float64) int {
	idx := 0
	for dt.Left[idx] != leafMarker {
		if row[dt.Feature[idx]] <= dt.Threshold[idx] {
			idx = dt.Left[idx]
		} else {
			idx = dt.Right[idx]
		}
	}
	return dt.Class[idx]
}

// ForestClassifier takes a majority vote across its trees.
type ForestClassifier struct {
	trees []DecisionTree
	width int
}

func NewForestClassifier(trees []DecisionTree, width int) (*ForestClassifier, error) {
	if len(trees) == 0 {
		return nil, errors.New("forest has no trees")
	}
	if width <= 0 {
		return nil, fmt.Errorf("invalid feature count: %d", width)
	}
	for i := range trees {
		if err := trees[i].validate(width); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &ForestClassifier{trees: trees, width: width}, nil
}

// Predict returns one class id per input row.
func (f *ForestClassifier) Predict(x Matrix) ([]int, error) {
	if err := checkWidth(x, f.width, "ForestClassifier"); err != nil {
		return nil, err
	}

	classes := make([]int, len(x))
	for r, row := range x {
		votes := make(map[int]int)
		for i := range f.trees {
			votes[f.trees[i].predictRow(row)]++
		}
		best, bestVotes := 0, -1
		for class, count := range votes {
			if count > bestVotes || (count == bestVotes && class < best) {
				best, bestVotes = class, count
			}
		}
		classes[r] = best
	}
	return classes, nil
}
