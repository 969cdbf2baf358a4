package crop

// K-Nearest Neighbours Classifier
//
// Prototypes are labelled rows already expressed in the final (scaled) feature
// space. For each input row the k nearest prototypes by Euclidean distance
// vote for their class, each vote weighted by 1 / (distance + epsilon). The
// class with the largest weight wins; ties go to the class whose neighbours
// are closer on average, then to the lower class id.

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Prototype is one labelled training row.
type Prototype struct {
	ID       string    `json:"id,omitempty"`
	Class    int       `json:"class"`
	Features []float64 `json:"features"`
}

// KNNClassifier performs k-nearest prototype lookups. It is read-only after
// construction.
type KNNClassifier struct {
	prototypes []Prototype
	k          int
	width      int
}

type distancePair struct {
	index    int
	distance float64
}

// NewKNNClassifier validates the prototypes and clamps k to the prototype count.
func NewKNNClassifier(prototypes []Prototype, k int) (*KNNClassifier, error) {
	if k <= 0 {
		return nil, fmt.Errorf("invalid neighbour count: %d", k)
	}
	if len(prototypes) == 0 {
		return nil, errors.New("no prototypes provided")
	}

	width := len(prototypes[0].Features)
	if width == 0 {
		return nil, errors.New("prototypes have no features")
	}

	copies := make([]Prototype, len(prototypes))
	for idx, proto := range prototypes {
		if len(proto.Features) != width {
			return nil, fmt.Errorf("prototype %s has %d features, expected %d", proto.ID, len(proto.Features), width)
		}
		proto.Features = append([]float64(nil), proto.Features...)
		copies[idx] = proto
	}

	if k > len(copies) {
		k = len(copies)
	}

	return &KNNClassifier{prototypes: copies, k: k, width: width}, nil
}

// Predict returns one class id per input row.
func (c *KNNClassifier) Predict(x Matrix) ([]int, error) {
	if err := checkWidth(x, c.width, "KNNClassifier"); err != nil {
		return nil, err
	}

	classes := make([]int, len(x))
	for r, row := range x {
		classes[r] = c.predictRow(row)
	}
	return classes, nil
}

func (c *KNNClassifier) predictRow(row []float64) int {
	distances := make([]distancePair, len(c.prototypes))
	for i := range c.prototypes {
		distances[i] = distancePair{index: i, distance: euclideanDistance(row, c.prototypes[i].Features)}
	}
	sort.SliceStable(distances, func(i, j int) bool {
		return distances[i].distance < distances[j].distance
	})

	type classScore struct {
		weightSum float64
		distSum   float64
		count     int
	}
	scores := make(map[int]*classScore)
	for idx := 0; idx < c.k; idx++ {
		neighbor := distances[idx]
		class := c.prototypes[neighbor.index].Class
		stats, ok := scores[class]
		if !ok {
			stats = &classScore{}
			scores[class] = stats
		}
		stats.weightSum += 1.0 / (neighbor.distance + 1e-9) // epsilon avoids division by zero on exact matches
		stats.distSum += neighbor.distance
		stats.count++
	}

	best, bestScore := 0, (*classScore)(nil)
	for class, stats := range scores {
		if bestScore == nil {
			best, bestScore = class, stats
			continue
		}
		if math.Abs(stats.weightSum-bestScore.weightSum) > 1e-9 {
			if stats.weightSum > bestScore.weightSum {
				best, bestScore = class, stats
			}
			continue
		}
		avg := stats.distSum / float64(stats.count)
		bestAvg := bestScore.distSum / float64(bestScore.count)
		if avg < bestAvg || (avg == bestAvg && class < best) {
			best, bestScore = class, stats
		}
	}
	return best
}

func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
