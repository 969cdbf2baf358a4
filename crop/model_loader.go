package crop

import (
	"fmt"
	"path/filepath"
)

const (
	MinMaxScalerFile   = "minmaxscaler.json"
	StandardScalerFile = "standscaler.json"
	ModelFile          = "model.json"
)

// Model maps feature rows to class ids.
type Model interface {
	Predict(x Matrix) ([]int, error)
}

// Transformer maps feature rows to rescaled feature rows of the same shape.
type Transformer interface {
	Transform(x Matrix) (Matrix, error)
}

type modelEnvelope struct {
	Type       string         `json:"type"`
	K          int            `json:"k,omitempty"`
	Features   int            `json:"n_features,omitempty"`
	Prototypes []Prototype    `json:"prototypes,omitempty"`
	Trees      []DecisionTree `json:"trees,omitempty"`
}

// LoadModel reads a serialised classifier. Supported types are "knn" and
// "forest" (a single decision tree is a forest of one).
func LoadModel(path string) (Model, error) {
	var envelope modelEnvelope
	if err := readJSONFile(path, &envelope); err != nil {
		return nil, fmt.Errorf("unable to load model: %w", err)
	}

	switch envelope.Type {
	case "knn":
		k := envelope.K
		if k == 0 {
			k = 5
		}
		model, err := NewKNNClassifier(envelope.Prototypes, k)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", path, err)
		}
		return model, nil
	case "forest", "decision_tree":
		width := envelope.Features
		if width == 0 {
			width = FeatureCount
		}
		model, err := NewForestClassifier(envelope.Trees, width)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", path, err)
		}
		return model, nil
	default:
		return nil, fmt.Errorf("model %s: unsupported model type %q", path, envelope.Type)
	}
}

// Artifacts bundles the three pre-fit components loaded at startup.
type Artifacts struct {
	MinMax   *MinMaxScaler
	Standard *StandardScaler
	Model    Model
}

// LoadArtifacts loads the scalers and, unless model is non-nil, the local
// model from dir.
func LoadArtifacts(dir string, model Model) (*Artifacts, error) {
	minMax, err := LoadMinMaxScaler(filepath.Join(dir, MinMaxScalerFile))
	if err != nil {
		return nil, err
	}
	standard, err := LoadStandardScaler(filepath.Join(dir, StandardScalerFile))
	if err != nil {
		return nil, err
	}
	if len(minMax.DataMin) != FeatureCount || len(standard.Mean) != FeatureCount {
		return nil, fmt.Errorf("scalers expect %d and %d features, request has %d",
			len(minMax.DataMin), len(standard.Mean), FeatureCount)
	}

	if model == nil {
		model, err = LoadModel(filepath.Join(dir, ModelFile))
		if err != nil {
			return nil, err
		}
	}

	return &Artifacts{MinMax: minMax, Standard: standard, Model: model}, nil
}
