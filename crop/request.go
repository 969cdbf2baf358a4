package crop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UnmarshalJSON requires every measurement to be present and coercible to a
// float. Numeric strings are accepted; null, booleans and objects are not.
func (r *PredictionRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid request payload: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("invalid request payload: expected a JSON object")
	}

	var values FeatureVector
	for i, name := range FeatureNames {
		field, ok := raw[name]
		if !ok {
			return fmt.Errorf("missing required field '%s'", name)
		}
		value, err := coerceFloat(field)
		if err != nil {
			return fmt.Errorf("field '%s': %w", name, err)
		}
		values[i] = value
	}

	*r = PredictionRequest{
		Nitrogen:    values[0],
		Phosphorus:  values[1],
		Potassium:   values[2],
		Temperature: values[3],
		Humidity:    values[4],
		Ph:          values[5],
		Rainfall:    values[6],
	}
	return nil
}

func coerceFloat(field json.RawMessage) (float64, error) {
	trimmed := bytes.TrimSpace(field)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, fmt.Errorf("value is null")
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return 0, err
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: '%s'", text)
		}
		return value, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var value float64
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return 0, err
		}
		return value, nil
	default:
		return 0, fmt.Errorf("value %s is not numeric", string(trimmed))
	}
}
