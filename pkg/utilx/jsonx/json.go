package jsonx

import (
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ParseJSON parses the JSON data into a map
func ParseJSON(jsonData []byte) (map[string]interface{}, error) {
	var object map[string]interface{}
	if err := json.Unmarshal(jsonData, &object); err != nil {
		return nil, errors.WithMessage(err, "failed to parse JSON object")
	}

	return object, nil
}
