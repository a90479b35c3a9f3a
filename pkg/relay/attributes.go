package relay

import (
	"context"
	"fmt"

	"github.com/qsightlab/pubsub-relay/pkg/errorx"
	"github.com/qsightlab/pubsub-relay/pkg/logx"
	"github.com/qsightlab/pubsub-relay/pkg/utilx/jsonx"
)

// ParseAttributes parses a caller-provided attributes JSON object string into
// a flat string-to-string map. An empty string yields no attributes.
func ParseAttributes(ctx context.Context, raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}

	parsed, err := jsonx.ParseJSON([]byte(raw))
	if err != nil {
		return nil, errorx.NewValidationError("attributes must be a JSON object: %v", err)
	}

	return FlattenAttributes(ctx, parsed), nil
}

// FlattenAttributes keeps only flat string values from a decoded attribute
// object. Nested objects, arrays and non-string scalars are dropped with a
// warning and never propagated to the broker.
func FlattenAttributes(ctx context.Context, values map[string]interface{}) map[string]string {
	if len(values) == 0 {
		return nil
	}

	attributes := make(map[string]string, len(values))

	for key, value := range values {
		text, ok := value.(string)
		if !ok {
			logx.GetLogger().LogWarning(ctx, fmt.Sprintf("Dropping attribute %q: attribute values must be flat strings", key))
			continue
		}

		attributes[key] = text
	}

	return attributes
}
