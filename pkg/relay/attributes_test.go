package relay_test

import (
	"context"
	"testing"

	"github.com/qsightlab/pubsub-relay/pkg/errorx"
	"github.com/qsightlab/pubsub-relay/pkg/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttributesEmptyString(t *testing.T) {
	attrs, err := relay.ParseAttributes(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, attrs)
}

func TestParseAttributesFlatObject(t *testing.T) {
	attrs, err := relay.ParseAttributes(context.Background(), `{"a": "1", "b": "2"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, attrs)
}

func TestParseAttributesMalformedJSON(t *testing.T) {
	_, err := relay.ParseAttributes(context.Background(), `{"a": `)
	require.Error(t, err)

	var validationErr *errorx.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestFlattenAttributesDropsNonStrings(t *testing.T) {
	attrs := relay.FlattenAttributes(context.Background(), map[string]interface{}{
		"flat":   "ok",
		"nested": map[string]interface{}{"a": "b"},
		"list":   []interface{}{"x"},
		"number": float64(3),
		"flag":   true,
	})

	assert.Equal(t, map[string]string{"flat": "ok"}, attrs)
}

func TestFlattenAttributesEmpty(t *testing.T) {
	assert.Nil(t, relay.FlattenAttributes(context.Background(), nil))
	assert.Nil(t, relay.FlattenAttributes(context.Background(), map[string]interface{}{}))
}
