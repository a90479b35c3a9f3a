package blobstore

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestObjectKeyKeepsExtension(t *testing.T) {
	key := objectKey("report.pdf")
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	_, err := uuid.Parse(strings.TrimSuffix(key, ".pdf"))
	assert.NoError(t, err)
}

func TestObjectKeyWithoutExtension(t *testing.T) {
	key := objectKey("README")
	_, err := uuid.Parse(key)
	assert.NoError(t, err)
}

func TestObjectKeyEmptyFilename(t *testing.T) {
	key := objectKey("")
	_, err := uuid.Parse(key)
	assert.NoError(t, err)
}

func TestObjectKeysDoNotCollide(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		key := objectKey("upload.bin")
		_, dup := seen[key]
		assert.False(t, dup, "generated a duplicate object key")
		seen[key] = struct{}{}
	}
}
