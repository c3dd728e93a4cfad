package objectkey_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetfix/report-ingest/pkg/reportingest/objectkey"
)

func TestFlatGenerator(t *testing.T) {
	g := objectkey.NewFlatGenerator()

	key := g.GenerateKey(".png")
	assert.True(t, strings.HasSuffix(key, ".png"))

	_, err := uuid.Parse(strings.TrimSuffix(key, ".png"))
	require.NoError(t, err, "key prefix must be a uuid")
}

func TestFlatGeneratorKeysAreUnique(t *testing.T) {
	g := objectkey.NewFlatGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		key := g.GenerateKey(".jpg")
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}

func TestShardedGenerator(t *testing.T) {
	g := objectkey.NewShardedGenerator()

	key := g.GenerateKey(".png")
	assert.True(t, strings.HasPrefix(key, "reports/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	parts := strings.Split(key, "/")
	require.Len(t, parts, 3)
	assert.Len(t, parts[1], 2)
	assert.Len(t, strings.TrimSuffix(parts[2], ".png"), 30)
}

func TestShardedGeneratorCustomShardLength(t *testing.T) {
	g := &objectkey.ShardedGenerator{ShardLength: 3}

	key := g.GenerateKey(".gif")
	parts := strings.Split(key, "/")
	require.Len(t, parts, 3)
	assert.Len(t, parts[1], 3)
}
