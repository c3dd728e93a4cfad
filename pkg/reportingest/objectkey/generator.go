package objectkey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for blob key generation strategies. Keys
// must carry enough entropy that collisions across uploads are a non-issue.
type Generator interface {
	// GenerateKey creates a unique object key carrying the canonical
	// extension of the uploaded artifact (e.g. ".png").
	GenerateKey(extension string) string
}

// FlatGenerator produces flat keys of the form <uuid><ext>. The key is also
// usable directly as a public file name under a base URL.
type FlatGenerator struct{}

func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) GenerateKey(extension string) string {
	return uuid.New().String() + extension
}

// ShardedGenerator produces Git-style sharded keys for deployments whose
// backends benefit from prefix distribution:
// reports/ab/cdef1234...<ext>
type ShardedGenerator struct {
	// ShardLength controls how many characters to use for sharding (default: 2)
	ShardLength int
}

func NewShardedGenerator() *ShardedGenerator {
	return &ShardedGenerator{
		ShardLength: 2,
	}
}

func (g *ShardedGenerator) GenerateKey(extension string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")

	shardLen := g.ShardLength
	if shardLen <= 0 || shardLen >= len(id) {
		shardLen = 2
	}

	return fmt.Sprintf("reports/%s/%s%s", id[:shardLen], id[shardLen:], extension)
}

// NewRecommendedGenerator returns the generator used by default: flat keys
// whose file name doubles as the notification event identifier.
func NewRecommendedGenerator() Generator {
	return NewFlatGenerator()
}
