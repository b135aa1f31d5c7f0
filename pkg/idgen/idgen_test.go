package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePrefixedIDs(t *testing.T) {
	t.Parallel()

	g := New()

	id, err := g.GenerateDeploymentID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "vd-"))

	id, err = g.GenerateSnapshotID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "snap-"))

	id, err = g.GenerateNodeID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "node-"))
}

func TestGenerateIDUnique(t *testing.T) {
	t.Parallel()

	g := New()
	const n = 1000

	seen := make(map[string]bool, n)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := g.GenerateDeploymentID()
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
}

func TestDefaultGenerator(t *testing.T) {
	t.Parallel()

	assert.Same(t, DefaultGenerator(), DefaultGenerator())

	id, err := GenerateDeploymentID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
