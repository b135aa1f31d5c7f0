package network

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/vdp/pkg/apierror"
)

func TestPool(t *testing.T) {
	t.Parallel()

	t.Run("allocates lowest free port", func(t *testing.T) {
		p := NewPool(2200, 2202)

		first, err := p.Allocate()
		require.NoError(t, err)
		assert.Equal(t, 2200, first)

		second, err := p.Allocate()
		require.NoError(t, err)
		assert.Equal(t, 2201, second)

		p.Release(2200)
		third, err := p.Allocate()
		require.NoError(t, err)
		assert.Equal(t, 2200, third)
	})

	t.Run("exhausted pool", func(t *testing.T) {
		p := NewPool(2200, 2200)

		_, err := p.Allocate()
		require.NoError(t, err)

		_, err = p.Allocate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, apierror.ErrPortPoolExhausted))
	})

	t.Run("restore marks port used", func(t *testing.T) {
		p := NewPool(2200, 2201)
		p.Restore(2200)

		port, err := p.Allocate()
		require.NoError(t, err)
		assert.Equal(t, 2201, port)

		// 区间外的端口忽略
		p.Restore(9999)
		assert.Equal(t, 0, p.Free())
	})

	t.Run("concurrent allocation yields unique ports", func(t *testing.T) {
		const n = 50
		p := NewPool(3000, 3000+n-1)

		var wg sync.WaitGroup
		ports := make(chan int, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				port, err := p.Allocate()
				if err == nil {
					ports <- port
				}
			}()
		}
		wg.Wait()
		close(ports)

		seen := make(map[int]bool)
		for port := range ports {
			assert.False(t, seen[port], "port %d allocated twice", port)
			seen[port] = true
		}
		assert.Len(t, seen, n)
	})
}
