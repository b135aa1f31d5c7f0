package apierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIs(t *testing.T) {
	t.Parallel()

	t.Run("same code matches", func(t *testing.T) {
		err := WrapError(ErrQuotaExceeded, "user u-1 exceeded max_vms", nil)
		assert.True(t, errors.Is(err, ErrQuotaExceeded))
	})

	t.Run("different code does not match", func(t *testing.T) {
		err := WrapError(ErrQuotaExceeded, "user u-1 exceeded max_vms", nil)
		assert.False(t, errors.Is(err, ErrInsufficientCapacity))
	})

	t.Run("wrapped with fmt.Errorf still matches", func(t *testing.T) {
		err := fmt.Errorf("create deployment: %w", ErrPortPoolExhausted)
		assert.True(t, errors.Is(err, ErrPortPoolExhausted))
	})

	t.Run("nil target", func(t *testing.T) {
		assert.False(t, ErrQuotaExceeded.Is(nil))
	})
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	raw := errors.New("connection refused")
	err := WrapError(ErrAdapterFailure, "hypervisor define failed", raw)

	assert.True(t, errors.Is(err, ErrAdapterFailure))
	assert.ErrorIs(t, err, raw)
}

func TestWrapErrorKeepsStatus(t *testing.T) {
	t.Parallel()

	err := WrapError(ErrOperationTimeout, "no address after 120s", nil)
	require.NotNil(t, err)
	assert.Equal(t, ErrOperationTimeout.Code, err.Code)
	assert.Equal(t, ErrOperationTimeout.HTTPStatus, err.HTTPStatus)
	assert.Equal(t, "no address after 120s", err.Message)
}

func TestNewErrorWithStatus(t *testing.T) {
	t.Parallel()

	err := NewErrorWithStatus("ResourceNotFound", "deployment vd-1 not found", 404)
	assert.Equal(t, 404, err.HTTPStatus)
	assert.Contains(t, err.Error(), "ResourceNotFound")
	assert.Contains(t, err.Error(), "vd-1")
}
