package identity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gomarket/internal/pkg/otp"
)

type countingStore struct {
	otp.Store
	sweeps atomic.Int32
}

func (c *countingStore) Sweep(context.Context) (int, error) {
	// odd calls fail
	if c.sweeps.Add(1)%2 == 1 {
		return 0, errors.New("store unavailable")
	}
	return 3, nil
}

func TestSweep(t *testing.T) {
	// Arrange
	store := &countingStore{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// Act
	go func() { done <- sweep(ctx, store, 5*time.Millisecond) }()

	// Assert
	require.Eventually(t, func() bool { return store.sweeps.Load() >= 3 }, 2*time.Second, 5*time.Millisecond,
		"keeps sweeping after a failed run")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not stop after cancel")
	}

	stopped := store.sweeps.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, store.sweeps.Load())
}
