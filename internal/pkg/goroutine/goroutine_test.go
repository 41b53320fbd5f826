package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager(t *testing.T) {
	t.Run("CollectsErrors", func(t *testing.T) {
		// Arrange
		m := NewManager(4)
		boom := errors.New("boom")
		var ran atomic.Int32

		// Act
		m.Go(context.Background(), func(context.Context) error { ran.Add(1); return nil })
		m.Go(context.Background(), func(context.Context) error { ran.Add(1); return boom })
		m.Go(context.Background(), func(context.Context) error { ran.Add(1); return context.Canceled })
		err := m.Wait()

		// Assert
		assert.Equal(t, int32(3), ran.Load())
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, context.Canceled)
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		m := NewManager(1)
		assert.True(t, m.Go(context.Background(), func(context.Context) error { panic("x") }))
		assert.ErrorIs(t, m.Wait(), ErrPanic)
	})

	t.Run("RejectsWhenFull", func(t *testing.T) {
		m := NewManager(1)
		release := make(chan struct{})

		assert.True(t, m.Go(context.Background(), func(context.Context) error { <-release; return nil }))
		assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))

		close(release)
		assert.NoError(t, m.Wait())
	})

	t.Run("RejectsAfterWait", func(t *testing.T) {
		m := NewManager(1)
		assert.NoError(t, m.Wait())
		assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
	})

	t.Run("RejectsCanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, NewManager(1).Go(ctx, func(context.Context) error { return nil }))
	})

	t.Run("NilManager", func(t *testing.T) {
		var m *Manager
		assert.False(t, m.Go(context.Background(), func(context.Context) error { return nil }))
		assert.NoError(t, m.Wait())
	})
}
