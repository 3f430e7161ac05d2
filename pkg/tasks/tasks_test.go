package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers the value", func(t *testing.T) {
		v, err := Run(ctx, func(context.Context) (int, error) {
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("delivers the error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Run(ctx, func(context.Context) (string, error) {
			return "", boom
		})
		assert.ErrorIs(t, err, boom)
	})
}

func TestAwait_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	ch := Submit(ctx, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	cancel()
	_, err := Await(ctx, ch)
	assert.ErrorIs(t, err, context.Canceled)

	// The abandoned task still finishes into the buffered channel.
	close(release)
	select {
	case r := <-ch:
		assert.Equal(t, 1, r.Value)
	case <-time.After(time.Second):
		t.Fatal("task never delivered")
	}
}
