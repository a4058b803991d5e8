package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsync_Value(t *testing.T) {
	ch := Async(context.Background(), func(context.Context) (int, error) { return 42, nil })

	v, err := Await(context.Background(), ch)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, open := <-ch
	assert.False(t, open, "channel must be closed after the single value")
}

func TestAsync_Error(t *testing.T) {
	boom := errors.New("boom")
	ch := Async(context.Background(), func(context.Context) (string, error) { return "ignored", boom })

	res := <-ch
	assert.ErrorIs(t, res.Err, boom)
	assert.Empty(t, res.Value)
}

func TestAwait_ContextDone(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	ch := Async(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := Await(ctx, ch)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
