package view

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_LoadStoresData(t *testing.T) {
	r := NewResource(func(ctx context.Context) (int, error) { return 7, nil })
	require.NoError(t, r.Load(context.Background()))

	snap := r.Snapshot()
	assert.True(t, snap.HasData)
	assert.Equal(t, 7, snap.Data)
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Err)
}

func TestResource_ErrorClearsData(t *testing.T) {
	fail := false
	r := NewResource(func(ctx context.Context) (int, error) {
		if fail {
			return 0, errors.New("boom")
		}
		return 1, nil
	})
	require.NoError(t, r.Load(context.Background()))
	fail = true
	assert.Error(t, r.Load(context.Background()))

	snap := r.Snapshot()
	assert.False(t, snap.HasData)
	assert.False(t, snap.Loading)
	assert.EqualError(t, snap.Err, "boom")
}

func TestResource_StaleLoadDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0
	r := NewResource(func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			return "stale", nil
		}
		return "fresh", nil
	})

	done := make(chan struct{})
	go func() {
		_ = r.Load(context.Background())
		close(done)
	}()
	<-started
	require.NoError(t, r.Load(context.Background()))
	close(release)
	<-done

	assert.Equal(t, "fresh", r.Snapshot().Data)
}

func TestResource_ClosedIgnoresResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	r := NewResource(func(ctx context.Context) (int, error) {
		close(started)
		<-release
		return 5, nil
	})

	done := make(chan struct{})
	go func() {
		_ = r.Load(context.Background())
		close(done)
	}()
	<-started
	r.Close()
	close(release)
	<-done

	snap := r.Snapshot()
	assert.False(t, snap.HasData)
	assert.False(t, snap.Loading)
	assert.NoError(t, r.Load(context.Background()))
}
