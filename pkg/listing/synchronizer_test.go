package listing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id   string
	open bool
}

func TestSynchronizer_Refresh(t *testing.T) {
	var calls []string
	resp := []item{{id: "1"}, {id: "2"}}
	s := New("news", func(_ context.Context, f string) ([]item, error) {
		calls = append(calls, f)
		return resp, nil
	}, nil)

	assert.False(t, s.Snapshot().Loaded)
	assert.True(t, s.Snapshot().Empty())

	snap, err := s.Refresh(context.Background(), "BTC")
	require.NoError(t, err)
	assert.True(t, snap.Loaded)
	assert.Equal(t, "BTC", snap.Filter)
	assert.Equal(t, int64(1), snap.Generation)
	assert.Equal(t, []item{{id: "1"}, {id: "2"}}, snap.Items)
	assert.Equal(t, []string{"BTC"}, calls)

	// the snapshot owns its items, later changes to the fetched slice don't leak in
	resp[0].open = true
	assert.False(t, s.Snapshot().Items[0].open)

	found, ok := s.Find(func(it item) bool { return it.id == "2" })
	assert.True(t, ok)
	assert.Equal(t, "2", found.id)
	_, ok = s.Find(func(it item) bool { return it.id == "3" })
	assert.False(t, ok)
}

func TestSynchronizer_RefreshIsTotal(t *testing.T) {
	results := [][]item{{{id: "1"}, {id: "2"}, {id: "3"}}, {{id: "3"}}, {}}
	n := 0
	s := New("news", func(context.Context, string) ([]item, error) {
		res := results[n]
		n++
		return res, nil
	}, nil)

	snap, err := s.Refresh(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, snap.Items, 3)

	snap, err = s.Refresh(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []item{{id: "3"}}, snap.Items, "previous items are discarded, not merged")

	snap, err = s.Refresh(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.True(t, snap.Loaded)
	assert.Equal(t, int64(3), snap.Generation)
}

func TestSynchronizer_FailureKeepsPreviousSnapshot(t *testing.T) {
	fail := false
	s := New("news", func(context.Context, string) ([]item, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return []item{{id: "1"}}, nil
	}, nil)

	hookCalls := 0
	s.OnReplace(func(Snapshot[item, string]) { hookCalls++ })

	before, err := s.Refresh(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, hookCalls)

	fail = true
	after, err := s.Refresh(context.Background(), "TSLA")
	require.Error(t, err)
	assert.Equal(t, before, after, "failed refresh returns the untouched previous snapshot")
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, "AAPL", s.Snapshot().Filter, "filter of a failed refresh is not remembered")
	assert.Equal(t, 1, hookCalls, "hooks are not called on failure")
}

func TestSynchronizer_Reload(t *testing.T) {
	var got []string
	s := New("news", func(_ context.Context, f string) ([]item, error) {
		got = append(got, f)
		return nil, nil
	}, nil)

	_, err := s.Refresh(context.Background(), "XAUUSD")
	require.NoError(t, err)
	_, err = s.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"XAUUSD", "XAUUSD"}, got)
	assert.NotNil(t, s.Snapshot().Items)
}

func TestSynchronizer_OnReplaceHook(t *testing.T) {
	s := New("schedules", func(context.Context, struct{}) ([]item, error) {
		return []item{{id: "a"}}, nil
	}, func(struct{}) string { return "all" })

	var seen []int64
	s.OnReplace(func(snap Snapshot[item, struct{}]) {
		seen = append(seen, snap.Generation)
		// hooks run outside the lock, reading the snapshot must not deadlock
		assert.Equal(t, snap.Generation, s.Snapshot().Generation)
	})

	_, err := s.Refresh(context.Background(), struct{}{})
	require.NoError(t, err)
	_, err = s.Refresh(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, seen)
}

func TestSynchronizer_CoalescesConcurrentRefresh(t *testing.T) {
	var fetches int32
	release := make(chan struct{})
	s := New("news", func(context.Context, string) ([]item, error) {
		atomic.AddInt32(&fetches, 1)
		<-release
		return []item{{id: "1"}}, nil
	}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Refresh(context.Background(), "same")
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
	assert.Equal(t, int64(1), s.Snapshot().Generation)
}

func TestSynchronizer_CanceledCallerDoesNotFailSharedFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := New("news", func(ctx context.Context, _ string) ([]item, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []item{{id: "1"}}, nil
	}, nil)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Refresh(first, "same")
		firstErr <- err
	}()
	<-started

	secondErr := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background(), "same")
		secondErr <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(release)

	require.NoError(t, <-firstErr)
	require.NoError(t, <-secondErr)
	assert.Len(t, s.Snapshot().Items, 1)
}

func TestSynchronizer_Patch(t *testing.T) {
	s := New("news", func(context.Context, string) ([]item, error) {
		return []item{{id: "1"}, {id: "2"}}, nil
	}, nil)
	before, err := s.Refresh(context.Background(), "")
	require.NoError(t, err)

	ok := s.Patch(func(it item) bool { return it.id == "2" }, func(it *item) { it.open = true })
	require.True(t, ok)
	snap := s.Snapshot()
	assert.True(t, snap.Items[1].open)
	assert.False(t, before.Items[1].open, "earlier snapshots are not modified")
	assert.Equal(t, before.Generation, snap.Generation)

	assert.False(t, s.Patch(func(it item) bool { return it.id == "42" }, func(it *item) { it.open = true }))
}
