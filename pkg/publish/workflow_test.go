package publish

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsdesk/pkg/domain"
	"github.com/umputun/newsdesk/pkg/remote"
)

type publisherFunc func(ctx context.Context, id domain.ID) error

func (f publisherFunc) PublishNews(ctx context.Context, id domain.ID) error { return f(ctx, id) }

func fastScript() Script {
	ms := time.Millisecond
	return NewScript([]time.Duration{5 * ms, 5 * ms, 5 * ms, 5 * ms}, 5*ms)
}

func TestWorkflow_RunSuccess(t *testing.T) {
	var published []domain.ID
	var refreshed int32
	pub := publisherFunc(func(_ context.Context, id domain.ID) error {
		published = append(published, id)
		return nil
	})
	modal := NewModal()
	wf := NewWorkflow(pub, modal, fastScript(), func(context.Context) { atomic.AddInt32(&refreshed, 1) })

	out := wf.Run(context.Background(), Subject{ID: "5", Title: "Gold rallies", AssetName: "XAUUSD"})
	require.NoError(t, out.Err)
	assert.True(t, out.Success)
	assert.False(t, out.Superseded)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, []domain.ID{"5"}, published)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshed))

	st := modal.Snapshot()
	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.Equal(t, "Published!", st.Title)
	assert.Equal(t, "News has been sent to terminal", st.Subtitle)
	assert.Equal(t, "XAUUSD", st.AssetName)
	assert.True(t, st.Dismissable)
	assert.True(t, st.Open)
	assert.Equal(t, out.RunID, st.RunID)
	assert.Equal(t, []string{
		"Initializing connection...",
		"Connecting to news terminal...",
		`Preparing news: "Gold rallies..."`,
		"Asset: XAUUSD",
		"Sending to publication queue...",
		"✓ News published successfully!",
	}, st.Lines)
}

func TestWorkflow_RunFailure(t *testing.T) {
	pub := publisherFunc(func(context.Context, domain.ID) error {
		return &remote.Error{Kind: remote.KindRejected, Op: "publish news", Status: 500, Detail: "terminal offline"}
	})
	var refreshed int32
	modal := NewModal()
	wf := NewWorkflow(pub, modal, fastScript(), func(context.Context) { atomic.AddInt32(&refreshed, 1) })

	out := wf.Run(context.Background(), Subject{ID: "5", Title: "t", AssetName: "EURUSD"})
	require.Error(t, out.Err)
	assert.False(t, out.Success)
	assert.Equal(t, int32(0), atomic.LoadInt32(&refreshed), "no refresh on failure")

	st := modal.Snapshot()
	assert.Equal(t, PhaseError, st.Phase)
	assert.Equal(t, "Error", st.Title)
	assert.Equal(t, "Failed to publish news", st.Subtitle)
	assert.True(t, st.Dismissable)
	require.NotEmpty(t, st.Lines)
	assert.Equal(t, "✗ Error: terminal offline", st.Lines[len(st.Lines)-1])
	assert.Len(t, st.Lines, 6, "narration completes before the error is shown")
}

func TestWorkflow_PlainErrorMessage(t *testing.T) {
	pub := publisherFunc(func(context.Context, domain.ID) error { return errors.New("boom") })
	modal := NewModal()
	out := NewWorkflow(pub, modal, fastScript(), nil).Run(context.Background(), Subject{ID: "1"})
	require.Error(t, out.Err)
	st := modal.Snapshot()
	assert.Equal(t, "✗ Error: boom", st.Lines[len(st.Lines)-1])
}

func TestWorkflow_FastResponseWaitsForTimeline(t *testing.T) {
	ms := time.Millisecond
	script := NewScript([]time.Duration{20 * ms, 20 * ms, 20 * ms, 20 * ms}, 20*ms)
	modal := NewModal()
	wf := NewWorkflow(publisherFunc(func(context.Context, domain.ID) error { return nil }), modal, script, nil)

	st := time.Now()
	out := wf.Run(context.Background(), Subject{ID: "1", Title: "x"})
	require.NoError(t, out.Err)
	assert.GreaterOrEqual(t, time.Since(st), script.Total())
	assert.Equal(t, 100*ms, script.Total())
}

func TestWorkflow_RequestStartsWithTimeline(t *testing.T) {
	ms := time.Millisecond
	script := NewScript([]time.Duration{30 * ms, 30 * ms, 30 * ms, 30 * ms}, 10*ms)
	var requestedAt time.Time
	pub := publisherFunc(func(context.Context, domain.ID) error {
		requestedAt = time.Now()
		return nil
	})
	st := time.Now()
	NewWorkflow(pub, NewModal(), script, nil).Run(context.Background(), Subject{ID: "1"})
	assert.Less(t, requestedAt.Sub(st), 60*ms, "request is not delayed by the narration")
}

func TestWorkflow_SendingStateNotDismissable(t *testing.T) {
	release := make(chan struct{})
	pub := publisherFunc(func(context.Context, domain.ID) error {
		<-release
		return nil
	})
	modal := NewModal()
	wf := NewWorkflow(pub, modal, fastScript(), nil)

	done := make(chan Outcome)
	go func() { done <- wf.Run(context.Background(), Subject{ID: "1", Title: "t"}) }()

	require.Eventually(t, func() bool { return modal.Snapshot().Phase == PhaseSending }, time.Second, time.Millisecond)
	st := modal.Snapshot()
	assert.Equal(t, "Publishing News", st.Title)
	assert.Equal(t, "Sending to terminal...", st.Subtitle)
	assert.False(t, st.Dismissable)
	assert.ErrorIs(t, modal.Dismiss(), ErrNotDismissable)
	assert.True(t, modal.Snapshot().Open)

	close(release)
	out := <-done
	require.NoError(t, out.Err)
	require.NoError(t, modal.Dismiss())
	assert.False(t, modal.Snapshot().Open)
}

func TestWorkflow_AlreadyPublished(t *testing.T) {
	called := false
	pub := publisherFunc(func(context.Context, domain.ID) error {
		called = true
		return nil
	})
	modal := NewModal()
	out := NewWorkflow(pub, modal, fastScript(), nil).Run(context.Background(), Subject{ID: "1", Published: true})
	require.ErrorIs(t, out.Err, ErrAlreadyPublished)
	assert.False(t, called)
	assert.Equal(t, PhaseIdle, modal.Snapshot().Phase)
	assert.False(t, modal.Snapshot().Open)
}

func TestWorkflow_SupersededRunIgnored(t *testing.T) {
	releaseFirst := make(chan struct{})
	pub := publisherFunc(func(_ context.Context, id domain.ID) error {
		if id == "first" {
			<-releaseFirst
			return errors.New("late failure")
		}
		return nil
	})
	modal := NewModal()
	wf := NewWorkflow(pub, modal, fastScript(), nil)

	firstDone := make(chan Outcome)
	go func() { firstDone <- wf.Run(context.Background(), Subject{ID: "first", AssetName: "A"}) }()
	require.Eventually(t, func() bool { return modal.Snapshot().AssetName == "A" }, time.Second, time.Millisecond)
	firstRun := modal.Snapshot().RunID

	second := wf.Run(context.Background(), Subject{ID: "second", AssetName: "B"})
	require.NoError(t, second.Err)
	assert.False(t, second.Superseded)

	close(releaseFirst)
	first := <-firstDone
	assert.True(t, first.Superseded)
	assert.Equal(t, firstRun, first.RunID)
	assert.NotEqual(t, first.RunID, second.RunID)

	st := modal.Snapshot()
	assert.Equal(t, second.RunID, st.RunID)
	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.Equal(t, "B", st.AssetName)
	for _, l := range st.Lines {
		assert.NotContains(t, l, "late failure")
	}
}

func TestModal_Subscribe(t *testing.T) {
	modal := NewModal()
	events, unsubscribe := modal.Subscribe(64)
	wf := NewWorkflow(publisherFunc(func(context.Context, domain.ID) error { return nil }), modal, fastScript(), nil)
	wf.Run(context.Background(), Subject{ID: "1", Title: "t", AssetName: "X"})
	unsubscribe()
	unsubscribe() // second call is a no-op

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	require.Len(t, got, 6)
	assert.Equal(t, EventReset, got[0].Type)
	assert.Equal(t, []string{"Initializing connection..."}, got[0].State.Lines)
	for _, ev := range got[1:5] {
		assert.Equal(t, EventLine, ev.Type)
	}
	assert.Equal(t, EventDone, got[5].Type)
	assert.True(t, got[5].State.Terminal())
	assert.Equal(t, "✓ News published successfully!", got[5].Line)
}

func TestModal_SlowSubscriberDoesNotBlock(t *testing.T) {
	modal := NewModal()
	_, unsubscribe := modal.Subscribe(1)
	defer unsubscribe()
	wf := NewWorkflow(publisherFunc(func(context.Context, domain.ID) error { return nil }), modal, fastScript(), nil)
	out := wf.Run(context.Background(), Subject{ID: "1"})
	require.NoError(t, out.Err)
	assert.Equal(t, PhaseSuccess, modal.Snapshot().Phase)
}

func TestModal_SnapshotIsCopy(t *testing.T) {
	modal := NewModal()
	modal.reset("r1", Subject{AssetName: "X"})
	st := modal.Snapshot()
	st.Lines[0] = "changed"
	assert.Equal(t, "Initializing connection...", modal.Snapshot().Lines[0])
}

func TestScript(t *testing.T) {
	s := DefaultScript()
	assert.Equal(t, 3100*time.Millisecond, s.Total())
	require.Len(t, s.Steps, 4)
	long := "0123456789012345678901234567890123456789EXTRA"
	assert.Equal(t, `Preparing news: "0123456789012345678901234567890123456789..."`, s.Steps[1].Line(Subject{Title: long}))
	assert.Equal(t, `Preparing news: "короткий..."`, s.Steps[1].Line(Subject{Title: "короткий"}))
}

func TestWorkflow_ConcurrentRunsRaceFree(t *testing.T) {
	modal := NewModal()
	wf := NewWorkflow(publisherFunc(func(context.Context, domain.ID) error { return nil }), modal, fastScript(), nil)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wf.Run(context.Background(), Subject{ID: "1"})
		}()
	}
	wg.Wait()
	assert.Equal(t, PhaseSuccess, modal.Snapshot().Phase)
}

func TestWorkflow_Start(t *testing.T) {
	release := make(chan struct{})
	pub := publisherFunc(func(context.Context, domain.ID) error {
		<-release
		return nil
	})
	modal := NewModal()
	wf := NewWorkflow(pub, modal, fastScript(), nil)
	assert.Same(t, modal, wf.Modal())

	runID, done, err := wf.Start(context.Background(), Subject{ID: "1", AssetName: "X"})
	require.NoError(t, err)
	st := modal.Snapshot()
	assert.Equal(t, runID, st.RunID, "modal is reset before Start returns")
	assert.Equal(t, PhaseSending, st.Phase)
	assert.True(t, st.Open)

	close(release)
	out := <-done
	require.NoError(t, out.Err)
	assert.Equal(t, runID, out.RunID)

	_, _, err = wf.Start(context.Background(), Subject{ID: "1", Published: true})
	assert.ErrorIs(t, err, ErrAlreadyPublished)
}
