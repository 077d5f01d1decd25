// Package publish narrates a publish action in the console's modal while the real request runs.
// The scripted timeline and the request are independent, the modal reaches its final state
// only after both are done and a settle delay passed.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/newsdesk/pkg/domain"
)

// ErrAlreadyPublished is returned for items that are published already, the modal is not touched
var ErrAlreadyPublished = errors.New("item is already published")

// Publisher sends the real publish request
type Publisher interface {
	PublishNews(ctx context.Context, id domain.ID) error
}

// Subject is the item being published
type Subject struct {
	ID        domain.ID
	Title     string
	AssetName string
	Published bool
}

// SubjectOf makes a publish subject from a news item
func SubjectOf(item domain.NewsItem) Subject {
	return Subject{ID: item.ID, Title: item.Title, AssetName: item.AssetLabel(), Published: item.Published}
}

// Step is one scripted status line, shown after Delay from the previous step
type Step struct {
	Delay time.Duration
	Line  func(Subject) string
}

// Script is the fixed narration of a publish
type Script struct {
	Steps  []Step
	Settle time.Duration // wait after both the timeline and the request are done
}

// DefaultScript returns the standard narration
func DefaultScript() Script {
	return NewScript([]time.Duration{500 * time.Millisecond, 700 * time.Millisecond, 600 * time.Millisecond,
		500 * time.Millisecond}, 800*time.Millisecond)
}

// NewScript makes the standard narration with custom delays. Missing delays are zero.
func NewScript(delays []time.Duration, settle time.Duration) Script {
	lines := []func(Subject) string{
		func(Subject) string { return "Connecting to news terminal..." },
		func(s Subject) string { return fmt.Sprintf("Preparing news: %q", truncate(s.Title, 40)+"...") },
		func(s Subject) string { return "Asset: " + s.AssetName },
		func(Subject) string { return "Sending to publication queue..." },
	}
	steps := make([]Step, len(lines))
	for i, l := range lines {
		steps[i] = Step{Line: l}
		if i < len(delays) {
			steps[i].Delay = delays[i]
		}
	}
	return Script{Steps: steps, Settle: settle}
}

// Total is the minimal duration of a run
func (s Script) Total() time.Duration {
	var res time.Duration
	for _, st := range s.Steps {
		res += st.Delay
	}
	return res + s.Settle
}

// Outcome reports how a run ended
type Outcome struct {
	RunID      string
	Success    bool
	Err        error
	Superseded bool // a newer run took the modal over, this run's final state was not shown
}

// Workflow runs publish narrations against a single modal
type Workflow struct {
	publisher Publisher
	modal     *Modal
	script    Script
	onSuccess func(ctx context.Context)
}

// NewWorkflow makes a workflow. onSuccess is called after a successful publish, typically to
// refresh the news list, it may be nil.
func NewWorkflow(p Publisher, modal *Modal, script Script, onSuccess func(ctx context.Context)) *Workflow {
	if onSuccess == nil {
		onSuccess = func(context.Context) {}
	}
	return &Workflow{publisher: p, modal: modal, script: script, onSuccess: onSuccess}
}

// Modal returns the modal the workflow drives
func (w *Workflow) Modal() *Modal {
	return w.modal
}

// Run publishes the subject and narrates it in the modal. It blocks until the modal reached
// its terminal state. Concurrent runs for different items are not deduplicated, the latest one
// owns the modal.
func (w *Workflow) Run(ctx context.Context, subj Subject) Outcome {
	_, done, err := w.Start(ctx, subj)
	if err != nil {
		return Outcome{Err: err}
	}
	return <-done
}

// Start resets the modal for a new run and continues it in background.
// The returned channel delivers the outcome once the modal reached its terminal state.
func (w *Workflow) Start(ctx context.Context, subj Subject) (runID string, done <-chan Outcome, err error) {
	if subj.Published {
		return "", nil, ErrAlreadyPublished
	}

	runID = uuid.NewString()
	w.modal.reset(runID, subj)
	log.Printf("[INFO] publishing %s, run %s", subj.ID, runID)

	ch := make(chan Outcome, 1)
	go func() { ch <- w.execute(ctx, runID, subj) }()
	return runID, ch, nil
}

// execute runs the timeline and the request side by side, then settles and shows the result
func (w *Workflow) execute(ctx context.Context, runID string, subj Subject) Outcome {
	var pubErr error
	var g errgroup.Group
	g.Go(func() error {
		w.narrate(ctx, runID, subj)
		return nil
	})
	g.Go(func() error {
		pubErr = w.publisher.PublishNews(ctx, subj.ID)
		return nil
	})
	_ = g.Wait()
	sleep(ctx, w.script.Settle)

	res := Outcome{RunID: runID, Success: pubErr == nil, Err: pubErr}
	if pubErr != nil {
		log.Printf("[WARN] publish of %s failed: %v", subj.ID, pubErr)
		res.Superseded = !w.modal.finish(runID, PhaseError, "Error", "Failed to publish news", "✗ Error: "+errMessage(pubErr))
		return res
	}

	res.Superseded = !w.modal.finish(runID, PhaseSuccess, "Published!", "News has been sent to terminal", "✓ News published successfully!")
	w.onSuccess(ctx)
	return res
}

// narrate emits scripted lines at fixed delays, stops early if the run was superseded
func (w *Workflow) narrate(ctx context.Context, runID string, subj Subject) {
	for _, st := range w.script.Steps {
		if !sleep(ctx, st.Delay) {
			return
		}
		if !w.modal.addLine(runID, st.Line(subj)) {
			return
		}
	}
}

// sleep waits for d or until ctx is done, returns false on ctx done
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// errMessage prefers a short message from errors that provide one
func errMessage(err error) string {
	var msgErr interface{ Message() string }
	if errors.As(err, &msgErr) {
		return msgErr.Message()
	}
	return err.Error()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
