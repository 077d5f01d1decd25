// Package edit manages inline edit sessions of news item fields.
// A session remembers the last confirmed value of one field of one item, it is used
// to skip writes when nothing changed and to restore the text when a write fails.
package edit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/umputun/newsdesk/pkg/domain"
)

// DefaultIndicator is how long the "saved" indicator stays visible
const DefaultIndicator = 2 * time.Second

var (
	// ErrNotEditable is returned for published or unknown items
	ErrNotEditable = errors.New("item is not editable")
	// ErrUnknownField is returned for fields without edit support
	ErrUnknownField = errors.New("unknown field")
)

// Writer sends a single field update to the remote store
type Writer interface {
	UpdateNewsField(ctx context.Context, id domain.ID, field domain.Field, value string) error
}

// Key identifies an edit session
type Key struct {
	ItemID domain.ID
	Field  domain.Field
}

// State is the outcome of a blur
type State int

const (
	// StateClean means nothing was written, the field shows its committed value
	StateClean State = iota
	// StateSaved means the new value was written and confirmed
	StateSaved
	// StateReverted means the write failed and the field shows the previous value again
	StateReverted
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateSaved:
		return "saved"
	case StateReverted:
		return "reverted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result describes what the field should display after a blur
type Result struct {
	State     State
	Value     string        // normalized text the field shows now
	Indicator time.Duration // how long to show the saved indicator, zero unless saved
	Err       error         // write failure for StateReverted, already logged
}

// Controller owns all edit sessions of the console
type Controller struct {
	writer    Writer
	editable  func(domain.ID) bool
	indicator time.Duration

	mu       sync.Mutex
	sessions map[Key]string
}

// NewController makes a controller. editable tells whether an item currently accepts edits,
// nil means every item does. Zero indicator means DefaultIndicator.
func NewController(w Writer, editable func(domain.ID) bool, indicator time.Duration) *Controller {
	if indicator <= 0 {
		indicator = DefaultIndicator
	}
	if editable == nil {
		editable = func(domain.ID) bool { return true }
	}
	return &Controller{writer: w, editable: editable, indicator: indicator, sessions: map[Key]string{}}
}

// Normalize converts the displayed markup of a field into the text that gets persisted
func Normalize(field domain.Field, displayed string) (string, error) {
	switch field {
	case domain.FieldTitle:
		return ReadTitle(displayed), nil
	case domain.FieldDescription:
		return ReadDescription(displayed)
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownField, field)
	}
}

// Focus enters edit mode, capturing the displayed value as the original unless a session exists
func (c *Controller) Focus(key Key, displayed string) error {
	if !c.editable(key.ItemID) {
		return ErrNotEditable
	}
	val, err := Normalize(key.Field, displayed)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[key]; !ok {
		c.sessions[key] = val
	}
	return nil
}

// Blur leaves edit mode. The field is written only when its normalized value differs from the
// session's value. A failed write is logged and the result carries the value to restore.
// Two blurs of the same key in flight are not ordered, the write completing last wins.
func (c *Controller) Blur(ctx context.Context, key Key, displayed string) (Result, error) {
	if !c.editable(key.ItemID) {
		return Result{}, ErrNotEditable
	}
	val, err := Normalize(key.Field, displayed)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	orig, ok := c.sessions[key]
	if !ok {
		// blur without a seen focus, nothing to compare with
		c.sessions[key] = val
		c.mu.Unlock()
		return Result{State: StateClean, Value: val}, nil
	}
	c.mu.Unlock()

	if orig == val {
		return Result{State: StateClean, Value: val}, nil
	}

	if err := c.writer.UpdateNewsField(ctx, key.ItemID, key.Field, val); err != nil {
		log.Printf("[WARN] can't save %s of %s, reverting: %v", key.Field, key.ItemID, err)
		return Result{State: StateReverted, Value: c.restoreValue(key, orig), Err: err}, nil
	}

	c.mu.Lock()
	c.sessions[key] = val
	c.mu.Unlock()
	log.Printf("[DEBUG] saved %s of %s", key.Field, key.ItemID)
	return Result{State: StateSaved, Value: val, Indicator: c.indicator}, nil
}

// Cancel leaves edit mode without a write and returns the value to restore, ok is false if
// the field was never focused
func (c *Controller) Cancel(key Key) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.sessions[key]
	return v, ok
}

// Original returns the stored value of a session
func (c *Controller) Original(key Key) (string, bool) {
	return c.Cancel(key)
}

// Forget drops all sessions of an item, used when the item goes away
func (c *Controller) Forget(id domain.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.sessions {
		if k.ItemID == id {
			delete(c.sessions, k)
		}
	}
}

// Sync aligns sessions with a freshly fetched collection. Sessions of items that are gone or
// published are dropped, the rest take the store's values as the last confirmed ones.
func (c *Controller) Sync(items []domain.NewsItem) {
	byID := make(map[domain.ID]domain.NewsItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.sessions {
		it, ok := byID[k.ItemID]
		if !ok || !it.Editable() {
			delete(c.sessions, k)
			continue
		}
		if v, err := storedValue(it, k.Field); err == nil {
			c.sessions[k] = v
		}
	}
}

// Len returns the number of live sessions
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// restoreValue returns the latest confirmed value, a concurrent blur may have saved meanwhile
func (c *Controller) restoreValue(key Key, fallback string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.sessions[key]; ok {
		return v
	}
	return fallback
}

// storedValue is the normalized form of a field as the store holds it
func storedValue(it domain.NewsItem, field domain.Field) (string, error) {
	switch field {
	case domain.FieldTitle:
		return strings.TrimSpace(it.Title), nil
	case domain.FieldDescription:
		return ReadDescription(RenderDescription(it.Description))
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownField, field)
	}
}
