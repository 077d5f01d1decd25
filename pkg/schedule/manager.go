// Package schedule keeps the schedule form state of the console and performs schedule actions
// against the remote store.
package schedule

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/umputun/newsdesk/pkg/domain"
)

// Remote is the part of the store client used for schedules
type Remote interface {
	CreateSchedule(ctx context.Context, req domain.CreateScheduleRequest) error
	ToggleSchedule(ctx context.Context, id domain.ID) error
	DeleteSchedule(ctx context.Context, id domain.ID) error
	RunSchedule(ctx context.Context, id domain.ID) error
}

// RefreshFunc reloads a list after a write
type RefreshFunc func(ctx context.Context) error

// Options are the values offered by the schedule form, empty lists accept anything
type Options struct {
	Days    []string
	Times   []string
	Impacts []string
}

// Manager owns the draft and runs schedule actions
type Manager struct {
	remote           Remote
	options          Options
	refreshSchedules RefreshFunc
	refreshNews      RefreshFunc

	mu    sync.Mutex
	draft Draft
}

// NewManager makes a manager. Refresh funcs may be nil.
func NewManager(remote Remote, defaults Defaults, options Options, refreshSchedules, refreshNews RefreshFunc) *Manager {
	noop := func(context.Context) error { return nil }
	if refreshSchedules == nil {
		refreshSchedules = noop
	}
	if refreshNews == nil {
		refreshNews = noop
	}
	return &Manager{remote: remote, options: options, draft: NewDraft(defaults),
		refreshSchedules: refreshSchedules, refreshNews: refreshNews}
}

// Draft returns a copy of the current draft
func (m *Manager) Draft() Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft.Clone()
}

// Options returns the offered values
func (m *Manager) Options() Options {
	return m.options
}

// ToggleDay flips a day and returns whether it is selected now
func (m *Manager) ToggleDay(day string) (bool, error) {
	return m.toggle(day, m.options.Days, func(d *Draft) *Selection { return &d.Days })
}

// ToggleTime flips a time slot and returns whether it is selected now
func (m *Manager) ToggleTime(tm string) (bool, error) {
	return m.toggle(tm, m.options.Times, func(d *Draft) *Selection { return &d.Times })
}

// ToggleImpact flips an impact level and returns whether it is selected now
func (m *Manager) ToggleImpact(impact string) (bool, error) {
	return m.toggle(impact, m.options.Impacts, func(d *Draft) *Selection { return &d.Impacts })
}

// SetMode switches the draft mode
func (m *Manager) SetMode(mode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft.SetMode(mode)
}

// SetAsset keeps the typed asset, normalization happens on submit
func (m *Manager) SetAsset(asset string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft.Asset = asset
}

// SetLanguage sets the language of generated news
func (m *Manager) SetLanguage(lang string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft.Language = lang
}

// Submit validates the draft and creates the schedule. Invalid drafts make no remote calls.
// On success the draft is reset and the schedule list reloaded. Failed creates keep the draft.
func (m *Manager) Submit(ctx context.Context) (domain.CreateScheduleRequest, error) {
	m.mu.Lock()
	draft := m.draft.Clone()
	m.mu.Unlock()

	if err := draft.Validate(); err != nil {
		return domain.CreateScheduleRequest{}, err
	}
	req := draft.Request()
	if err := m.remote.CreateSchedule(ctx, req); err != nil {
		return req, fmt.Errorf("create schedule for %s: %w", req.Asset, err)
	}
	log.Printf("[INFO] schedule created for %s, days %v, times %v", req.Asset, req.Days, req.Times)

	m.mu.Lock()
	m.draft.AfterSubmit()
	m.mu.Unlock()

	m.refresh(ctx, "schedules", m.refreshSchedules)
	return req, nil
}

// Toggle flips active state of a schedule and reloads schedules
func (m *Manager) Toggle(ctx context.Context, id domain.ID) error {
	err := m.remote.ToggleSchedule(ctx, id)
	m.refresh(ctx, "schedules", m.refreshSchedules)
	if err != nil {
		return fmt.Errorf("toggle schedule %s: %w", id, err)
	}
	return nil
}

// Delete removes a schedule and reloads schedules
func (m *Manager) Delete(ctx context.Context, id domain.ID) error {
	err := m.remote.DeleteSchedule(ctx, id)
	m.refresh(ctx, "schedules", m.refreshSchedules)
	if err != nil {
		return fmt.Errorf("delete schedule %s: %w", id, err)
	}
	return nil
}

// RunNow triggers a schedule immediately and reloads schedules,
// on success the news list is reloaded as well to show the result
func (m *Manager) RunNow(ctx context.Context, id domain.ID) error {
	err := m.remote.RunSchedule(ctx, id)
	m.refresh(ctx, "schedules", m.refreshSchedules)
	if err != nil {
		return fmt.Errorf("run schedule %s: %w", id, err)
	}
	m.refresh(ctx, "news", m.refreshNews)
	return nil
}

func (m *Manager) toggle(v string, allowed []string, sel func(d *Draft) *Selection) (bool, error) {
	v = strings.TrimSpace(v)
	if len(allowed) > 0 && !slices.Contains(allowed, v) {
		return false, fmt.Errorf("%w: %q", ErrUnknownOption, v)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return sel(&m.draft).Toggle(v), nil
}

// refresh failures are logged only, the write itself already happened
func (m *Manager) refresh(ctx context.Context, name string, fn RefreshFunc) {
	if err := fn(ctx); err != nil {
		log.Printf("[WARN] can't refresh %s after schedule change: %v", name, err)
	}
}
