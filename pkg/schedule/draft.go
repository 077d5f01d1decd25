package schedule

import (
	"errors"
	"slices"
	"strings"

	"github.com/umputun/newsdesk/pkg/domain"
)

// validation errors in the order they are checked
var (
	ErrAssetRequired   = errors.New("asset is required")
	ErrReservedAsset   = errors.New("asset name is reserved for calendar schedules")
	ErrImpactsRequired = errors.New("at least one impact level is required")
	ErrDaysRequired    = errors.New("at least one day is required")
	ErrTimesRequired   = errors.New("at least one time is required")
	ErrUnknownMode     = errors.New("unknown schedule mode")
	ErrUnknownOption   = errors.New("unknown option")
)

var messages = map[error]string{
	ErrAssetRequired:   "Please enter an asset",
	ErrReservedAsset:   "This asset name is reserved, use the calendar mode",
	ErrImpactsRequired: "Please select at least one impact level",
	ErrDaysRequired:    "Please select at least one day",
	ErrTimesRequired:   "Please select at least one time",
}

// Message returns the text shown to the operator for a validation error, empty for other errors
func Message(err error) string {
	for e, msg := range messages {
		if errors.Is(err, e) {
			return msg
		}
	}
	return ""
}

// Selection is a set of strings kept in the order they were added
type Selection struct {
	values []string
}

// NewSelection makes a selection with initial values, duplicates are skipped
func NewSelection(values ...string) Selection {
	var s Selection
	for _, v := range values {
		if !s.Has(v) {
			s.values = append(s.values, v)
		}
	}
	return s
}

// Toggle adds v if absent or removes it if present. Returns true if v is selected after the call.
func (s *Selection) Toggle(v string) bool {
	if i := slices.Index(s.values, v); i >= 0 {
		s.values = slices.Delete(s.values, i, i+1)
		return false
	}
	s.values = append(s.values, v)
	return true
}

// Has checks if v is selected
func (s Selection) Has(v string) bool {
	return slices.Contains(s.values, v)
}

// Values returns a copy of selected values in insertion order
func (s Selection) Values() []string {
	res := make([]string, len(s.values))
	copy(res, s.values)
	return res
}

// Len is the number of selected values
func (s Selection) Len() int {
	return len(s.values)
}

// Clear removes everything
func (s *Selection) Clear() {
	s.values = nil
}

// Defaults define initial draft values
type Defaults struct {
	Mode     domain.ScheduleMode
	Impacts  []string
	Language string
}

// Draft is the schedule form being filled in
type Draft struct {
	Mode     domain.ScheduleMode
	Asset    string
	Language string
	Days     Selection
	Times    Selection
	Impacts  Selection
}

// NewDraft makes an empty draft with defaults applied
func NewDraft(d Defaults) Draft {
	mode := d.Mode
	if mode == "" {
		mode = domain.ModeCalendar
	}
	return Draft{Mode: mode, Language: d.Language, Impacts: NewSelection(d.Impacts...)}
}

// SetMode switches between calendar and asset modes, selections are kept
func (d *Draft) SetMode(mode string) error {
	m, ok := domain.ParseScheduleMode(mode)
	if !ok {
		return ErrUnknownMode
	}
	d.Mode = m
	return nil
}

// Clone returns a deep copy
func (d Draft) Clone() Draft {
	res := d
	res.Days = NewSelection(d.Days.values...)
	res.Times = NewSelection(d.Times.values...)
	res.Impacts = NewSelection(d.Impacts.values...)
	return res
}

// NormalizedAsset is the asset as it will be sent, trimmed and upper-cased
func (d Draft) NormalizedAsset() string {
	return strings.ToUpper(strings.TrimSpace(d.Asset))
}

// Validate checks the draft, the first failing rule wins
func (d Draft) Validate() error {
	switch d.Mode {
	case domain.ModeAsset:
		asset := d.NormalizedAsset()
		if asset == "" {
			return ErrAssetRequired
		}
		if asset == domain.CalendarAsset {
			return ErrReservedAsset
		}
	case domain.ModeCalendar:
		if d.Impacts.Len() == 0 {
			return ErrImpactsRequired
		}
	default:
		return ErrUnknownMode
	}
	if d.Days.Len() == 0 {
		return ErrDaysRequired
	}
	if d.Times.Len() == 0 {
		return ErrTimesRequired
	}
	return nil
}

// Request builds the create request, it doesn't validate
func (d Draft) Request() domain.CreateScheduleRequest {
	asset := d.NormalizedAsset()
	if d.Mode == domain.ModeCalendar {
		asset = domain.CalendarAsset
	}
	return domain.CreateScheduleRequest{
		Asset:    asset,
		Language: d.Language,
		Days:     d.Days.Values(),
		Times:    d.Times.Values(),
		Mode:     d.Mode,
		Impacts:  d.Impacts.Values(),
	}
}

// AfterSubmit resets the draft after a successful create. Impacts stay selected.
func (d *Draft) AfterSubmit() {
	d.Days.Clear()
	d.Times.Clear()
	if d.Mode == domain.ModeAsset {
		d.Asset = ""
	}
}
