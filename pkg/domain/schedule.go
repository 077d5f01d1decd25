package domain

import "strings"

// CalendarAsset is the asset value of schedules driven by the economic calendar feed
const CalendarAsset = "ECONOMIC_CALENDAR"

// ScheduleMode selects what drives a schedule
type ScheduleMode string

const (
	ModeAsset    ScheduleMode = "asset"
	ModeCalendar ScheduleMode = "calendar"
)

// ParseScheduleMode converts a raw mode name, ok is false for unknown modes
func ParseScheduleMode(s string) (ScheduleMode, bool) {
	switch ScheduleMode(s) {
	case ModeAsset, ModeCalendar:
		return ScheduleMode(s), true
	}
	return "", false
}

// Schedule is a recurring generation rule kept by the remote store
type Schedule struct {
	ID       ID           `json:"id"`
	Asset    string       `json:"asset"`
	Language string       `json:"language"`
	Days     EncodedList  `json:"days"`
	Times    EncodedList  `json:"times"`
	Mode     ScheduleMode `json:"mode,omitempty"`
	Impacts  EncodedList  `json:"impacts,omitempty"`
	IsActive bool         `json:"is_active"`
}

// IsCalendar reports whether the schedule follows the economic calendar instead of a ticker
func (s Schedule) IsCalendar() bool {
	return s.Asset == CalendarAsset
}

// DisplayName returns the asset ticker or the calendar label
func (s Schedule) DisplayName() string {
	if s.IsCalendar() {
		return "Economic Calendar"
	}
	return s.Asset
}

// Details renders days and times with the timezone label, e.g. "Mon, Wed • 08:00, 12:00 CET"
func (s Schedule) Details(tzLabel string) string {
	res := strings.Join(s.Days, ", ") + " • " + strings.Join(s.Times, ", ")
	if tzLabel != "" {
		res += " " + tzLabel
	}
	return res
}

// CreateScheduleRequest is the payload of a schedule creation
type CreateScheduleRequest struct {
	Asset    string       `json:"asset"`
	Language string       `json:"language"`
	Days     []string     `json:"days"`
	Times    []string     `json:"times"`
	Mode     ScheduleMode `json:"mode"`
	Impacts  []string     `json:"impacts"`
}
