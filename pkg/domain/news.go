package domain

import (
	"net/url"
	"strings"
)

// Source tells how a news item was produced
type Source string

const (
	SourceManual    Source = "manual"
	SourceScheduled Source = "scheduled"
)

// Field is an editable news item field
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
)

// ParseField converts a raw field name to Field, ok is false for anything not editable
func ParseField(s string) (Field, bool) {
	switch Field(s) {
	case FieldTitle, FieldDescription:
		return Field(s), true
	}
	return "", false
}

// NewsItem is a single generated news record as the remote store returns it
type NewsItem struct {
	ID          ID          `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Assets      EncodedList `json:"assets"`
	Published   bool        `json:"published"`
	Source      Source      `json:"source"`
}

// Editable reports whether title and description may be changed from the console.
// Published items are frozen.
func (n NewsItem) Editable() bool {
	return !n.Published
}

// SetField sets an editable field, other fields are ignored
func (n *NewsItem) SetField(field Field, value string) {
	switch field {
	case FieldTitle:
		n.Title = value
	case FieldDescription:
		n.Description = value
	}
}

// DisplayTitle returns the title or a placeholder for untitled items
func (n NewsItem) DisplayTitle() string {
	if strings.TrimSpace(n.Title) == "" {
		return "No Title"
	}
	return n.Title
}

// ItemSource returns the source with manual as the default
func (n NewsItem) ItemSource() Source {
	if n.Source == "" {
		return SourceManual
	}
	return n.Source
}

// AssetLabel joins asset tickers for display
func (n NewsItem) AssetLabel() string {
	return strings.Join(n.Assets, ", ")
}

// NewsFilter narrows the news collection read
type NewsFilter struct {
	Asset  string
	Source Source
}

// Query returns url query parameters for the filter, empty values are omitted
func (f NewsFilter) Query() url.Values {
	q := url.Values{}
	if f.Asset != "" {
		q.Set("asset", f.Asset)
	}
	if f.Source != "" {
		q.Set("source", string(f.Source))
	}
	return q
}

// GenerateRequest asks the generation webhook for a fresh news item
type GenerateRequest struct {
	Asset    string `json:"asset"`
	Language string `json:"language"`
}

// GenerateResult is the webhook answer, Error is set when generation failed
type GenerateResult struct {
	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}
