package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque, stable record identifier. The remote store may send it as a number or a string.
type ID string

// UnmarshalJSON accepts both JSON numbers and strings
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers, everything else as strings
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String returns the raw id
func (id ID) String() string {
	return string(id)
}

// EncodedList is an ordered list of strings that the remote store keeps as encoded text,
// i.e. a JSON string holding a JSON array. A plain JSON array is accepted as well.
// Text that does not decode yields an empty list.
type EncodedList []string

// UnmarshalJSON decodes either `"[\"a\",\"b\"]"` or `["a","b"]`
func (l *EncodedList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = EncodedList{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("decode encoded list: %w", err)
		}
		*l = decodeListText(text)
		return nil
	default:
		var vals []string
		if err := json.Unmarshal(data, &vals); err != nil {
			return fmt.Errorf("decode list: %w", err)
		}
		*l = vals
		return nil
	}
}

func decodeListText(text string) EncodedList {
	var vals []string
	if err := json.Unmarshal([]byte(text), &vals); err != nil {
		return EncodedList{}
	}
	return vals
}
