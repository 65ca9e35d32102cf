package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// PaperIDNote is the notes key carrying the paper id on orders, payments
// and payment links.
const PaperIDNote = "paperId"

// Notes is the provider's free-form key/value metadata. Empty notes are
// sent as [] rather than {}, and values set by other integrations may be
// numbers, so both shapes are accepted and every value is kept as a string.
type Notes map[string]string

func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("notes: %w", err)
		}
		*n = Notes{}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("notes: %w", err)
	}
	out := make(Notes, len(raw))
	for k, v := range raw {
		out[k] = scalarString(v)
	}
	*n = out
	return nil
}

// Get returns the trimmed value for key, or "" when absent.
func (n Notes) Get(key string) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n[key])
}

// FlexID is an identifier that clients send either as a JSON string or a
// JSON number.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return fmt.Errorf("id must be a string or a number")
	}
	*id = FlexID(strings.TrimSpace(scalarString(trimmed)))
	return nil
}

func (id FlexID) String() string { return string(id) }

func scalarString(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var num json.Number
	if err := json.Unmarshal(v, &num); err == nil {
		return num.String()
	}
	if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return ""
	}
	return string(bytes.TrimSpace(v))
}
