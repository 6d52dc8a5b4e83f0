package parse

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/claude/liftscribe/internal/models"
)

// Document is a workout draft in the raw JSON form the oracle produces.
// It stays untyped until syntax repair converges, because the whole point
// of that stage is that the document may be structurally wrong (string
// numerics, missing fields, bad enums) in ways a typed struct cannot hold.
type Document map[string]any

// Clone returns a deep copy. Stages never mutate their input document.
func (d Document) Clone() Document {
	c, _ := cloneValue(map[string]any(d)).(map[string]any)
	return Document(c)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Blocks returns the document's block objects. Entries that are not
// objects come back as nil so callers can report them as violations.
func (d Document) Blocks() []map[string]any {
	arr, _ := d["blocks"].([]any)
	out := make([]map[string]any, len(arr))
	for i, v := range arr {
		out[i], _ = v.(map[string]any)
	}
	return out
}

func exercisesOf(block map[string]any) []map[string]any {
	arr, _ := block["exercises"].([]any)
	out := make([]map[string]any, len(arr))
	for i, v := range arr {
		out[i], _ = v.(map[string]any)
	}
	return out
}

func setsOf(exercise map[string]any) []map[string]any {
	arr, _ := exercise["sets"].([]any)
	out := make([]map[string]any, len(arr))
	for i, v := range arr {
		out[i], _ = v.(map[string]any)
	}
	return out
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// asNumber accepts the numeric types JSON decoding can produce.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// JSON renders the document for an oracle prompt.
func (d Document) JSON() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return "{}"
	}
	return buf.String()
}

// Decode strictly converts a schema-valid document into the typed draft.
func (d Document) Decode() (models.WorkoutDraft, error) {
	var draft models.WorkoutDraft
	raw, err := json.Marshal(d)
	if err != nil {
		return draft, fmt.Errorf("encoding draft document: %w", err)
	}
	if err := json.Unmarshal(raw, &draft); err != nil {
		return draft, fmt.Errorf("decoding draft document: %w", err)
	}
	return draft, nil
}

// FromDraft converts a typed draft back to document form.
func FromDraft(draft models.WorkoutDraft) (Document, error) {
	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}
	return doc, nil
}
