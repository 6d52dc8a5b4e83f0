package parse

import (
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftscribe/internal/models"
)

// Violation is one structural problem at a specific field path, phrased so
// it can be handed directly to the repair oracle.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string { return v.Path + ": " + v.Message }

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindNullableNumber // null means "not yet performed", not "absent"
	kindArray
)

// fieldSpec is one entry in the declarative draft shape.
type fieldSpec struct {
	key      string
	kind     fieldKind
	required bool
	nonEmpty bool     // strings: non-blank; arrays: at least one element
	enum     []string // closed value domain, strings only
	min, max float64
	bounded  bool
	format   func(string) string // extra format check, returns message or ""
}

func dateFormat(s string) string {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "must be a YYYY-MM-DD date"
	}
	return ""
}

func timestampFormat(s string) string {
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return "must be an RFC 3339 timestamp"
	}
	return ""
}

var workoutFields = []fieldSpec{
	{key: "name", kind: kindString, required: true, nonEmpty: true},
	{key: "notes", kind: kindString, required: true},
	{key: "date", kind: kindString, required: true, nonEmpty: true, format: dateFormat},
	{key: "lastModifiedTime", kind: kindString, required: true, nonEmpty: true, format: timestampFormat},
	{key: "blocks", kind: kindArray, required: true, nonEmpty: true},
}

var blockFields = []fieldSpec{
	{key: "label", kind: kindString},
	{key: "notes", kind: kindString, required: true},
	{key: "declaredSets", kind: kindNumber},
	{key: "exercises", kind: kindArray, required: true, nonEmpty: true},
}

var exerciseFields = []fieldSpec{
	{key: "exerciseName", kind: kindString, required: true, nonEmpty: true},
	{key: "exerciseId", kind: kindString},
	{key: "exerciseSlug", kind: kindString},
	{key: "orderInBlock", kind: kindNumber, required: true},
	{key: "prescription", kind: kindString},
	{key: "notes", kind: kindString, required: true},
	{key: "sets", kind: kindArray, required: true, nonEmpty: true},
}

var setFields = []fieldSpec{
	{key: "setNumber", kind: kindNumber, required: true, min: 1, max: 10000, bounded: true},
	{key: "weightUnit", kind: kindString, required: true, enum: []string{models.UnitLbs, models.UnitKg}},
	{key: "reps", kind: kindNullableNumber, required: true},
	{key: "weight", kind: kindNullableNumber, required: true},
	{key: "duration", kind: kindNullableNumber, required: true},
	{key: "rpe", kind: kindNullableNumber, min: 1, max: 10, bounded: true},
	{key: "notes", kind: kindString, required: true},
}

// ValidateDocument structurally checks a draft document against the
// declarative shape above: field types, enum domains, required-array
// non-emptiness, and numeric fields that arrived as strings. It performs
// no oracle calls and no I/O.
func ValidateDocument(doc Document) []Violation {
	var out []Violation
	out = append(out, checkFields("", map[string]any(doc), workoutFields)...)

	for bi, block := range doc.Blocks() {
		bPath := fmt.Sprintf("blocks[%d]", bi)
		if block == nil {
			out = append(out, Violation{Path: bPath, Message: "must be an object"})
			continue
		}
		out = append(out, checkFields(bPath, block, blockFields)...)

		for ei, ex := range exercisesOf(block) {
			ePath := fmt.Sprintf("%s.exercises[%d]", bPath, ei)
			if ex == nil {
				out = append(out, Violation{Path: ePath, Message: "must be an object"})
				continue
			}
			out = append(out, checkFields(ePath, ex, exerciseFields)...)

			for si, set := range setsOf(ex) {
				sPath := fmt.Sprintf("%s.sets[%d]", ePath, si)
				if set == nil {
					out = append(out, Violation{Path: sPath, Message: "must be an object"})
					continue
				}
				out = append(out, checkFields(sPath, set, setFields)...)
			}
			out = append(out, checkSetNumbering(ePath, setsOf(ex))...)
		}
	}
	return out
}

func checkFields(path string, obj map[string]any, specs []fieldSpec) []Violation {
	var out []Violation
	for _, spec := range specs {
		p := spec.key
		if path != "" {
			p = path + "." + spec.key
		}
		v, present := obj[spec.key]

		if !present || (v == nil && spec.kind != kindNullableNumber) {
			if spec.required {
				out = append(out, Violation{Path: p, Message: "required field is missing"})
			}
			continue
		}

		switch spec.kind {
		case kindString:
			s, ok := v.(string)
			if !ok {
				out = append(out, Violation{Path: p, Message: fmt.Sprintf("expected string, got %T", v)})
				continue
			}
			if spec.nonEmpty && strings.TrimSpace(s) == "" {
				out = append(out, Violation{Path: p, Message: "must not be empty"})
				continue
			}
			if len(spec.enum) > 0 && !contains(spec.enum, s) {
				out = append(out, Violation{Path: p, Message: fmt.Sprintf("must be one of %v, got %q", spec.enum, s)})
				continue
			}
			if spec.format != nil && strings.TrimSpace(s) != "" {
				if msg := spec.format(s); msg != "" {
					out = append(out, Violation{Path: p, Message: msg})
				}
			}

		case kindNumber, kindNullableNumber:
			if v == nil {
				// Nullable numbers accept explicit null.
				continue
			}
			n, ok := asNumber(v)
			if !ok {
				if _, isStr := v.(string); isStr {
					out = append(out, Violation{Path: p, Message: "expected number, got string"})
				} else {
					out = append(out, Violation{Path: p, Message: fmt.Sprintf("expected number, got %T", v)})
				}
				continue
			}
			if spec.bounded && (n < spec.min || n > spec.max) {
				out = append(out, Violation{Path: p, Message: fmt.Sprintf("must be between %g and %g", spec.min, spec.max)})
			}

		case kindArray:
			arr, ok := v.([]any)
			if !ok {
				out = append(out, Violation{Path: p, Message: fmt.Sprintf("expected array, got %T", v)})
				continue
			}
			if spec.nonEmpty && len(arr) == 0 {
				out = append(out, Violation{Path: p, Message: "must not be empty"})
			}
		}
	}
	return out
}

// checkSetNumbering enforces that setNumber runs 1..N with no gaps or
// duplicates within one exercise.
func checkSetNumbering(exPath string, sets []map[string]any) []Violation {
	if len(sets) == 0 {
		return nil
	}
	for i, set := range sets {
		if set == nil {
			return nil // already reported as a type violation
		}
		n, ok := asNumber(set["setNumber"])
		if !ok {
			return nil // already reported
		}
		if int(n) != i+1 {
			return []Violation{{
				Path:    exPath + ".sets",
				Message: fmt.Sprintf("setNumber must be sequential from 1; position %d has %g", i, n),
			}}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
