// SPDX-License-Identifier: AGPL-3.0-or-later
package filegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"
)

// Outcome is the result of a patch operation.
type Outcome int

const (
	// OutcomePatched means the file was rewritten.
	OutcomePatched Outcome = iota
	// OutcomeNoChange means the transform left the text as it was.
	OutcomeNoChange
	// OutcomeMissing means the file does not exist.
	OutcomeMissing
	// OutcomeInvalidJSON means the file could not be parsed as JSON.
	OutcomeInvalidJSON
	// OutcomeFailed means reading or writing the file failed; the error says why.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePatched:
		return "patched"
	case OutcomeNoChange:
		return "no-change"
	case OutcomeMissing:
		return "missing"
	case OutcomeInvalidJSON:
		return "invalid-json"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// TransformFunc maps the current text of a file to its next text. Returning
// changed == false leaves the file alone. A transform must be idempotent: it
// is responsible for detecting that its edit is already present.
type TransformFunc func(prev string) (next string, changed bool)

// PatchText applies transform to the current content of an existing file.
// A missing file is not an error: patching host files is best effort, so the
// miss is noted and OutcomeMissing returned.
func (w *Writer) PatchText(path string, transform TransformFunc) (Outcome, error) {
	info, ok, err := exists(path)
	if err != nil {
		return OutcomeFailed, err
	}
	if !ok {
		w.report.Notef("%s not found; nothing was patched.", w.report.Rel(path))
		return OutcomeMissing, nil
	}

	prev, err := os.ReadFile(path)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("reading %s: %w", path, err)
	}

	next, changed := transform(string(prev))
	if !changed || next == string(prev) {
		w.log.Debug("patch: no change", zap.String("path", path))
		return OutcomeNoChange, nil
	}

	if err := AtomicWrite(path, []byte(next), info.Mode().Perm()); err != nil {
		return OutcomeFailed, fmt.Errorf("patching %s: %w", path, err)
	}
	w.log.Debug("patched", zap.String("path", path))
	w.report.Modify(path)
	return OutcomePatched, nil
}

// JSONPatchFunc receives the parsed document and returns the next document,
// or nil when no change is needed. New values must be allocated from arena.
type JSONPatchFunc func(doc *fastjson.Value, arena *fastjson.Arena) *fastjson.Value

// PatchJSON parses path as JSON, applies patch, and writes the result with
// two-space indentation and a trailing newline. Object key order and the raw
// text of untouched values are preserved. Malformed JSON is never repaired:
// it is noted and reported as OutcomeInvalidJSON.
func (w *Writer) PatchJSON(path string, patch JSONPatchFunc) (Outcome, error) {
	invalid := false
	outcome, err := w.PatchText(path, func(prev string) (string, bool) {
		var p fastjson.Parser
		doc, err := p.Parse(prev)
		if err != nil {
			w.log.Debug("patch: invalid json", zap.String("path", path), zap.Error(err))
			invalid = true
			return "", false
		}

		var arena fastjson.Arena
		next := patch(doc, &arena)
		if next == nil {
			return "", false
		}

		return formatJSON(next), true
	})
	if err != nil {
		return outcome, err
	}
	if invalid {
		w.report.Notef("%s is not valid JSON and was left unchanged.", w.report.Rel(path))
		return OutcomeInvalidJSON, nil
	}
	return outcome, nil
}

// formatJSON writes v with two-space indentation and a trailing newline,
// keeping object keys in document order. Strings go through encoding/json:
// fastjson quotes control characters in a form JSON does not accept.
func formatJSON(v *fastjson.Value) string {
	var buf bytes.Buffer
	writeJSON(&buf, v, "")
	buf.WriteByte('\n')
	return buf.String()
}

func writeJSON(buf *bytes.Buffer, v *fastjson.Value, indent string) {
	inner := indent + "  "
	switch v.Type() {
	case fastjson.TypeObject:
		o, _ := v.Object()
		if o.Len() == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteString("{\n")
		i := 0
		o.Visit(func(key []byte, item *fastjson.Value) {
			if i > 0 {
				buf.WriteString(",\n")
			}
			i++
			buf.WriteString(inner)
			writeJSONString(buf, string(key))
			buf.WriteString(": ")
			writeJSON(buf, item, inner)
		})
		buf.WriteString("\n" + indent + "}")
	case fastjson.TypeArray:
		items, _ := v.Array()
		if len(items) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteString("[\n")
		for i, item := range items {
			if i > 0 {
				buf.WriteString(",\n")
			}
			buf.WriteString(inner)
			writeJSON(buf, item, inner)
		}
		buf.WriteString("\n" + indent + "]")
	case fastjson.TypeString:
		s, _ := v.StringBytes()
		writeJSONString(buf, string(s))
	default:
		// Numbers keep their original text; true, false and null are literal.
		buf.Write(v.MarshalTo(nil))
	}
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // a string always encodes
	buf.Truncate(buf.Len() - 1)
}

// PrependUnique returns a JSONPatchFunc that makes sure the array under field
// contains value, inserting it at the front when absent. A missing or
// non-array field becomes a one-element array. Documents that are not objects
// are left alone.
func PrependUnique(field, value string) JSONPatchFunc {
	return func(doc *fastjson.Value, arena *fastjson.Arena) *fastjson.Value {
		if doc.Type() != fastjson.TypeObject {
			return nil
		}

		var items []*fastjson.Value
		if cur := doc.Get(field); cur != nil && cur.Type() == fastjson.TypeArray {
			items, _ = cur.Array()
		}
		for _, item := range items {
			if item.Type() != fastjson.TypeString {
				continue
			}
			if s, err := item.StringBytes(); err == nil && string(s) == value {
				return nil
			}
		}

		next := arena.NewArray()
		next.SetArrayItem(0, arena.NewString(value))
		for i, item := range items {
			next.SetArrayItem(i+1, item)
		}
		doc.Set(field, next)
		return doc
	}
}
