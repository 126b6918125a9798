package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SubjectRow is a single marksheet row recognised by the row parser.
type SubjectRow struct {
	Code    string `json:"code,omitempty"` // optional 3-digit subject code
	Subject string `json:"subject"`
	Numbers []int  `json:"numbers"`
}

// LastNumber returns the rightmost number on the row, which marksheets
// print in the "total" column.
func (r SubjectRow) LastNumber() (int, bool) {
	if len(r.Numbers) == 0 {
		return 0, false
	}
	return r.Numbers[len(r.Numbers)-1], true
}

// SubjectMark pairs a subject name with its mark.
type SubjectMark struct {
	Name string `json:"name"`
	Mark int    `json:"mark"`
}

// SubjectMarks maps subject names to marks and remembers the order in
// which subjects were first inserted. Setting an existing subject replaces
// its mark but keeps its original position.
//
// The zero value is an empty mapping ready to use.
type SubjectMarks struct {
	index   map[string]int
	entries []SubjectMark
}

// NewSubjectMarks builds a mapping from the given entries, in order.
func NewSubjectMarks(entries ...SubjectMark) *SubjectMarks {
	m := &SubjectMarks{}
	for _, e := range entries {
		m.Set(e.Name, e.Mark)
	}
	return m
}

// Set inserts or replaces the mark for name (last write wins).
func (m *SubjectMarks) Set(name string, mark int) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[name]; ok {
		m.entries[i].Mark = mark
		return
	}
	m.index[name] = len(m.entries)
	m.entries = append(m.entries, SubjectMark{Name: name, Mark: mark})
}

// Get returns the mark recorded for name.
func (m *SubjectMarks) Get(name string) (int, bool) {
	if m == nil || m.index == nil {
		return 0, false
	}
	i, ok := m.index[name]
	if !ok {
		return 0, false
	}
	return m.entries[i].Mark, true
}

// Len returns the number of distinct subjects.
func (m *SubjectMarks) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of the subjects in insertion order.
func (m *SubjectMarks) Entries() []SubjectMark {
	if m == nil {
		return []SubjectMark{}
	}
	out := make([]SubjectMark, len(m.entries))
	copy(out, m.entries)
	return out
}

// Names returns the subject names in insertion order.
func (m *SubjectMarks) Names() []string {
	names := make([]string, 0, m.Len())
	for _, e := range m.Entries() {
		names = append(names, e.Name)
	}
	return names
}

// ToMap returns the subjects as a plain (unordered) map.
func (m *SubjectMarks) ToMap() map[string]int {
	out := make(map[string]int, m.Len())
	for _, e := range m.Entries() {
		out[e.Name] = e.Mark
	}
	return out
}

// MarshalJSON encodes the mapping as a JSON object with keys in insertion order.
func (m *SubjectMarks) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Mark))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
// Marks may be numbers or numeric strings; anything else counts as 0, the
// same leniency manual entry forms get.
func (m *SubjectMarks) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = SubjectMarks{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("subject marks: expected object, got %v", tok)
	}

	out := SubjectMarks{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("subject marks: unexpected key %v", keyTok)
		}
		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("subject marks: value for %q: %w", name, err)
		}
		out.Set(name, lenientMark(raw))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

func lenientMark(v interface{}) int {
	switch x := v.(type) {
	case json.Number:
		if n, err := strconv.Atoi(x.String()); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return int(f)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n
		}
	}
	return 0
}

// TraceLine captures what the extractor did with each input line.
type TraceLine struct {
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	Result  string `json:"result"` // "row", "noise", "short", "skipped", "empty"
	Subject string `json:"subject,omitempty"`
	Mark    *int   `json:"mark,omitempty"`
}

// Trace results.
const (
	TraceRow     = "row"
	TraceNoise   = "noise"
	TraceShort   = "short"
	TraceSkipped = "skipped"
	TraceEmpty   = "empty"
)
