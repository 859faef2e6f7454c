// Package snapshot models the Todoist Bridge cache document (data.json) and
// provides its load/save/backup lifecycle.
//
// The document is a JSON object with two collections the cleanup pipeline
// cares about: todoistTasksData.tasks (the cached task records) and
// fileMetadata (per-note bookkeeping of which task IDs reference each note).
// Everything else in the document is opaque and preserved verbatim across a
// load/save round trip. Missing collections are tolerated deliberately: a
// document without todoistTasksData stays without it after a cleanup pass.
package snapshot

import (
	"bytes"
	"encoding/json"
	"strings"
)

// marshalNoEscape marshals v without HTML escaping, so raw fields carrying
// <, > or & pass through byte-identical. Plain json.Marshal would rewrite
// them to < escapes even inside json.RawMessage values; every nested
// marshal step has to opt out, not just the top-level encoder in Save.
func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Task is a single cached to-do record. The full JSON object is retained so
// fields the cleanup tool doesn't understand survive a rewrite untouched.
type Task struct {
	fields map[string]json.RawMessage
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	t.fields = fields
	return nil
}

func (t Task) MarshalJSON() ([]byte, error) {
	if t.fields == nil {
		return []byte("{}"), nil
	}
	return marshalNoEscape(t.fields)
}

// ID returns the task identifier normalized to a string. Upstream Todoist IDs
// are numeric but the cache has stored them both as JSON numbers and as
// strings over time, so both forms are accepted. Returns "" when the record
// has no id field.
func (t Task) ID() string {
	return rawToString(t.fields["id"])
}

// NotePath returns the vault-relative path of the note backing this task,
// or "" when the task is not linked to a note.
func (t Task) NotePath() string {
	raw, ok := t.fields["path"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// FileMeta is the per-note bookkeeping record: which task IDs currently
// reference the note, and a cached count of them. Unknown fields are
// preserved verbatim, and the todoistTasks/todoistCount keys are only
// written back when the entry is actually modified.
type FileMeta struct {
	fields map[string]json.RawMessage
}

func (m *FileMeta) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	m.fields = fields
	return nil
}

func (m FileMeta) MarshalJSON() ([]byte, error) {
	if m.fields == nil {
		return []byte("{}"), nil
	}
	return marshalNoEscape(m.fields)
}

// TaskIDs returns the identifiers referencing this note, normalized to
// strings. A missing or null todoistTasks key yields nil.
func (m FileMeta) TaskIDs() []string {
	raw, ok := m.fields["todoistTasks"]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, rawToString(item))
	}
	return ids
}

// SetTaskIDs replaces the todoistTasks list and syncs todoistCount to its
// length, keeping the two fields consistent.
func (m *FileMeta) SetTaskIDs(ids []string) {
	if m.fields == nil {
		m.fields = make(map[string]json.RawMessage)
	}
	if ids == nil {
		ids = []string{}
	}
	rawIDs, _ := marshalNoEscape(ids)
	rawCount, _ := json.Marshal(len(ids))
	m.fields["todoistTasks"] = rawIDs
	m.fields["todoistCount"] = rawCount
}

// Count returns the cached todoistCount value, 0 if absent.
func (m FileMeta) Count() int {
	raw, ok := m.fields["todoistCount"]
	if !ok {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return n
}

// tasksData is the todoistTasksData sub-object. Only the tasks array is
// interpreted; sibling keys ride along untouched.
type tasksData struct {
	fields map[string]json.RawMessage
	tasks  []Task
}

func (d *tasksData) unmarshal(data []byte) error {
	if err := json.Unmarshal(data, &d.fields); err != nil {
		return err
	}
	if raw, ok := d.fields["tasks"]; ok {
		if err := json.Unmarshal(raw, &d.tasks); err != nil {
			return err
		}
	}
	return nil
}

func (d *tasksData) marshal() (json.RawMessage, error) {
	fields := make(map[string]json.RawMessage, len(d.fields)+1)
	for k, v := range d.fields {
		fields[k] = v
	}
	rawTasks, err := marshalNoEscape(d.tasks)
	if err != nil {
		return nil, err
	}
	fields["tasks"] = rawTasks
	return marshalNoEscape(fields)
}

// Snapshot is the parsed cache document. Root-level keys other than
// todoistTasksData and fileMetadata are opaque and survive a rewrite as-is.
type Snapshot struct {
	fields    map[string]json.RawMessage
	tasksData *tasksData
	fileMeta  map[string]*FileMeta
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	s.fields = fields
	s.tasksData = nil
	s.fileMeta = nil

	if raw, ok := fields["todoistTasksData"]; ok && !isJSONNull(raw) {
		td := &tasksData{}
		if err := td.unmarshal(raw); err != nil {
			return err
		}
		s.tasksData = td
	}
	if raw, ok := fields["fileMetadata"]; ok && !isJSONNull(raw) {
		if err := json.Unmarshal(raw, &s.fileMeta); err != nil {
			return err
		}
	}
	return nil
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(s.fields))
	for k, v := range s.fields {
		fields[k] = v
	}
	if s.tasksData != nil {
		raw, err := s.tasksData.marshal()
		if err != nil {
			return nil, err
		}
		fields["todoistTasksData"] = raw
	}
	if s.fileMeta != nil {
		raw, err := marshalNoEscape(s.fileMeta)
		if err != nil {
			return nil, err
		}
		fields["fileMetadata"] = raw
	}
	return marshalNoEscape(fields)
}

// Tasks returns the cached task records, or nil when the document has no
// todoistTasksData section.
func (s *Snapshot) Tasks() []Task {
	if s.tasksData == nil {
		return nil
	}
	return s.tasksData.tasks
}

// SetTasks replaces the task collection. A no-op when the document has no
// todoistTasksData section: the cleanup never invents structure the cache
// didn't already have.
func (s *Snapshot) SetTasks(tasks []Task) {
	if s.tasksData == nil {
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}
	s.tasksData.tasks = tasks
}

// Metadata returns the live fileMetadata map keyed by note path, or nil when
// the document has no fileMetadata section. Mutations to the returned entries
// are reflected on save.
func (s *Snapshot) Metadata() map[string]*FileMeta {
	return s.fileMeta
}

// DeleteMetadata removes the metadata entry for a note path.
func (s *Snapshot) DeleteMetadata(notePath string) {
	delete(s.fileMeta, notePath)
}

// rawToString normalizes a JSON scalar to its string form: quoted strings are
// unquoted, numbers keep their literal text. Used for task identifiers, which
// appear in the cache both ways.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return strings.TrimSpace(string(raw))
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
