package movelog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// IDLayout is the time layout of a record ID without its tiebreaker suffix.
const IDLayout = "2006-01-02_15-04-05"

// maxSequence bounds the -NNN tiebreaker.
const maxSequence = 999

// Entry is one moved file.
type Entry struct {
	NewPath      string `json:"new_path"`
	OriginalPath string `json:"original_path"`
}

// Record is the full set of moves made by one organize run. Entries keep
// insertion order and NewPath is unique among them.
type Record struct {
	ID        string
	RunID     string
	Folder    string
	Timestamp time.Time
	Entries   []Entry
}

// Add appends a move. A repeated newPath replaces the earlier original path
// in place.
func (r *Record) Add(newPath, originalPath string) {
	for i := range r.Entries {
		if r.Entries[i].NewPath == newPath {
			r.Entries[i].OriginalPath = originalPath
			return
		}
	}
	r.Entries = append(r.Entries, Entry{NewPath: newPath, OriginalPath: originalPath})
}

// Len returns the number of entries.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Entries)
}

// FormatID renders the record ID for ts. seq zero yields the bare timestamp;
// higher values append a three digit suffix.
func FormatID(ts time.Time, seq int) string {
	base := ts.Local().Format(IDLayout)
	if seq <= 0 {
		return base
	}
	return fmt.Sprintf("%s-%03d", base, seq)
}

// ParseID splits an ID into its timestamp, in local time, and sequence.
func ParseID(id string) (time.Time, int, error) {
	base, seq := id, 0
	if len(id) > len(IDLayout) {
		base = id[:len(IDLayout)]
		suffix := id[len(IDLayout):]
		if len(suffix) != 4 || suffix[0] != '-' {
			return time.Time{}, 0, fmt.Errorf("invalid record id %q", id)
		}
		n, err := strconv.Atoi(suffix[1:])
		if err != nil || n <= 0 {
			return time.Time{}, 0, fmt.Errorf("invalid record id %q", id)
		}
		seq = n
	}
	ts, err := time.ParseInLocation(IDLayout, base, time.Local)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid record id %q: %w", id, err)
	}
	return ts, seq, nil
}

// ValidID reports whether id has the record ID shape.
func ValidID(id string) bool {
	_, _, err := ParseID(id)
	return err == nil
}

type recordJSON struct {
	ID         string     `json:"id,omitempty"`
	RunID      string     `json:"run_id,omitempty"`
	Folder     string     `json:"folder"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	MovedFiles movedFiles `json:"moved_files"`
}

// MarshalJSON writes moved_files as a JSON object keyed by new path, in
// entry order.
func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		ID:         r.ID,
		RunID:      r.RunID,
		Folder:     r.Folder,
		MovedFiles: movedFiles(r.Entries),
	}
	if !r.Timestamp.IsZero() {
		ts := r.Timestamp
		out.Timestamp = &ts
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts both the current layout and the legacy one that only
// carries folder and moved_files. Legacy records leave ID and Timestamp zero.
func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if strings.TrimSpace(in.Folder) == "" {
		return errors.New("record has no folder")
	}
	*r = Record{
		ID:      in.ID,
		RunID:   in.RunID,
		Folder:  in.Folder,
		Entries: []Entry(in.MovedFiles),
	}
	if in.Timestamp != nil {
		r.Timestamp = *in.Timestamp
	}
	return nil
}

// movedFiles is an ordered JSON object of new path to original path.
type movedFiles []Entry

func (m movedFiles) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.NewPath)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.OriginalPath)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *movedFiles) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("moved_files: expected object, got %v", tok)
	}
	var rec Record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("moved_files: unexpected key %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("moved_files[%q]: %w", key, err)
		}
		rec.Add(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("moved_files: trailing data")
	}
	*m = rec.Entries
	return nil
}

// Summary is the listing view of a record.
type Summary struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id,omitempty"`
	Folder     string    `json:"folder"`
	FolderName string    `json:"folder_name"`
	Timestamp  time.Time `json:"timestamp"`
	Count      int       `json:"count"`
	Label      string    `json:"label"`
}

// Summarize builds the listing view of r.
func Summarize(r *Record) Summary {
	return newSummary(r.ID, r.RunID, r.Folder, r.Timestamp, r.Len())
}

func newSummary(id, runID, folder string, ts time.Time, count int) Summary {
	name := filepath.Base(folder)
	return Summary{
		ID:         id,
		RunID:      runID,
		Folder:     folder,
		FolderName: name,
		Timestamp:  ts,
		Count:      count,
		Label:      Label(name, ts, count),
	}
}

// Label renders the history line for a record, for example
// "Downloads · 2026-10-18 14-03-22 · 3 file(s)".
func Label(folderName string, ts time.Time, count int) string {
	return fmt.Sprintf("%s · %s · %d file(s)", folderName, ts.Local().Format("2006-01-02 15-04-05"), count)
}
