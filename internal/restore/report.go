package restore

import (
	"path/filepath"

	"shelve/internal/movelog"
)

// Outcome summarizes an undo attempt.
type Outcome string

const (
	// OutcomeRestored means every entry was restored or skipped and the
	// record was deleted.
	OutcomeRestored Outcome = "restored"
	// OutcomePartial means an entry failed; the record was kept.
	OutcomePartial Outcome = "partial"
	// OutcomeNothingToUndo means the store held no records.
	OutcomeNothingToUndo Outcome = "nothing_to_undo"
)

// EntryFailure is the entry that stopped an undo and its error.
type EntryFailure struct {
	Entry movelog.Entry `json:"entry"`
	Err   error         `json:"-"`
	// Message mirrors Err for JSON output.
	Message string `json:"error"`
}

// Report describes the result of one undo.
type Report struct {
	RecordID      string          `json:"record_id,omitempty"`
	Folder        string          `json:"folder,omitempty"`
	Outcome       Outcome         `json:"outcome"`
	Restored      []movelog.Entry `json:"restored"`
	Skipped       []movelog.Entry `json:"skipped"`
	Failed        *EntryFailure   `json:"failed,omitempty"`
	RecordDeleted bool            `json:"record_deleted"`
}

// PreviewLine is one file of a record as shown before undoing it. Category is
// the name of the folder the file was moved into.
type PreviewLine struct {
	Filename string `json:"filename"`
	Category string `json:"category"`
	NewPath  string `json:"new_path"`
	// Present reports whether NewPath still exists; missing files are
	// skipped by Undo.
	Present bool `json:"present"`
}

func previewLine(e movelog.Entry, present bool) PreviewLine {
	return PreviewLine{
		Filename: filepath.Base(e.OriginalPath),
		Category: filepath.Base(filepath.Dir(e.NewPath)),
		NewPath:  e.NewPath,
		Present:  present,
	}
}
