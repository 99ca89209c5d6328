// Package organizer sorts the top-level files of a folder into category
// subfolders and records every move so the run can be undone.
//
// Organize classifies each regular file, creates the category folder, moves
// the file into it, and saves a movelog.Record to the configured store. Plan
// performs the same classification without touching the filesystem, and
// ListFiles reports what a folder currently holds.
//
// Failures abort the run. Moves that already happened stay in place and are
// saved as a partial record so they remain undoable.
package organizer
