// Package restore undoes organize runs by replaying a move record in reverse.
//
// Entries are restored in record order. Destinations that no longer exist are
// skipped. A fully replayed record is deleted from the store; a run that stops
// on an error keeps the record so the undo can be retried, and the retry skips
// whatever already went back.
package restore
