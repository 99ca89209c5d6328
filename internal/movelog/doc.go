// Package movelog persists move records: the list of files one organize run
// moved, keyed by destination, so the run can be undone later.
//
// Two Store backends exist. The JSON backend writes one
// organizer_log_<id>.json file per record and is the default. The SQLite
// backend keeps every record in a single records.db. Both hand out IDs of the
// form YYYY-MM-DD_HH-MM-SS, adding a -NNN suffix when a second already has a
// record, and both list newest first.
package movelog
