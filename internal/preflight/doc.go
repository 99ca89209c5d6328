// Package preflight checks that directories shelve touches are usable before
// any file moves.
//
// The organizer calls CheckDirectoryAccess on the target folder so that a
// permission problem surfaces as one clear error instead of a half-finished
// run. The CLI "config validate" command calls RunAll to report on the
// record store location.
package preflight
