// Command shelve sorts the top-level files of a folder into category
// subfolders by extension and can undo any earlier run.
//
//	shelve ls ~/Downloads
//	shelve organize ~/Downloads --dry-run
//	shelve organize ~/Downloads
//	shelve history
//	shelve show '#1'
//	shelve undo            # newest run
//	shelve undo '#3'       # third newest run
//
// Every run is saved as a move record under paths.logs_dir. Pass --json for
// machine-readable output.
package main
