package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"shelve/internal/organizer"
)

func fileRows(files []organizer.FileInfo) [][]string {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{
			f.Name,
			f.Category,
			humanize.IBytes(uint64(max(f.Size, 0))),
			formatAge(f.ModTime),
		})
	}
	return rows
}

// printFileList renders the top-level files of a folder.
func printFileList(w io.Writer, folder string, files []organizer.FileInfo) {
	if len(files) == 0 {
		fmt.Fprintf(w, "No files at the top level of %s\n", folder)
		return
	}
	fmt.Fprintf(w, "%s (%s)\n", folder, pluralFiles(len(files)))
	fmt.Fprintln(w, renderTable(
		[]string{"Name", "Category", "Size", "Modified"},
		fileRows(files),
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
}

func formatAge(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return humanize.Time(ts)
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return strconv.Itoa(n) + " files"
}
