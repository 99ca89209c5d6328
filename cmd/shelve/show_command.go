package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelve/internal/api"
	"shelve/internal/restore"
)

type showResult struct {
	RecordID string                `json:"record_id"`
	Files    []restore.PreviewLine `json:"files"`
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|#n>",
		Short: "Show the files an organize run moved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				id, err := svc.ResolveRecordRef(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				lines, err := svc.Preview(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if lines == nil {
						lines = []restore.PreviewLine{}
					}
					return writeJSON(cmd, showResult{RecordID: id, Files: lines})
				}
				out := cmd.OutOrStdout()
				if len(lines) == 0 {
					fmt.Fprintf(out, "Record %s moved no files\n", id)
					return nil
				}
				rows := make([][]string, 0, len(lines))
				missing := 0
				for _, line := range lines {
					status := "present"
					if !line.Present {
						status = "missing"
						missing++
					}
					rows = append(rows, []string{line.Filename, line.Category, status})
				}
				caption := fmt.Sprintf("record %s: %s", id, pluralFiles(len(lines)))
				if missing > 0 {
					caption += fmt.Sprintf(", %d missing and will be skipped on undo", missing)
				}
				fmt.Fprintln(out, renderTableWithCaption([]string{"File", "Category", "Status"}, rows, nil, caption))
				return nil
			})
		},
	}
}
