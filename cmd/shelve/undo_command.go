package main

import (
	"github.com/spf13/cobra"

	"shelve/internal/api"
	"shelve/internal/movelog"
	"shelve/internal/organizer"
	"shelve/internal/restore"
)

type undoResult struct {
	restore.Report
	Remaining []organizer.FileInfo `json:"remaining,omitempty"`
	Error     string               `json:"error,omitempty"`
	ErrorKind string               `json:"error_kind,omitempty"`
}

func newUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo [id|#n]",
		Short: "Undo the newest organize run, or a chosen one",
		Long: "Move the files of an organize run back where they came from.\n" +
			"Without an argument the newest run is undone. Pass a record ID or '#n'\n" +
			"for the n-th entry of 'shelve history'.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				var (
					report restore.Report
					err    error
				)
				if len(args) == 0 {
					report, err = svc.UndoLatest(cmd.Context())
				} else {
					var id string
					id, err = svc.ResolveRecordRef(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					report, err = svc.UndoSpecific(cmd.Context(), id)
				}
				return printUndoReport(cmd, ctx, svc, report, err)
			})
		},
	}
}

func printUndoReport(cmd *cobra.Command, ctx *commandContext, svc *api.Service, report restore.Report, undoErr error) error {
	if undoErr != nil && report.Outcome == "" {
		return undoErr
	}

	var remaining []organizer.FileInfo
	if report.Folder != "" {
		remaining, _ = svc.ListFiles(report.Folder)
	}

	if ctx.JSONMode() {
		result := undoResult{Report: report, Remaining: remaining}
		if undoErr != nil {
			result.Error = undoErr.Error()
			result.ErrorKind = movelog.KindOf(undoErr)
		}
		if err := writeJSON(cmd, result); err != nil {
			return err
		}
		return undoErr
	}

	out := cmd.OutOrStdout()
	switch report.Outcome {
	case restore.OutcomeNothingToUndo:
		printStatus(out, statusInfo, "Nothing to undo: no move records found")
		return nil
	case restore.OutcomeRestored:
		printStatus(out, statusOK, "Restored %s to %s", pluralFiles(len(report.Restored)), report.Folder)
	case restore.OutcomePartial:
		printStatus(out, statusError, "Restored %s before stopping; record %s kept so undo can be retried",
			pluralFiles(len(report.Restored)), report.RecordID)
	}
	if n := len(report.Skipped); n > 0 {
		printStatus(out, statusWarn, "Skipped %s no longer in their category folders", pluralFiles(n))
	}
	if report.Folder != "" && remaining != nil {
		printFileList(out, report.Folder, remaining)
	}
	return undoErr
}
