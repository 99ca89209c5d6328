package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"shelve/internal/api"
	"shelve/internal/movelog"
	"shelve/internal/organizer"
)

type organizeResult struct {
	Record    *movelog.Summary     `json:"record,omitempty"`
	Remaining []organizer.FileInfo `json:"remaining"`
	Error     string               `json:"error,omitempty"`
	ErrorKind string               `json:"error_kind,omitempty"`
}

type planResult struct {
	DryRun bool             `json:"dry_run"`
	Moves  []organizer.Move `json:"moves"`
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "organize <dir>",
		Short: "Move each top-level file into a category subfolder",
		Long: "Move each top-level file of <dir> into a subfolder named after its category.\n" +
			"The run is saved as a move record so it can be undone with 'shelve undo'.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			return ctx.withService(func(svc *api.Service) error {
				if dryRun {
					return runPlan(cmd, ctx, svc, dir)
				}
				return runOrganize(cmd, ctx, svc, dir)
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the planned moves without changing anything")
	return cmd
}

func runPlan(cmd *cobra.Command, ctx *commandContext, svc *api.Service, dir string) error {
	moves, err := svc.PlanOrganize(dir)
	if err != nil {
		return err
	}
	if ctx.JSONMode() {
		return writeJSON(cmd, planResult{DryRun: true, Moves: moves})
	}
	out := cmd.OutOrStdout()
	if len(moves) == 0 {
		fmt.Fprintf(out, "Nothing to organize in %s\n", dir)
		return nil
	}
	rows := make([][]string, 0, len(moves))
	for _, mv := range moves {
		rows = append(rows, []string{filepath.Base(mv.Source), mv.Category + string(filepath.Separator)})
	}
	fmt.Fprintln(out, renderTableWithCaption(
		[]string{"File", "Destination"},
		rows,
		nil,
		fmt.Sprintf("dry run: %s would move", pluralFiles(len(moves))),
	))
	return nil
}

func runOrganize(cmd *cobra.Command, ctx *commandContext, svc *api.Service, dir string) error {
	summary, runErr := svc.Organize(cmd.Context(), dir)
	saved := summary.ID != ""

	// Refresh the listing so the caller sees what is left at the top level.
	remaining, listErr := svc.ListFiles(dir)
	if listErr != nil && runErr == nil {
		return listErr
	}

	if ctx.JSONMode() {
		result := organizeResult{Remaining: remaining}
		if saved {
			result.Record = &summary
		}
		if runErr != nil {
			result.Error = runErr.Error()
			result.ErrorKind = movelog.KindOf(runErr)
		}
		if err := writeJSON(cmd, result); err != nil {
			return err
		}
		return runErr
	}

	out := cmd.OutOrStdout()
	switch {
	case runErr != nil && saved:
		printStatus(out, statusWarn, "Stopped after moving %s; undo with: shelve undo %s", pluralFiles(summary.Count), summary.ID)
	case runErr != nil:
		return runErr
	default:
		printStatus(out, statusOK, "Organized %s in %s (record %s)", pluralFiles(summary.Count), summary.Folder, summary.ID)
	}
	if listErr == nil {
		printFileList(out, dir, remaining)
	}
	return runErr
}
