package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shelve/internal/api"
	"shelve/internal/movelog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "history",
		Aliases: []string{"records"},
		Short:   "List saved organize runs, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				summaries, err := svc.ListRecordSummaries(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if summaries == nil {
						summaries = []movelog.Summary{}
					}
					return writeJSON(cmd, summaries)
				}
				out := cmd.OutOrStdout()
				if len(summaries) == 0 {
					fmt.Fprintln(out, "No move records")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Run", "Record", "Age"},
					historyRows(summaries),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func historyRows(summaries []movelog.Summary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for i, s := range summaries {
		rows = append(rows, []string{
			"#" + strconv.Itoa(i+1),
			s.Label,
			s.ID,
			formatAge(s.Timestamp),
		})
	}
	return rows
}
