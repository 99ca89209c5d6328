package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shelve/internal/api"
	"shelve/internal/category"
)

type categoriesResult struct {
	Categories []category.Category `json:"categories"`
	Fallback   string              `json:"fallback"`
	Overlaps   []category.Overlap  `json:"overlaps"`
}

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the extension table used to classify files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				return printCategories(cmd, ctx, svc.Categories())
			})
		},
	}
}

func printCategories(cmd *cobra.Command, ctx *commandContext, table category.Table) error {
	overlaps := table.Overlaps()

	if ctx.JSONMode() {
		if overlaps == nil {
			overlaps = []category.Overlap{}
		}
		return writeJSON(cmd, categoriesResult{
			Categories: table.Categories(),
			Fallback:   category.Fallback,
			Overlaps:   overlaps,
		})
	}

	out := cmd.OutOrStdout()
	cats := table.Categories()
	rows := make([][]string, 0, len(cats)+1)
	for _, cat := range cats {
		rows = append(rows, []string{cat.Name, strings.Join(cat.Extensions, " ")})
	}
	rows = append(rows, []string{category.Fallback, "(anything else)"})
	fmt.Fprintln(out, renderTable([]string{"Category", "Extensions"}, rows, nil))
	for _, o := range overlaps {
		printStatus(out, statusWarn, "%s is listed by %s; files go to %s",
			o.Extension, strings.Join(o.Categories, ", "), o.Winner())
	}
	return nil
}
