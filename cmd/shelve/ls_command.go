package main

import (
	"github.com/spf13/cobra"

	"shelve/internal/api"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "ls <dir>",
		Aliases: []string{"list"},
		Short:   "List a folder's top-level files and their categories",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				files, err := svc.ListFiles(args[0])
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, files)
				}
				printFileList(cmd.OutOrStdout(), args[0], files)
				return nil
			})
		},
	}
}
