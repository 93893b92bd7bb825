package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projdocs/internal/app"
)

func newProvisionCmd() *cobra.Command {
	var project string
	c := &cobra.Command{
		Use:   "provision",
		Short: "Create the repository libraries and their fields",
		Long:  "Creates the document, standards and templates libraries when missing and adds any missing field. With --project the project folder is ensured too.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.EnsureLibraries(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "libraries provisioned")
				if project == "" {
					return nil
				}
				folder, err := a.Documents.EnsureProjectFolder(ctx, project)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), folder)
				return nil
			})
		},
	}
	c.Flags().StringVar(&project, "project", "", "project whose folder to ensure")
	return c
}
