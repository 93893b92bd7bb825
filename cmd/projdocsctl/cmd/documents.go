package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"projdocs/internal/app"
)

func newDocumentsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "documents",
		Short: "Inspect project documents",
	}
	c.AddCommand(newDocumentsListCmd(), newVersionsCmd())
	return c
}

func newDocumentsListCmd() *cobra.Command {
	var project, folder string
	c := &cobra.Command{
		Use:   "list",
		Short: "List a project's documents or a folder's contents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if folder != "" {
					docs, err := a.Documents.ListFolderContents(ctx, folder)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), docs)
				}
				docs, err := a.Documents.ListDocuments(ctx, project)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), docs)
			})
		},
	}
	c.Flags().StringVar(&project, "project", "", "project identifier")
	c.Flags().StringVar(&folder, "folder", "", "folder path")
	c.MarkFlagsOneRequired("project", "folder")
	c.MarkFlagsMutuallyExclusive("project", "folder")
	return c
}

func newVersionsCmd() *cobra.Command {
	var id int
	c := &cobra.Command{
		Use:   "versions",
		Short: "List a document's versions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				v, err := a.Documents.GetDocumentVersions(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), v)
			})
		},
	}
	c.Flags().IntVar(&id, "id", 0, "document id")
	_ = c.MarkFlagRequired("id")
	return c
}
