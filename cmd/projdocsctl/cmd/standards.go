package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"projdocs/internal/app"
	"projdocs/internal/model"
	"projdocs/internal/service"
)

func newStandardsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "standards",
		Short: "Inspect and promote standards",
	}
	c.AddCommand(newStandardsListCmd(), newNextVersionCmd(), newStandardsUploadCmd(), newPromoteCmd())
	return c
}

func newStandardsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalogued standards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				out, err := a.Standards.ListExistingStandards(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}

func newNextVersionCmd() *cobra.Command {
	var client string
	c := &cobra.Command{
		Use:   "next-version",
		Short: "Print the next version label for a client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				v, err := a.Standards.GetNextVersion(ctx, client)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}
	c.Flags().StringVar(&client, "client", "", "client name")
	_ = c.MarkFlagRequired("client")
	return c
}

func newStandardsUploadCmd() *cobra.Command {
	var (
		client, version, project string
		meta                     model.StandardMetadata
	)
	c := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a native file into the standards library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if version == "" {
					if version, err = a.Standards.GetNextVersion(ctx, client); err != nil {
						return err
					}
				}
				std, err := a.Standards.UploadNativeFile(ctx,
					service.UploadFile{Name: filepath.Base(args[0]), Size: info.Size(), Content: f},
					version, client, project, meta)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), std)
			})
		},
	}
	c.Flags().StringVar(&client, "client", "", "client name")
	c.Flags().StringVar(&version, "version", "", "version label (default: next for the client)")
	c.Flags().StringVar(&project, "project", "", "originating project number")
	c.Flags().StringVar(&meta.Code, "code", "", "classification code")
	c.Flags().StringVar(&meta.Title, "title", "", "classification title")
	c.Flags().StringVar(&meta.Description, "description", "", "description")
	_ = c.MarkFlagRequired("client")
	return c
}

func newPromoteCmd() *cobra.Command {
	var (
		project   string
		templates bool
		item      model.PromotionItem
	)
	c := &cobra.Command{
		Use:   "promote FILE...",
		Short: "Copy standards of one client version into a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]model.PromotionItem, len(args))
			for i, name := range args {
				items[i] = item
				items[i].FileName = name
				items[i].IncludeTemplates = templates
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				results, err := a.Standards.AddStandardsToProjectWithProgress(ctx, items, project,
					func(fraction float64, done []model.PromotionResult) {
						last := done[len(done)-1]
						fmt.Fprintf(cmd.ErrOrStderr(), "%3.0f%% %s\n", fraction*100, last.TargetPath)
					})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), results)
			})
		},
	}
	c.Flags().StringVar(&project, "project", "", "target project number")
	c.Flags().StringVar(&item.Client, "client", "", "client name")
	c.Flags().StringVar(&item.Version, "version", "", "version label")
	c.Flags().StringVar(&item.Code, "code", "", "classification code of the files")
	c.Flags().BoolVar(&templates, "templates", false, "also copy templates carrying the code")
	_ = c.MarkFlagRequired("project")
	_ = c.MarkFlagRequired("client")
	_ = c.MarkFlagRequired("version")
	return c
}
