package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"projdocs/internal/app"
)

func newClassificationCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "classification",
		Short: "Browse the classification catalog",
	}
	c.AddCommand(newOptionsCmd(), newFolderCmd())
	return c
}

func newOptionsCmd() *cobra.Command {
	var (
		level               int
		parent, grandparent string
	)
	c := &cobra.Command{
		Use:   "options",
		Short: "List selectable entries at a level",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if level < 1 || level > 3 {
				return fmt.Errorf("level must be 1, 2 or 3")
			}
			return withApp(cmd, func(_ context.Context, a *app.App) error {
				for _, o := range a.Catalog.OptionsFor(level, parent, grandparent) {
					fmt.Fprintln(cmd.OutOrStdout(), o.Text)
				}
				return nil
			})
		},
	}
	c.Flags().IntVar(&level, "level", 1, "level (1-3)")
	c.Flags().StringVar(&parent, "parent", "", "selected parent code")
	c.Flags().StringVar(&grandparent, "grandparent", "", "selected grandparent code")
	return c
}

func newFolderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "folder CODE",
		Short: "Print the folder path a code files into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ context.Context, a *app.App) error {
				p, ok := a.Catalog.FolderPathFor(args[0])
				if !ok {
					return fmt.Errorf("unknown classification code %q", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
}
