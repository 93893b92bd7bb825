package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"projdocs/internal/app"
	"projdocs/internal/config"
	"projdocs/internal/logging"
	"projdocs/internal/store"
)

var (
	backendFlag string
	catalogFlag string
	actorFlag   string
	verbose     bool
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "projdocsctl",
		Short:         "Administer the project document repository",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&backendFlag, "backend", "", "store backend (memory, remote); overrides STORE_BACKEND")
	root.PersistentFlags().StringVar(&catalogFlag, "catalog", "", "classification asset path or URL; overrides CLASSIFICATION_PATH")
	root.PersistentFlags().StringVar(&actorFlag, "actor", "", "user recorded as editor of writes")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newProvisionCmd(), newStandardsCmd(), newDocumentsCmd(), newClassificationCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func loadConfig() *config.AppConfig {
	cfg := config.Load()
	if backendFlag != "" {
		cfg.Store.Backend = backendFlag
	}
	if catalogFlag != "" {
		cfg.Classification.SiteURL = ""
		cfg.Classification.Path = catalogFlag
	}
	return cfg
}

// withApp builds the repository for one command invocation.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if actorFlag != "" {
		ctx = store.WithActor(ctx, actorFlag)
	}
	cfg := loadConfig()
	log := logging.New("error", io.Discard)
	if verbose {
		log = logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	}
	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
