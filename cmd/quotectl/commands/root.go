package commands

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"travelquote/internal/bootstrap"
	"travelquote/internal/infra/config"
	"travelquote/internal/infra/obs"
)

type rootOptions struct {
	providersFile string
	verbose       bool
}

// NewRootCmd builds the quotectl command tree. Connection settings come from
// the same environment variables as the server.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Operate the travel insurance quote engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.providersFile, "providers-file", "", "provider YAML file (overrides PROVIDERS_FILE)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine activity to stderr")

	root.AddCommand(newPriceCmd())
	root.AddCommand(newSweepCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	root.AddCommand(newProvidersCmd(opts))
	return root
}

func (o *rootOptions) app(cmd *cobra.Command) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.providersFile != "" {
		cfg.ProvidersFile = o.providersFile
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if o.verbose {
		logger = obs.NewLogger(cfg.Env)
	}
	app, err := bootstrap.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}
	// Only the throwaway in-memory store is seeded; persistent storage is
	// left to the server.
	if cfg.StorageMode == config.StorageMemory {
		if err := app.SeedFixtures(cmd.Context()); err != nil {
			_ = app.Close(cmd.Context())
			return nil, err
		}
	}
	return app, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
