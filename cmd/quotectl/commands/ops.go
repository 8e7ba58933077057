package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	appcommands "travelquote/internal/app/commands"
	"travelquote/internal/app/dto"
	quotehandlers "travelquote/internal/app/handlers/quotes"
	"travelquote/internal/app/queries"
)

func newSweepCmd(root *rootOptions) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire every pending quote past its validity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return err
				}
				now = parsed
			}
			app, err := root.app(cmd)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(cmd.Context()))
			res, err := appcommands.Dispatch[quotehandlers.SweepExpiredCommand, quotehandlers.SweepResult](cmd.Context(), app.Commands, quotehandlers.SweepExpiredCommand{Now: now})
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "evaluate expiry at this RFC 3339 instant instead of now")
	return cmd
}

func newStatsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print quote counts per status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := root.app(cmd)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(cmd.Context()))
			stats, err := queries.Ask[quotehandlers.StatisticsQuery, dto.Statistics](cmd.Context(), app.Queries, quotehandlers.StatisticsQuery{})
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		},
	}
}

func newProvidersCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List configured providers with secrets redacted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := root.app(cmd)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(cmd.Context()))
			list, err := queries.Ask[quotehandlers.ListProvidersQuery, []dto.Provider](cmd.Context(), app.Queries, quotehandlers.ListProvidersQuery{})
			if err != nil {
				return err
			}
			return printJSON(cmd, list)
		},
	}
}
