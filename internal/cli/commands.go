package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/storage"
)

func newListCommand(root *RootFlags) *cobra.Command {
	flags := ListFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List publications",
		Example: `  dashboard list --filter status~Draft --order-by name:DESC
  dashboard list --page 2 --limit 25 -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(flags.Output); err != nil {
				return err
			}
			params, err := flags.ToParameters()
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), root, func(ctx context.Context, app *App) error {
				page, err := app.Dashboard.List(ctx, params)
				if err != nil {
					return err
				}
				return PrintPage(cmd.OutOrStdout(), page, flags.Output)
			})
		},
	}

	cmd.Flags().IntVar(&flags.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&flags.Limit, "limit", 0, "Items per page (default from config)")
	cmd.Flags().StringArrayVarP(&flags.Filters, "filter", "f", nil, "Filter as field=value (exact) or field~value (contains); repeatable")
	cmd.Flags().StringArrayVar(&flags.OrderBy, "order-by", nil, "Sort as field[:ASC|DESC]; repeatable, earlier wins")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", FormatTable, "Output format: table, json or yaml")
	return cmd
}

func newGetCommand(root *RootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one publication",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(output); err != nil {
				return err
			}
			return withApp(cmd.Context(), root, func(ctx context.Context, app *App) error {
				pub, err := app.Dashboard.Publication(ctx, args[0])
				if err != nil {
					return err
				}
				return PrintPublication(cmd.OutOrStdout(), pub, output)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", FormatTable, "Output format: table, json or yaml")
	return cmd
}

func newRunsCommand(root *RootFlags) *cobra.Command {
	var (
		filters storage.FetchRunFilters
		output  string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent requests to the editions API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(output); err != nil {
				return err
			}
			return withApp(cmd.Context(), root, func(ctx context.Context, app *App) error {
				runs, err := app.Store.ListFetchRuns(filters)
				if err != nil {
					return err
				}
				return PrintRuns(cmd.OutOrStdout(), runs, output)
			})
		},
	}

	cmd.Flags().IntVar(&filters.Limit, "limit", storage.DefaultListLimit, "Number of runs to show")
	cmd.Flags().StringVar(&filters.Kind, "kind", "", "Only runs of this kind (list, detail)")
	cmd.Flags().StringVar(&filters.Status, "status", "", "Only runs with this status (running, completed, failed, discarded)")
	cmd.Flags().StringVarP(&output, "output", "o", FormatTable, "Output format: table, json or yaml")
	return cmd
}

// withApp builds the App for a one-shot command and closes it afterwards.
func withApp(ctx context.Context, root *RootFlags, fn func(context.Context, *App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := NewApp(ctx, root.LoadConfig(), "cli")
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Close(closeCtx)
	}()
	return fn(ctx, app)
}
