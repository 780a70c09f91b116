package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewChartCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print stats chart",
		Long:  "Fetch WakaTime stats and print the rendered bar chart without touching the README",
		Args:  cobra.NoArgs,
		RunE:  app.NewCmdRun(false, runChart),
	}
	return cmd
}

func runChart(ctx context.Context, appCtx AppContext, _ []string) error {
	provider, err := appCtx.statsProvider()
	if err != nil {
		return err
	}

	block, rows, err := appCtx.updater(provider, nil, false).Render(ctx)
	if err != nil {
		return err
	}
	if rows == 0 {
		appCtx.log.Info("no entries above threshold", zap.Int("threshold", appCtx.cfg.Chart.Threshold))
		return nil
	}

	appCtx.printer.Info(block + "\n")
	return nil
}
