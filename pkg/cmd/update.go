package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

type updateFlags struct {
	dryRun bool
}

func NewUpdateCommand(app *App) *cobra.Command {
	f := &updateFlags{}
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update README stats section",
		Long: "Fetch WakaTime stats, render them as a bar chart and commit the chart " +
			"between the two stats markers of the repository README",
		Args: cobra.NoArgs,
	}
	cmd.RunE = app.NewCmdRun(true, func(ctx context.Context, appCtx AppContext, args []string) error {
		return runUpdate(ctx, appCtx, f)
	})

	flags := cmd.Flags()
	flags.BoolVar(&f.dryRun, "dry-run", false, "Render and splice the README without committing it")
	flags.String("owner", "", "Repository owner")
	flags.String("repo", "", "Repository name")
	flags.String("path", "", "Path of the document in the repository")
	flags.String("branch", "", "Branch to read and commit to, repository default when empty")
	app.bindFlag("github.owner", flags.Lookup("owner"))
	app.bindFlag("github.repo", flags.Lookup("repo"))
	app.bindFlag("github.path", flags.Lookup("path"))
	app.bindFlag("github.branch", flags.Lookup("branch"))

	return cmd
}

func runUpdate(ctx context.Context, appCtx AppContext, f *updateFlags) error {
	provider, err := appCtx.statsProvider()
	if err != nil {
		return err
	}
	store, err := appCtx.documentStore(ctx)
	if err != nil {
		return err
	}

	res, err := appCtx.updater(provider, store, f.dryRun).Run(ctx)
	if err != nil {
		return err
	}

	switch {
	case res.WriteUncertain:
		appCtx.printer.Infof("%s is up to date, an earlier write that reported an error was likely committed\n", store.Location())
	case !res.Changed:
		appCtx.printer.Infof("%s is up to date\n", store.Location())
	case !res.Written:
		appCtx.printer.Infof("%s would be updated with %d rows\n", store.Location(), res.Rows)
	default:
		appCtx.printer.Infof("%s updated with %d rows in commit %s\n", store.Location(), res.Rows, res.Commit)
	}
	return nil
}
