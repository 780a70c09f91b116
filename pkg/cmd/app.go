package cmd

import (
	"context"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/anivanovic/codestats/pkg/chart"
	"github.com/anivanovic/codestats/pkg/docstore"
	"github.com/anivanovic/codestats/pkg/logger"
	"github.com/anivanovic/codestats/pkg/printer"
	"github.com/anivanovic/codestats/pkg/update"
	"github.com/anivanovic/codestats/pkg/wakatime"
)

const httpTimeout = 30 * time.Second

type (
	App struct {
		v       *viper.Viper
		cfgPath string
		rootCmd *cobra.Command
		printer printer.Printer
		errOut  io.Writer
	}

	AppContext struct {
		cfg     *AppConfig
		log     *zap.Logger
		printer printer.Printer
	}
)

func NewApp(out io.Writer, errOut io.Writer) *App {
	rootCmd := cobra.Command{
		Use:           "codestats",
		Short:         "Write WakaTime coding stats into a GitHub README",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	app := &App{
		v:       viper.New(),
		rootCmd: &rootCmd,
		printer: printer.New(out, errOut),
		errOut:  errOut,
	}
	setDefaults(app.v)
	bindEnv(app.v)

	flags := rootCmd.PersistentFlags()
	flags.StringP("log-level", "l", "info", "App logging level [debug,info,warn,error,silent]")
	flags.String("log-format", "color", "Logging format [text,color,json]")
	flags.StringVar(&app.cfgPath, "config", "", "Config file location")
	flags.String("range", wakatime.DefaultRange, "WakaTime stats range [all_time,last_7_days,last_30_days,last_6_months,last_year]")
	flags.String("section", wakatime.DefaultSection, "Stats section to chart [languages,editors,operating_systems,categories,projects,machines]")
	flags.Int("width", chart.DefaultWidth, "Number of glyphs in a full bar")
	flags.Int("threshold", chart.DefaultThreshold, "Hide entries below this percentage")
	app.bindFlag("log.level", flags.Lookup("log-level"))
	app.bindFlag("log.format", flags.Lookup("log-format"))
	app.bindFlag("wakatime.range", flags.Lookup("range"))
	app.bindFlag("wakatime.section", flags.Lookup("section"))
	app.bindFlag("chart.width", flags.Lookup("width"))
	app.bindFlag("chart.threshold", flags.Lookup("threshold"))

	rootCmd.AddCommand(NewUpdateCommand(app))
	rootCmd.AddCommand(NewChartCommand(app))
	rootCmd.AddCommand(NewVersionCommand())

	return app
}

func (a *App) Execute(args []string) error {
	a.rootCmd.SetArgs(args)
	err := a.rootCmd.Execute()
	if err != nil {
		a.printer.Errorf("codestats: %v\n", err)
	}
	return err
}

func (a *App) bindFlag(key string, flag *pflag.Flag) {
	_ = a.v.BindPFlag(key, flag)
}

// NewCmdRun loads configuration and the logger once flags are parsed, then
// runs fn with a context cancelled on SIGINT and SIGTERM.
func (a *App) NewCmdRun(
	withStore bool,
	fn func(ctx context.Context, appCtx AppContext, args []string) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		cfg, err := loadConfig(a.v, a.cfgPath)
		if err != nil {
			return err
		}
		l, err := logger.New(a.errOut, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		defer func() { _ = l.Sync() }()

		if err := cfg.Validate(withStore); err != nil {
			return err
		}
		l.Debug("configuration loaded",
			logger.Secret("wakatimeKey", cfg.WakaTime.APIKey),
			logger.Secret("githubToken", cfg.GitHub.Token),
			zap.String("owner", cfg.GitHub.Owner),
			zap.String("repo", cfg.GitHub.Repo),
			zap.String("range", cfg.WakaTime.Range),
			zap.String("section", cfg.WakaTime.Section))

		appCtx := AppContext{cfg: cfg, log: l, printer: a.printer}
		if err := fn(ctx, appCtx, args); err != nil {
			l.Error("run failed", zap.Error(err))
			return err
		}
		return nil
	}
}

func (c AppContext) renderer() *chart.Renderer {
	return chart.NewRenderer(c.cfg.Chart.Width, c.cfg.Chart.Threshold, chart.Style{
		Filled: c.cfg.Chart.Filled,
		Empty:  c.cfg.Chart.Empty,
	})
}

func (c AppContext) statsProvider() (*wakatime.Client, error) {
	return wakatime.New(wakatime.Config{
		BaseURL:  c.cfg.WakaTime.BaseURL,
		APIKey:   c.cfg.WakaTime.APIKey,
		Range:    c.cfg.WakaTime.Range,
		Section:  c.cfg.WakaTime.Section,
		Attempts: c.cfg.Retry.Attempts,
		Delay:    c.cfg.Retry.Delay,
	}, &http.Client{Timeout: httpTimeout}, c.log.Named("wakatime"))
}

func (c AppContext) documentStore(ctx context.Context) (*docstore.Store, error) {
	client, err := docstore.NewClient(ctx, c.cfg.GitHub.Token, c.cfg.GitHub.BaseURL)
	if err != nil {
		return nil, err
	}
	return docstore.New(client, docstore.Config{
		Owner:          c.cfg.GitHub.Owner,
		Repo:           c.cfg.GitHub.Repo,
		Path:           c.cfg.GitHub.Path,
		Branch:         c.cfg.GitHub.Branch,
		Message:        c.cfg.GitHub.CommitMessage,
		CommitterName:  c.cfg.GitHub.CommitterName,
		CommitterEmail: c.cfg.GitHub.CommitterEmail,
	}, c.log.Named("github")), nil
}

func (c AppContext) updater(provider update.StatsProvider, store update.DocumentStore, dryRun bool) *update.Updater {
	return update.New(provider, store, c.renderer(), update.Config{
		Marker:   c.cfg.Chart.Marker,
		DryRun:   dryRun,
		Attempts: c.cfg.Retry.Attempts,
		Delay:    c.cfg.Retry.Delay,
	}, c.log.Named("update"))
}
