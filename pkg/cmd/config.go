package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/anivanovic/codestats/pkg/chart"
	"github.com/anivanovic/codestats/pkg/docstore"
	"github.com/anivanovic/codestats/pkg/readme"
	"github.com/anivanovic/codestats/pkg/statserr"
	"github.com/anivanovic/codestats/pkg/wakatime"
)

type (
	AppConfig struct {
		Log struct {
			Level  string `mapstructure:"level"`
			Format string `mapstructure:"format"`
		} `mapstructure:"log"`

		WakaTime struct {
			APIKey  string `mapstructure:"api_key"`
			BaseURL string `mapstructure:"base_url"`
			Range   string `mapstructure:"range"`
			Section string `mapstructure:"section"`
		} `mapstructure:"wakatime"`

		GitHub struct {
			Token string `mapstructure:"token"`
			// Repository is "owner/name", as GITHUB_REPOSITORY in Actions.
			Repository     string `mapstructure:"repository"`
			BaseURL        string `mapstructure:"base_url"`
			Owner          string `mapstructure:"owner"`
			Repo           string `mapstructure:"repo"`
			Path           string `mapstructure:"path"`
			Branch         string `mapstructure:"branch"`
			CommitMessage  string `mapstructure:"commit_message"`
			CommitterName  string `mapstructure:"committer_name"`
			CommitterEmail string `mapstructure:"committer_email"`
		} `mapstructure:"github"`

		Chart struct {
			Width     int    `mapstructure:"width"`
			Threshold int    `mapstructure:"threshold"`
			Marker    string `mapstructure:"marker"`
			Filled    string `mapstructure:"filled"`
			Empty     string `mapstructure:"empty"`
		} `mapstructure:"chart"`

		Retry struct {
			Attempts uint          `mapstructure:"attempts"`
			Delay    time.Duration `mapstructure:"delay"`
		} `mapstructure:"retry"`

		CfgPath string `mapstructure:"-"`
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "color")

	v.SetDefault("wakatime.base_url", wakatime.DefaultBaseURL)
	v.SetDefault("wakatime.range", wakatime.DefaultRange)
	v.SetDefault("wakatime.section", wakatime.DefaultSection)

	v.SetDefault("github.base_url", "")
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("github.path", docstore.DefaultPath)
	v.SetDefault("github.branch", "")
	v.SetDefault("github.commit_message", docstore.DefaultMessage)
	v.SetDefault("github.committer_name", "")
	v.SetDefault("github.committer_email", "")

	v.SetDefault("chart.width", chart.DefaultWidth)
	v.SetDefault("chart.threshold", chart.DefaultThreshold)
	v.SetDefault("chart.marker", readme.DefaultMarker)
	v.SetDefault("chart.filled", chart.DefaultStyle.Filled)
	v.SetDefault("chart.empty", chart.DefaultStyle.Empty)

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", time.Second)
}

// bindEnv registers the CODESTATS_ variables and the names used by
// earlier versions of the workflow.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("codestats")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("wakatime.api_key", "CODESTATS_WAKATIME_API_KEY", "WAKATIME_API_KEY")
	_ = v.BindEnv("github.token", "CODESTATS_GITHUB_TOKEN", "PAT_KEY", "GITHUB_TOKEN")
	_ = v.BindEnv("github.repository", "CODESTATS_GITHUB_REPOSITORY", "GITHUB_REPOSITORY")
}

func loadConfig(v *viper.Viper, cfgPath string) (*AppConfig, error) {
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
		v.SetConfigName(".codestats")
	}
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var cfgNotFound viper.ConfigFileNotFoundError

		// only a missing default config file is fine
		isNotFound := errors.As(err, &cfgNotFound)
		if !isNotFound || cfgPath != "" {
			return nil, fmt.Errorf("read config: %v: %w", err, statserr.ErrInvalidConfig)
		}
	}

	cfg := &AppConfig{CfgPath: cfgPath}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %v: %w", err, statserr.ErrInvalidConfig)
	}

	if cfg.GitHub.Owner == "" && cfg.GitHub.Repo == "" && cfg.GitHub.Repository != "" {
		cfg.GitHub.Owner, cfg.GitHub.Repo, _ = strings.Cut(cfg.GitHub.Repository, "/")
	}

	return cfg, nil
}

// Validate reports every problem at once. The document store settings are
// checked only when withStore is set.
func (c *AppConfig) Validate(withStore bool) error {
	var err error
	invalid := func(format string, a ...any) {
		err = multierr.Append(err, fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), statserr.ErrInvalidConfig))
	}

	if c.WakaTime.APIKey == "" {
		invalid("wakatime.api_key is required")
	}
	if c.Chart.Width <= 0 {
		invalid("chart.width must be positive, got %d", c.Chart.Width)
	}
	if c.Chart.Threshold < 0 || c.Chart.Threshold > 100 {
		invalid("chart.threshold must be within [0, 100], got %d", c.Chart.Threshold)
	}
	if c.Chart.Filled == "" || c.Chart.Empty == "" {
		invalid("chart.filled and chart.empty must not be empty")
	}
	if c.Retry.Attempts == 0 {
		invalid("retry.attempts must be at least 1")
	}
	if c.Retry.Delay < 0 {
		invalid("retry.delay must not be negative")
	}

	if !withStore {
		return err
	}
	if c.Chart.Marker == "" {
		invalid("chart.marker is required")
	}
	if c.GitHub.Token == "" {
		invalid("github.token is required")
	}
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		invalid("github repository is required, set github.owner and github.repo or github.repository")
	}

	return err
}
