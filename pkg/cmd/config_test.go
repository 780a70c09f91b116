package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/anivanovic/codestats/pkg/statserr"
)

var configEnv = []string{
	"CODESTATS_WAKATIME_API_KEY", "WAKATIME_API_KEY",
	"CODESTATS_GITHUB_TOKEN", "PAT_KEY", "GITHUB_TOKEN",
	"CODESTATS_GITHUB_REPOSITORY", "GITHUB_REPOSITORY",
	"CODESTATS_GITHUB_OWNER", "CODESTATS_GITHUB_REPO",
	"CODESTATS_GITHUB_BASE_URL", "CODESTATS_WAKATIME_BASE_URL",
	"CODESTATS_CHART_WIDTH", "CODESTATS_RETRY_DELAY",
}

// clearEnv hides variables set by the environment running the tests, an
// empty value counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnv {
		t.Setenv(name, "")
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := loadConfig(newViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "https://wakatime.com/api/v1", cfg.WakaTime.BaseURL)
	assert.Equal(t, "all_time", cfg.WakaTime.Range)
	assert.Equal(t, "languages", cfg.WakaTime.Section)
	assert.Equal(t, "README.md", cfg.GitHub.Path)
	assert.Equal(t, 10, cfg.Chart.Width)
	assert.Equal(t, 5, cfg.Chart.Threshold)
	assert.Equal(t, "<!-- Stats -->", cfg.Chart.Marker)
	assert.EqualValues(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, time.Second, cfg.Retry.Delay)
}

func TestLoadConfig_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("WAKATIME_API_KEY", "waka")
	t.Setenv("PAT_KEY", "pat")
	t.Setenv("GITHUB_REPOSITORY", "octo/profile")
	t.Setenv("CODESTATS_CHART_WIDTH", "20")
	t.Setenv("CODESTATS_RETRY_DELAY", "250ms")

	cfg, err := loadConfig(newViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "waka", cfg.WakaTime.APIKey)
	assert.Equal(t, "pat", cfg.GitHub.Token)
	assert.Equal(t, "octo", cfg.GitHub.Owner)
	assert.Equal(t, "profile", cfg.GitHub.Repo)
	assert.Equal(t, 20, cfg.Chart.Width)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
	assert.NoError(t, cfg.Validate(true))
}

func TestLoadConfig_PrefixedEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("CODESTATS_GITHUB_TOKEN", "new")
	t.Setenv("PAT_KEY", "old")

	cfg, err := loadConfig(newViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "new", cfg.GitHub.Token)
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "codestats.yaml")
	data := []byte(`
wakatime:
  api_key: from-file
  range: last_30_days
github:
  owner: octo
  repo: octo
  branch: main
chart:
  width: 25
  filled: "#"
  empty: "-"
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := loadConfig(newViper(), path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.CfgPath)
	assert.Equal(t, "from-file", cfg.WakaTime.APIKey)
	assert.Equal(t, "last_30_days", cfg.WakaTime.Range)
	assert.Equal(t, "main", cfg.GitHub.Branch)
	assert.Equal(t, 25, cfg.Chart.Width)
	assert.Equal(t, "#", cfg.Chart.Filled)
	assert.Equal(t, "-", cfg.Chart.Empty)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := loadConfig(newViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, statserr.ErrInvalidConfig)
}

func TestAppConfig_Validate(t *testing.T) {
	clearEnv(t)
	cfg, err := loadConfig(newViper(), "")
	require.NoError(t, err)

	err = cfg.Validate(false)
	assert.ErrorIs(t, err, statserr.ErrInvalidConfig)
	assert.Len(t, multierr.Errors(err), 1)

	err = cfg.Validate(true)
	assert.Len(t, multierr.Errors(err), 3)

	cfg.WakaTime.APIKey = "k"
	cfg.GitHub.Token = "t"
	cfg.GitHub.Owner, cfg.GitHub.Repo = "o", "r"
	assert.NoError(t, cfg.Validate(true))

	cfg.Chart.Width = 0
	cfg.Chart.Threshold = 101
	cfg.Retry.Attempts = 0
	cfg.Chart.Marker = ""
	err = cfg.Validate(true)
	assert.ErrorIs(t, err, statserr.ErrInvalidConfig)
	assert.Len(t, multierr.Errors(err), 4)
}
