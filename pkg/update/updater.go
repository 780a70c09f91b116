package update

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anivanovic/codestats/pkg/chart"
	"github.com/anivanovic/codestats/pkg/docstore"
	"github.com/anivanovic/codestats/pkg/readme"
	"github.com/anivanovic/codestats/pkg/statserr"
)

type (
	StatsProvider interface {
		Stats(ctx context.Context) ([]chart.Entry, error)
	}

	DocumentStore interface {
		Get(ctx context.Context) (docstore.Document, error)
		Update(ctx context.Context, doc docstore.Document, content string) (string, error)
	}

	Config struct {
		Marker string
		DryRun bool

		// Attempts bounds the read-splice-write cycles when the document
		// changes underneath us or the store is unavailable.
		Attempts uint
		Delay    time.Duration
	}

	Result struct {
		RunID string
		Rows  int
		// Changed reports whether the rendered section differs from the
		// document. Written is false for dry runs and unchanged documents.
		Changed bool
		Written bool
		Commit  string
		// WriteUncertain is set when a write failed with an outage and the
		// document was up to date afterwards, so that write may have landed.
		WriteUncertain bool
	}

	Updater struct {
		provider StatsProvider
		store    DocumentStore
		renderer *chart.Renderer
		cfg      Config
		logger   *zap.Logger
	}
)

func New(provider StatsProvider, store DocumentStore, renderer *chart.Renderer, cfg Config, logger *zap.Logger) *Updater {
	if cfg.Marker == "" {
		cfg.Marker = readme.DefaultMarker
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	return &Updater{
		provider: provider,
		store:    store,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Render fetches the stats and returns the chart block.
func (u *Updater) Render(ctx context.Context) (string, int, error) {
	entries, err := u.provider.Stats(ctx)
	if err != nil {
		return "", 0, err
	}
	rows, err := u.renderer.Rows(entries)
	if err != nil {
		return "", 0, err
	}
	u.logger.Debug("rendered chart",
		zap.Int("entries", len(entries)),
		zap.Int("rows", len(rows)))

	return u.renderer.Format(rows), len(rows), nil
}

// Run renders the chart and commits it into the document. Nothing is
// written when the section is already up to date.
func (u *Updater) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	log := u.logger.With(zap.String("run", res.RunID))

	block, rows, err := u.Render(ctx)
	if err != nil {
		return res, err
	}
	res.Rows = rows

	writeFailed := false
	err = retry.Do(
		func() error {
			return u.write(ctx, log, block, &res, &writeFailed)
		},
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, statserr.ErrConflict) || errors.Is(err, statserr.ErrUpstreamUnavailable)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("document update attempt failed",
				zap.Uint("attempt", n+1),
				zap.Uint("attempts", u.cfg.Attempts),
				zap.Error(err))
		}),
		retry.LastErrorOnly(true),
		retry.Attempts(u.cfg.Attempts),
		retry.Delay(u.cfg.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
	)
	if err != nil {
		return res, err
	}

	return res, nil
}

func (u *Updater) write(ctx context.Context, log *zap.Logger, block string, res *Result, writeFailed *bool) error {
	doc, err := u.store.Get(ctx)
	if err != nil {
		return err
	}
	if old, err := readme.Section(doc.Content, u.cfg.Marker); err == nil {
		log.Debug("current section", zap.Int("size", len(old)), zap.String("sha", doc.SHA))
	}

	content, err := readme.Splice(doc.Content, u.cfg.Marker, block)
	if err != nil {
		return err
	}
	if content == doc.Content {
		res.Changed = false
		if *writeFailed {
			res.WriteUncertain = true
			log.Warn("stats section up to date after a failed write, the failed write may have been committed")
			return nil
		}
		log.Info("stats section already up to date")
		return nil
	}
	res.Changed = true

	if u.cfg.DryRun {
		log.Info("dry run, skipping document write")
		return nil
	}

	commit, err := u.store.Update(ctx, doc, content)
	if err != nil {
		if errors.Is(err, statserr.ErrUpstreamUnavailable) {
			*writeFailed = true
		}
		return err
	}
	res.Written = true
	res.Commit = commit
	log.Info("stats section updated", zap.String("commit", commit))

	return nil
}
