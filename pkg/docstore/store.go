// Package docstore reads and conditionally writes a file through the
// GitHub contents API.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/anivanovic/codestats/pkg/statserr"
)

const (
	DefaultPath    = "README.md"
	DefaultMessage = "Update coding stats"

	serviceName = "github"
)

// Document is a file's content together with its blob SHA, the version
// token required to overwrite it.
type Document struct {
	Content string
	SHA     string
}

type Config struct {
	Owner  string
	Repo   string
	Path   string
	Branch string

	Message        string
	CommitterName  string
	CommitterEmail string
}

type Store struct {
	client *github.Client
	cfg    Config
	logger *zap.Logger
}

// NewClient returns a GitHub client authenticating with token. An empty
// baseURL keeps the public API endpoint.
func NewClient(ctx context.Context, token, baseURL string) (*github.Client, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, src))
	if baseURL == "" {
		return client, nil
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("github base url: %v: %w", err, statserr.ErrInvalidConfig)
	}
	client.BaseURL = u
	return client, nil
}

func New(client *github.Client, cfg Config, logger *zap.Logger) *Store {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Message == "" {
		cfg.Message = DefaultMessage
	}
	return &Store{client: client, cfg: cfg, logger: logger}
}

func (s *Store) Location() string {
	loc := fmt.Sprintf("%s/%s/%s", s.cfg.Owner, s.cfg.Repo, s.cfg.Path)
	if s.cfg.Branch != "" {
		loc += "@" + s.cfg.Branch
	}
	return loc
}

func (s *Store) Get(ctx context.Context) (Document, error) {
	var opts *github.RepositoryContentGetOptions
	if s.cfg.Branch != "" {
		opts = &github.RepositoryContentGetOptions{Ref: s.cfg.Branch}
	}

	file, _, resp, err := s.client.Repositories.GetContents(ctx, s.cfg.Owner, s.cfg.Repo, s.cfg.Path, opts)
	if err != nil {
		return Document{}, s.wrapErr("get contents", resp, err)
	}
	if file == nil {
		return Document{}, fmt.Errorf("%s is a directory: %w", s.Location(), statserr.ErrMalformedData)
	}

	content, err := file.GetContent()
	if err != nil {
		return Document{}, fmt.Errorf("decode %s: %v: %w", s.Location(), err, statserr.ErrMalformedData)
	}
	s.logger.Debug("fetched document",
		zap.String("location", s.Location()),
		zap.String("sha", file.GetSHA()),
		zap.Int("size", len(content)))

	return Document{Content: content, SHA: file.GetSHA()}, nil
}

// Update replaces the file content if doc.SHA is still the current blob
// SHA and returns the new commit SHA. A stale SHA fails with
// statserr.ErrConflict and leaves the file untouched.
func (s *Store) Update(ctx context.Context, doc Document, content string) (string, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(s.cfg.Message),
		Content: []byte(content),
		SHA:     github.String(doc.SHA),
	}
	if s.cfg.Branch != "" {
		opts.Branch = github.String(s.cfg.Branch)
	}
	if s.cfg.CommitterName != "" && s.cfg.CommitterEmail != "" {
		opts.Committer = &github.CommitAuthor{
			Name:  github.String(s.cfg.CommitterName),
			Email: github.String(s.cfg.CommitterEmail),
		}
	}

	res, resp, err := s.client.Repositories.UpdateFile(ctx, s.cfg.Owner, s.cfg.Repo, s.cfg.Path, opts)
	if err != nil {
		return "", s.wrapErr("update file", resp, err)
	}

	return res.Commit.GetSHA(), nil
}

func (s *Store) wrapErr(op string, resp *github.Response, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if resp == nil || resp.Response == nil {
		return fmt.Errorf("%s %s: %v: %w", op, s.Location(), err, statserr.ErrUpstreamUnavailable)
	}

	msg := err.Error()
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		msg = ghErr.Message
	}
	s.logger.Warn("GitHub response with error status code",
		zap.String("op", op),
		zap.Int("statusCode", resp.StatusCode),
		zap.String("location", s.Location()))

	return fmt.Errorf("%s %s: %w", op, s.Location(), statserr.FromStatus(serviceName, resp.StatusCode, msg))
}
