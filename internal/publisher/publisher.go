// Package publisher drives post operations: it reads post files, converts
// them, calls the blog and records the outcome.
package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/easyblogger/internal/blogger"
	"git.home.luguber.info/inful/easyblogger/internal/journal"
	"git.home.luguber.info/inful/easyblogger/internal/logfields"
	"git.home.luguber.info/inful/easyblogger/internal/metrics"
	"git.home.luguber.info/inful/easyblogger/internal/postfile"
)

// Blog is the remote side of post operations.
type Blog interface {
	InsertPost(ctx context.Context, in blogger.PostInput) (*blogger.Post, error)
	UpdatePost(ctx context.Context, postID string, in blogger.PostInput) (*blogger.Post, error)
	DeletePost(ctx context.Context, postID string) error
}

// Converter renders post sources to HTML.
type Converter interface {
	ToHTML(ctx context.Context, src, format string, filters []string) (string, error)
}

// DefaultConcurrency bounds PublishFiles.
const DefaultConcurrency = 4

// Service publishes posts. It is safe for concurrent use.
type Service struct {
	blog        Blog
	converter   Converter
	files       *postfile.Store
	journal     journal.Store
	recorder    metrics.Recorder
	runID       string
	force       bool
	concurrency int
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithJournal records every operation in j.
func WithJournal(j journal.Store) Option {
	return func(s *Service) { s.journal = j }
}

// WithRecorder reports operation metrics to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(s *Service) { s.runID = id }
}

// WithForce disables skipping of unchanged posts.
func WithForce(force bool) Option {
	return func(s *Service) { s.force = force }
}

// WithConcurrency bounds how many files PublishFiles handles at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New returns a Service.
func New(blog Blog, converter Converter, files *postfile.Store, opts ...Option) *Service {
	s := &Service{
		blog:        blog,
		converter:   converter,
		files:       files,
		recorder:    metrics.NoopRecorder{},
		runID:       uuid.NewString(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = slog.Default().With(logfields.RunID(s.runID))
	return s
}

// RunID identifies this invocation in logs and the journal.
func (s *Service) RunID() string { return s.runID }

// record appends e to the journal. Journal failures are logged and never
// fail the operation that already happened remotely.
func (s *Service) record(ctx context.Context, e journal.Entry) {
	if s.journal == nil {
		return
	}
	e.RunID = s.runID
	if err := s.journal.Append(ctx, e); err != nil {
		s.logger.Warn("Failed to record operation", logfields.PostID(e.PostID), logfields.Error(err))
	}
}

// observe reports the outcome of one operation.
func (s *Service) observe(command string, start time.Time, err error, skipped bool) {
	result := metrics.ResultSuccess
	switch {
	case err != nil:
		result = metrics.ResultFailed
	case skipped:
		result = metrics.ResultSkipped
	}
	s.recorder.IncOperation(command, result)
	s.recorder.ObserveOperationDuration(command, time.Since(start))
}

func statusFor(err error) journal.Status {
	if err != nil {
		return journal.StatusFailed
	}
	return journal.StatusOK
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
