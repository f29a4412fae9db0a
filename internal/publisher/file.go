package publisher

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/easyblogger/internal/blogger"
	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
	"git.home.luguber.info/inful/easyblogger/internal/frontmatter"
	"git.home.luguber.info/inful/easyblogger/internal/journal"
	"git.home.luguber.info/inful/easyblogger/internal/logfields"
	"git.home.luguber.info/inful/easyblogger/internal/postfile"
)

// Result describes what happened to one post file.
type Result struct {
	Path      string
	Command   frontmatter.Command
	PostID    string
	URL       string
	Skipped   bool
	WroteBack bool
	// Rendered holds the file content with the new post id when it could not
	// be written back, which is the case for standard input.
	Rendered string
	Err      error
}

// PublishFile publishes the post described by the front matter of the file
// at path. Files without a post id create a new post and get the assigned
// id written back; files with one update that post.
func (s *Service) PublishFile(ctx context.Context, path string) (res *Result, err error) {
	res = &Result{Path: path, Command: frontmatter.CommandCreate}
	start := time.Now()
	defer func() {
		if err != nil {
			res.Err = err
		}
		s.observe(string(res.Command), start, err, res.Skipped)
	}()

	src, err := s.files.Read(path)
	if err != nil {
		return res, errors.WrapError(err, errors.CategoryFileSystem, "cannot read post file").WithContext("path", path).Build()
	}

	fm, err := frontmatter.Parse(src.Content)
	if err != nil {
		return res, errors.WrapError(err, errors.CategoryFrontMatter, "invalid front matter").
			UserAction().WithContext("path", path).Build()
	}
	res.Command = frontmatter.Resolve(fm)
	res.PostID = fm.PostID
	log := s.logger.With(logfields.Path(path), logfields.Command(string(res.Command)), logfields.Dialect(fm.Dialect.String()))

	fingerprint, err := postfile.Fingerprint(fm)
	if err != nil {
		return res, errors.WrapError(err, errors.CategoryInternal, "fingerprint post").WithContext("path", path).Build()
	}

	entry := journal.Entry{
		Command:     string(res.Command),
		PostID:      fm.PostID,
		Path:        path,
		Title:       fm.Title,
		Fingerprint: fingerprint,
	}

	if res.Command == frontmatter.CommandUpdate && s.unchanged(ctx, fm.PostID, fingerprint) {
		res.Skipped = true
		entry.Status = journal.StatusSkipped
		s.record(ctx, entry)
		log.Info("Post unchanged, skipping", logfields.PostID(fm.PostID))
		return res, nil
	}

	html, err := s.converter.ToHTML(ctx, fm.Body, fm.Format, fm.Filters)
	if err != nil {
		err = errors.WrapError(err, errors.CategoryConversion, "cannot convert post").
			WithContext("path", path).WithContext("format", fm.Format).Build()
		entry.Status, entry.Error = journal.StatusFailed, err.Error()
		s.record(ctx, entry)
		return res, err
	}

	input := blogger.PostInput{
		Title:       fm.Title,
		Content:     html,
		Labels:      fm.Labels,
		Publish:     fm.Publish,
		PublishDate: fm.PublishDate,
	}

	var post *blogger.Post
	if res.Command == frontmatter.CommandUpdate {
		post, err = s.blog.UpdatePost(ctx, fm.PostID, input)
	} else {
		post, err = s.blog.InsertPost(ctx, input)
	}
	if err != nil {
		err = withPath(err, path)
		entry.Status, entry.Error = journal.StatusFailed, err.Error()
		s.record(ctx, entry)
		return res, err
	}
	res.PostID = post.ID
	res.URL = post.URL
	entry.PostID, entry.URL = post.ID, post.URL

	if res.Command == frontmatter.CommandCreate {
		if err := s.writeBack(src, fm, post.ID, res); err != nil {
			entry.Status, entry.Error = journal.StatusFailed, err.Error()
			s.record(ctx, entry)
			return res, err
		}
	}

	entry.Status = journal.StatusOK
	s.record(ctx, entry)
	log.Info("Published post", logfields.PostID(post.ID), logfields.URL(post.URL))
	return res, nil
}

func (s *Service) writeBack(src *postfile.Source, fm *frontmatter.FrontMatter, postID string, res *Result) error {
	rendered, err := frontmatter.Render(fm, postID)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFrontMatter, "cannot write post id").
			WithContext("path", src.Path).WithContext("post_id", postID).Build()
	}
	wrote, err := s.files.WriteBack(src, rendered)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "post created but the file could not be updated").
			WithContext("path", src.Path).WithContext("post_id", postID).Build()
	}
	res.WroteBack = wrote
	if wrote {
		s.recorder.IncWriteBack()
	} else {
		res.Rendered = rendered
	}
	return nil
}

// unchanged reports whether the last successful operation on postID saw the
// same content.
func (s *Service) unchanged(ctx context.Context, postID, fingerprint string) bool {
	if s.force || s.journal == nil {
		return false
	}
	last, err := s.journal.LastForPost(ctx, postID)
	if err != nil {
		if !stderrors.Is(err, journal.ErrNoEntry) {
			s.logger.Warn("Failed to read journal", logfields.PostID(postID), logfields.Error(err))
		}
		return false
	}
	return last.Fingerprint == fingerprint
}

// PublishFiles publishes every file, at most the configured number at once.
// A failing file does not stop the others; its error is in its Result.
// Duplicate paths are published once. Results keep the order of the first
// occurrence of each path.
func (s *Service) PublishFiles(ctx context.Context, paths []string) []*Result {
	seen := make(map[string]bool, len(paths))
	unique := make([]string, 0, len(paths))
	for _, p := range paths {
		key := p
		if p != postfile.Stdin {
			key = filepath.Clean(p)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, p)
	}

	results := make([]*Result, len(unique))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, p := range unique {
		g.Go(func() error {
			res, err := s.PublishFile(ctx, p)
			if err != nil {
				s.logger.Error("Failed to publish file", logfields.Path(p), logfields.Error(err))
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failed counts results with an error.
func Failed(results []*Result) int {
	n := 0
	for _, r := range results {
		if r != nil && r.Err != nil {
			n++
		}
	}
	return n
}

// withPath attaches the file path to a classified error or classifies err
// as a remote failure.
func withPath(err error, path string) error {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.WithContext("path", path)
	}
	return errors.WrapError(err, errors.CategoryRemote, "blog request failed").WithContext("path", path).Build()
}
