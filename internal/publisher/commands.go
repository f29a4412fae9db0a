package publisher

import (
	"context"
	"time"

	"git.home.luguber.info/inful/easyblogger/internal/blogger"
	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
	"git.home.luguber.info/inful/easyblogger/internal/journal"
	"git.home.luguber.info/inful/easyblogger/internal/logfields"
)

// PostRequest is a post described on the command line.
type PostRequest struct {
	Title       string
	Labels      []string
	Content     string
	Format      string
	Filters     []string
	Publish     bool
	PublishDate *time.Time
}

func (s *Service) input(ctx context.Context, req PostRequest) (blogger.PostInput, error) {
	in := blogger.PostInput{
		Title:       req.Title,
		Labels:      req.Labels,
		Publish:     req.Publish,
		PublishDate: req.PublishDate,
	}
	if req.Content == "" {
		return in, nil
	}
	html, err := s.converter.ToHTML(ctx, req.Content, req.Format, req.Filters)
	if err != nil {
		return in, errors.WrapError(err, errors.CategoryConversion, "cannot convert post").
			WithContext("format", req.Format).Build()
	}
	in.Content = html
	return in, nil
}

// Post creates a new post.
func (s *Service) Post(ctx context.Context, req PostRequest) (post *blogger.Post, err error) {
	const command = "post"
	start := time.Now()
	defer func() { s.observe(command, start, err, false) }()

	in, err := s.input(ctx, req)
	if err != nil {
		return nil, err
	}
	post, err = s.blog.InsertPost(ctx, in)

	entry := journal.Entry{Command: command, Title: req.Title, Status: statusFor(err), Error: errorText(err)}
	if post != nil {
		entry.PostID, entry.URL = post.ID, post.URL
	}
	s.record(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Created post", logfields.PostID(post.ID), logfields.URL(post.URL))
	return post, nil
}

// Update changes an existing post. Empty fields are left as they are.
func (s *Service) Update(ctx context.Context, postID string, req PostRequest) (post *blogger.Post, err error) {
	const command = "update"
	start := time.Now()
	defer func() { s.observe(command, start, err, false) }()

	in, err := s.input(ctx, req)
	if err != nil {
		return nil, err
	}
	post, err = s.blog.UpdatePost(ctx, postID, in)

	entry := journal.Entry{Command: command, PostID: postID, Title: req.Title, Status: statusFor(err), Error: errorText(err)}
	if post != nil {
		entry.URL = post.URL
	}
	s.record(ctx, entry)
	if err != nil {
		return nil, errors.WrapError(err, errors.GetCategory(err), "cannot update post").WithContext("post_id", postID).Build()
	}
	s.logger.Info("Updated post", logfields.PostID(postID), logfields.URL(post.URL))
	return post, nil
}

// Delete removes posts one by one and stops at the first failure.
func (s *Service) Delete(ctx context.Context, postIDs ...string) error {
	const command = "delete"
	for _, id := range postIDs {
		start := time.Now()
		err := s.blog.DeletePost(ctx, id)
		s.observe(command, start, err, false)
		s.record(ctx, journal.Entry{Command: command, PostID: id, Status: statusFor(err), Error: errorText(err)})
		if err != nil {
			return errors.WrapError(err, errors.GetCategory(err), "cannot delete post").WithContext("post_id", id).Build()
		}
		s.logger.Info("Deleted post", logfields.PostID(id))
	}
	return nil
}
