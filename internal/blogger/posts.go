package blogger

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
)

// maxPageSize is the largest page Blogger returns.
const maxPageSize = 500

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, postID string) (*Post, error) {
	endpoint, err := c.postsEndpoint(ctx, postID)
	if err != nil {
		return nil, err
	}
	var post Post
	if err := c.call(ctx, http.MethodGet, endpoint, nil, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostByPath fetches a post by its path, for example
// /2018/01/my-post.html. Full post URLs are accepted.
func (c *Client) GetPostByPath(ctx context.Context, path string) (*Post, error) {
	if u, err := url.Parse(path); err == nil && u.Host != "" {
		path = u.Path
	}
	endpoint, err := c.postsEndpoint(ctx, "bypath")
	if err != nil {
		return nil, err
	}
	var post Post
	if err := c.call(ctx, http.MethodGet, endpoint, url.Values{"path": {path}}, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts returns up to max posts, newest first, optionally restricted to
// posts carrying all labels.
func (c *Client) ListPosts(ctx context.Context, labels []string, max int) ([]*Post, error) {
	endpoint, err := c.postsEndpoint(ctx)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	if len(labels) > 0 {
		q.Set("labels", strings.Join(labels, ","))
	}
	return c.collect(ctx, endpoint, q, max)
}

// SearchPosts returns up to max posts matching query.
func (c *Client) SearchPosts(ctx context.Context, query string, max int) ([]*Post, error) {
	endpoint, err := c.postsEndpoint(ctx, "search")
	if err != nil {
		return nil, err
	}
	return c.collect(ctx, endpoint, url.Values{"q": {query}}, max)
}

// collect follows nextPageToken until max posts were read or the listing
// ends. A 404 for the listing yields no posts.
func (c *Client) collect(ctx context.Context, endpoint string, q url.Values, max int) ([]*Post, error) {
	if max <= 0 {
		max = 10
	}
	var posts []*Post
	for {
		if n := max - len(posts); n < maxPageSize {
			q.Set("maxResults", strconv.Itoa(n))
		} else {
			q.Set("maxResults", strconv.Itoa(maxPageSize))
		}

		var page PostList
		if err := c.call(ctx, http.MethodGet, endpoint, q, nil, &page); err != nil {
			if errors.HasCategory(err, errors.CategoryNotFound) {
				return posts, nil
			}
			return nil, err
		}
		posts = append(posts, page.Items...)

		if len(posts) >= max {
			return posts[:max], nil
		}
		if page.NextPageToken == "" || len(page.Items) == 0 {
			return posts, nil
		}
		q.Set("pageToken", page.NextPageToken)
	}
}

// InsertPost creates a post. Posts are created as drafts unless in.Publish
// is set.
func (c *Client) InsertPost(ctx context.Context, in PostInput) (*Post, error) {
	if in.Title == "" && in.Content == "" {
		return nil, ErrMissingRequiredField.WithContext("fields", "title or content")
	}
	endpoint, err := c.postsEndpoint(ctx)
	if err != nil {
		return nil, err
	}

	body := postBody{Title: in.Title, Content: in.Content, Labels: in.Labels, Published: in.PublishDate}
	q := url.Values{"isDraft": {strconv.FormatBool(!in.Publish)}}
	var post Post
	if err := c.call(ctx, http.MethodPost, endpoint, q, body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost patches a post and then publishes or reverts it to a draft so
// its status matches in.Publish.
func (c *Client) UpdatePost(ctx context.Context, postID string, in PostInput) (*Post, error) {
	if in.Title == "" && in.Content == "" && len(in.Labels) == 0 {
		return nil, ErrMissingRequiredField.WithContext("fields", "title, content or labels")
	}
	endpoint, err := c.postsEndpoint(ctx, postID)
	if err != nil {
		return nil, err
	}

	body := postBody{Title: in.Title, Content: in.Content, Labels: in.Labels}
	var post Post
	if err := c.call(ctx, http.MethodPatch, endpoint, nil, body, &post); err != nil {
		return nil, err
	}

	if in.Publish {
		return c.publish(ctx, endpoint, in.PublishDate, &post)
	}
	return c.revert(ctx, endpoint, &post)
}

func (c *Client) publish(ctx context.Context, endpoint string, at *time.Time, patched *Post) (*Post, error) {
	q := url.Values{}
	if at != nil {
		q.Set("publishDate", at.Format(time.RFC3339))
	}
	var post Post
	if err := c.call(ctx, http.MethodPost, endpoint+"/publish", q, nil, &post); err != nil {
		return nil, err
	}
	if post.ID == "" {
		return patched, nil
	}
	return &post, nil
}

// revert turns a live post into a draft. Blogger answers 400 for posts that
// already are drafts.
func (c *Client) revert(ctx context.Context, endpoint string, patched *Post) (*Post, error) {
	var post Post
	err := c.call(ctx, http.MethodPost, endpoint+"/revert", nil, nil, &post)
	if err != nil {
		if apiStatus(err) == http.StatusBadRequest {
			return patched, nil
		}
		return nil, err
	}
	if post.ID == "" {
		return patched, nil
	}
	return &post, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	endpoint, err := c.postsEndpoint(ctx, postID)
	if err != nil {
		return err
	}
	return c.call(ctx, http.MethodDelete, endpoint, nil, nil, nil)
}

// apiStatus returns the HTTP status carried by err, or 0.
func apiStatus(err error) int {
	if ce, ok := errors.AsClassified(err); ok {
		if apiErr, ok := ce.Cause().(*APIError); ok {
			return apiErr.Status
		}
	}
	return 0
}
