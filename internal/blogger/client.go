// Package blogger is a small client for the Blogger v3 REST API.
package blogger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
	"git.home.luguber.info/inful/easyblogger/internal/logfields"
)

// DefaultBaseURL is the Blogger v3 API root.
const DefaultBaseURL = "https://www.googleapis.com/blogger/v3/"

// Client talks to one blog. The http.Client is expected to add OAuth2
// credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string

	blogURL string

	mu     sync.Mutex
	blogID string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		c.baseURL = u
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient returns a client for the blog identified by blogID or, when
// blogID is empty, by blogURL.
func NewClient(httpClient *http.Client, blogID, blogURL string, opts ...Option) (*Client, error) {
	if blogID == "" && blogURL == "" {
		return nil, ErrNoBlog
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout == 0 {
		cp := *httpClient
		cp.Timeout = 30 * time.Second
		httpClient = &cp
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		userAgent:  "easyblogger",
		blogID:     blogID,
		blogURL:    blogURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ResolveBlog returns the blog id, looking it up by URL on first use.
func (c *Client) ResolveBlog(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.blogID != "" {
		return c.blogID, nil
	}

	var blog Blog
	if err := c.call(ctx, http.MethodGet, "blogs/byurl", url.Values{"url": {c.blogURL}}, nil, &blog); err != nil {
		return "", err
	}
	if blog.ID == "" {
		return "", errors.RemoteError("blog lookup returned no id").WithContext("url", c.blogURL).Build()
	}
	slog.Debug("Resolved blog", logfields.URL(c.blogURL), logfields.BlogID(blog.ID))
	c.blogID = blog.ID
	return blog.ID, nil
}

// postsEndpoint joins the blog's posts collection with extra path elements.
func (c *Client) postsEndpoint(ctx context.Context, elems ...string) (string, error) {
	blogID, err := c.ResolveBlog(ctx)
	if err != nil {
		return "", err
	}
	parts := []string{"blogs", url.PathEscape(blogID), "posts"}
	for _, e := range elems {
		parts = append(parts, url.PathEscape(e))
	}
	return strings.Join(parts, "/"), nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body any) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "blogger request failed").
			WithContext("method", req.Method).
			WithContext("url", req.URL.Redacted()).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope apiErrorBody
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &envelope) == nil && envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
		}
		return classify(apiErr, req.Method, req.URL.Path)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil && err != io.EOF {
			return errors.WrapError(err, errors.CategoryRemote, "decode blogger response").Build()
		}
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, endpoint string, query url.Values, body, result any) error {
	req, err := c.newRequest(ctx, method, endpoint, query, body)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, fmt.Sprintf("build %s request", method)).Build()
	}
	return c.doRequest(req, result)
}
