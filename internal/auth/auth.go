// Package auth obtains and stores OAuth2 credentials for the Blogger API.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
)

// BloggerScope grants read and write access to the user's blogs.
const BloggerScope = "https://www.googleapis.com/auth/blogger"

// GoogleEndpoint is Google's OAuth2 endpoint for installed applications.
var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

var (
	// ErrNoCredentials signals that no token was stored yet.
	ErrNoCredentials = errors.AuthError("no stored credentials").UserAction().Build()

	// ErrMissingClient signals that the OAuth2 client id or secret is missing.
	ErrMissingClient = errors.ConfigError("client id and client secret are required").Build()
)

// Config identifies the OAuth2 client and where its token is kept.
type Config struct {
	ClientID        string
	ClientSecret    string
	CredentialsPath string
	// Endpoint defaults to GoogleEndpoint.
	Endpoint oauth2.Endpoint
}

func (c Config) validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingClient
	}
	if c.CredentialsPath == "" {
		return errors.ConfigError("credentials path is required").Build()
	}
	return nil
}

func (c Config) oauth(redirectURL string) *oauth2.Config {
	endpoint := c.Endpoint
	if endpoint.AuthURL == "" || endpoint.TokenURL == "" {
		endpoint = GoogleEndpoint
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{BloggerScope},
		RedirectURL:  redirectURL,
	}
}

// Client returns an http.Client that authorizes requests with the stored
// token and saves refreshed tokens back to the credentials file.
func (c Config) Client(ctx context.Context) (*http.Client, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	tok, err := LoadToken(c.CredentialsPath)
	if err != nil {
		return nil, err
	}
	src := &persistingSource{
		base: c.oauth("").TokenSource(ctx, tok),
		path: c.CredentialsPath,
		last: tok.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// persistingSource writes a token to disk whenever the underlying source
// hands out a new access token.
type persistingSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryAuth, "refresh access token").UserAction().Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := SaveToken(s.path, tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

// LoadToken reads a JSON encoded token.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredentials.WithContext("path", path)
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read credentials").WithContext("path", path).Build()
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, errors.WrapError(err, errors.CategoryAuth, "credentials file is corrupt").
			UserAction().WithContext("path", path).Build()
	}
	return &tok, nil
}

// SaveToken writes tok readable by the owner only.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create credentials directory").WithContext("path", path).Build()
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write credentials").WithContext("path", path).Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapError(err, errors.CategoryFileSystem, "write credentials").WithContext("path", path).Build()
	}
	return nil
}
