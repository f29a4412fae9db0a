package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
)

type callbackResult struct {
	code string
	err  error
}

// Login runs the installed-app flow: it listens on a loopback port, hands
// the consent URL to open and waits for Google to redirect back with an
// authorization code. The exchanged token is stored at CredentialsPath.
func (c Config) Login(ctx context.Context, open func(url string) error) (*oauth2.Token, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "listen for oauth callback").Build()
	}
	redirectURL := fmt.Sprintf("http://%s/", ln.Addr().String())
	conf := c.oauth(redirectURL)
	state := uuid.NewString()

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Warn("OAuth callback server stopped", slog.String("error", err.Error()))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if err := open(authURL); err != nil {
		return nil, errors.WrapError(err, errors.CategoryAuth, "open consent page").Build()
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := conf.Exchange(ctx, res.code)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryAuth, "exchange authorization code").UserAction().Build()
	}
	if err := SaveToken(c.CredentialsPath, tok); err != nil {
		return nil, err
	}
	slog.Info("Stored credentials", slog.String("path", c.CredentialsPath))
	return tok, nil
}

func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = errors.AuthError("oauth callback state mismatch").Build()
		case q.Get("error") != "":
			res.err = errors.AuthError("authorization denied").WithContext("reason", q.Get("error")).UserAction().Build()
		case q.Get("code") == "":
			res.err = errors.AuthError("oauth callback without code").Build()
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, "Authorization failed. You can close this window.", http.StatusBadRequest)
		} else {
			_, _ = fmt.Fprintln(w, "Authorization complete. You can close this window.")
		}
		select {
		case results <- res:
		default:
		}
	})
}
