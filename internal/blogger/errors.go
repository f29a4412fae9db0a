package blogger

import (
	"fmt"
	"net/http"

	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
)

var (
	// ErrNotFound signals that the blog or post does not exist.
	ErrNotFound = errors.NewError(errors.CategoryNotFound, "post not found").Build()

	// ErrMissingRequiredField signals a request without the fields Blogger needs.
	ErrMissingRequiredField = errors.ValidationError("missing required post field").Build()

	// ErrNoBlog signals that neither a blog id nor a blog URL was configured.
	ErrNoBlog = errors.ConfigError("either a blog id or a blog url is required").Build()
)

// APIError is a non-2xx response from the Blogger API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("blogger API error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("blogger API error: %d %s", e.Status, e.Message)
}

// apiErrorBody is the Google API error envelope.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// classify wraps an APIError with the category matching its status.
func classify(apiErr *APIError, method, endpoint string) error {
	var b *errors.ErrorBuilder
	switch apiErr.Status {
	case http.StatusNotFound:
		b = errors.WrapError(apiErr, errors.CategoryNotFound, ErrNotFound.Message())
	case http.StatusUnauthorized, http.StatusForbidden:
		b = errors.WrapError(apiErr, errors.CategoryAuth, "blogger rejected the credentials").UserAction()
	case http.StatusTooManyRequests:
		b = errors.WrapError(apiErr, errors.CategoryRemote, "blogger request failed").RateLimit()
	default:
		b = errors.WrapError(apiErr, errors.CategoryRemote, "blogger request failed")
	}
	return b.WithContext("method", method).WithContext("endpoint", endpoint).Build()
}
