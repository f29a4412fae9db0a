package journal

import (
	stderrors "errors"

	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
)

// ErrNoEntry is returned by LastForPost when a post has no successful entry.
var ErrNoEntry = stderrors.New("no journal entry")

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.JournalError("could not open journal database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.JournalError("failed to initialize journal schema").Build()

	// ErrAppendFailed indicates recording an entry failed.
	ErrAppendFailed = errors.JournalError("failed to append journal entry").Build()

	// ErrQueryFailed indicates reading entries failed.
	ErrQueryFailed = errors.JournalError("failed to query journal").Build()
)

func wrap(sentinel *errors.ClassifiedError, cause error) error {
	return errors.WrapError(cause, sentinel.Category(), sentinel.Message()).Build()
}
