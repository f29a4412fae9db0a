package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/easyblogger/internal/blogger"
	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
	"git.home.luguber.info/inful/easyblogger/internal/logfields"
)

// FromHTML converts post HTML into another markup format.
type FromHTML interface {
	FromHTML(ctx context.Context, src, format string) (string, error)
}

// Writer exports posts to files under Dir or to Out.
type Writer struct {
	FS        afero.Fs
	Dir       string
	Out       io.Writer
	Converter FromHTML
}

// Write converts every post to format. A single post goes to Out unless
// writeFiles is set; several posts always go to files. It returns the files
// written.
func (w *Writer) Write(ctx context.Context, posts []*blogger.Post, format string, writeFiles bool) ([]string, error) {
	if len(posts) > 1 {
		writeFiles = true
	}

	if writeFiles && w.Dir != "" {
		if err := w.FS.MkdirAll(w.Dir, 0o755); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "create export directory").WithContext("path", w.Dir).Build()
		}
	}

	var written []string
	for _, post := range posts {
		content, err := w.Converter.FromHTML(ctx, post.Content, format)
		if err != nil {
			return written, errors.WrapError(err, errors.CategoryConversion, "convert post").
				WithContext("post_id", post.ID).WithContext("format", format).Build()
		}
		doc, err := Document(post, content, format)
		if err != nil {
			return written, err
		}

		if !writeFiles {
			if _, err := io.WriteString(w.Out, doc); err != nil {
				return written, err
			}
			continue
		}

		name := filepath.Join(w.Dir, FileName(post, format))
		if err := afero.WriteFile(w.FS, name, []byte(doc), 0o644); err != nil {
			return written, errors.WrapError(err, errors.CategoryFileSystem, "write export").WithContext("path", name).Build()
		}
		slog.Info("Exported post", logfields.PostID(post.ID), logfields.Path(name))
		written = append(written, name)
	}
	if writeFiles {
		fmt.Fprintf(w.Out, "wrote %d file(s)\n", len(written))
	}
	return written, nil
}
