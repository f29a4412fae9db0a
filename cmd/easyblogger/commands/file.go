package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
	"git.home.luguber.info/inful/easyblogger/internal/postfile"
	"git.home.luguber.info/inful/easyblogger/internal/publisher"
	"git.home.luguber.info/inful/easyblogger/internal/watch"
)

// FileCmd implements the 'file' command.
type FileCmd struct {
	Files       []string `arg:"" optional:"" name:"file" help:"Post files, - or nothing for stdin"`
	Concurrency int      `help:"Files published at once (default from config)"`
	Force       bool     `help:"Publish even when the content did not change"`
}

func (f *FileCmd) Run(g *Global, root *CLI) error {
	svc, err := root.service(g, publisher.WithForce(f.Force), publisher.WithConcurrency(f.Concurrency))
	if err != nil {
		return err
	}
	files := f.Files
	if len(files) == 0 {
		files = []string{postfile.Stdin}
	}

	results := svc.PublishFiles(g.context(), files)
	for _, r := range results {
		printResult(g.Stdout, r)
	}
	return batchError(results)
}

// printResult writes one line per published file. Content read from stdin is
// echoed back with the new post id since it could not be written in place.
func printResult(w io.Writer, r *publisher.Result) {
	switch {
	case r.Err != nil:
		return
	case r.Rendered != "":
		_, _ = io.WriteString(w, r.Rendered)
	case r.Skipped:
		_, _ = fmt.Fprintf(w, "skipped\t%s\t%s\n", r.PostID, r.Path)
	default:
		_, _ = fmt.Fprintf(w, "%sd\t%s\t%s\t%s\n", r.Command, r.PostID, r.URL, r.Path)
	}
}

// batchError summarizes failed files. The category of the first failure
// decides the exit code.
func batchError(results []*publisher.Result) error {
	failed := publisher.Failed(results)
	if failed == 0 {
		return nil
	}
	var first error
	for _, r := range results {
		if r.Err != nil {
			first = r.Err
			break
		}
	}
	if len(results) == 1 {
		return first
	}
	return errors.WrapError(first, errors.GetCategory(first), fmt.Sprintf("%d of %d files failed", failed, len(results))).Build()
}

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Files    []string      `arg:"" name:"file" help:"Post files to watch"`
	Debounce time.Duration `default:"500ms" help:"Quiet period before a changed file is published"`
	Force    bool          `help:"Publish even when the content did not change"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	svc, err := root.service(g, publisher.WithForce(w.Force))
	if err != nil {
		return err
	}

	watcher := &watch.Watcher{
		Paths:    w.Files,
		Debounce: w.Debounce,
		Handle: func(ctx context.Context, path string) error {
			res, err := svc.PublishFile(ctx, path)
			if err != nil {
				return err
			}
			printResult(g.Stdout, res)
			return nil
		},
	}
	fmt.Fprintf(g.Stdout, "Watching %d file(s), press Ctrl+C to stop\n", len(w.Files))
	return watcher.Run(g.context())
}
