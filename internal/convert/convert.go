// Package convert turns post sources into Blogger HTML and back.
//
// Markdown without pandoc filters is rendered in-process with goldmark.
// AsciiDoc goes through asciidoctor and every other format through pandoc.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/easyblogger/internal/logfields"
	"git.home.luguber.info/inful/easyblogger/internal/metrics"
)

// FormatHTML is passed through untouched.
const FormatHTML = "html"

// ErrToolNotFound is returned when the external converter is not on PATH.
var ErrToolNotFound = errors.New("converter not found")

var (
	extendedMarkdown = map[string]bool{
		"markdown":          true,
		"md":                true,
		"gfm":               true,
		"markdown_github":   true,
		"markdown_mmd":      true,
		"markdown_phpextra": true,
	}
	strictMarkdown = map[string]bool{
		"commonmark":      true,
		"markdown_strict": true,
	}
	asciidocFormats = map[string]bool{
		"asciidoc":    true,
		"adoc":        true,
		"asciidoctor": true,
	}
)

// Runner executes an external program with stdin and returns its stdout.
type Runner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// Converter renders sources to HTML.
type Converter struct {
	run      Runner
	recorder metrics.Recorder
	extended goldmark.Markdown
	strict   goldmark.Markdown
}

// Option configures a Converter.
type Option func(*Converter)

// WithRunner replaces the external process runner.
func WithRunner(r Runner) Option {
	return func(c *Converter) { c.run = r }
}

// WithRecorder records conversion durations.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Converter) {
		if r != nil {
			c.recorder = r
		}
	}
}

// New returns a Converter using the PATH for external tools.
func New(opts ...Option) *Converter {
	c := &Converter{
		run:      execRunner,
		recorder: metrics.NoopRecorder{},
		extended: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.Typographer),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		strict: goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToHTML converts src written in format to HTML. Filters are pandoc filters
// and force the conversion through pandoc.
func (c *Converter) ToHTML(ctx context.Context, src, format string, filters []string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	start := time.Now()
	defer func() { c.recorder.ObserveConversion(format, time.Since(start)) }()

	switch {
	case format == FormatHTML:
		return src, nil
	case len(filters) == 0 && extendedMarkdown[format]:
		return renderGoldmark(c.extended, src)
	case len(filters) == 0 && strictMarkdown[format]:
		return renderGoldmark(c.strict, src)
	case asciidocFormats[format] && len(filters) == 0:
		out, err := c.run(ctx, []byte(src), "asciidoctor", "-s", "-o", "-", "-")
		return string(out), err
	}

	args := []string{"--from", pandocFormat(format), "--to", FormatHTML}
	for _, f := range filters {
		args = append(args, "--filter", f)
	}
	out, err := c.run(ctx, []byte(src), "pandoc", args...)
	return string(out), err
}

// FromHTML converts Blogger HTML to format with pandoc.
func (c *Converter) FromHTML(ctx context.Context, src, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" || format == FormatHTML {
		return src, nil
	}
	start := time.Now()
	defer func() { c.recorder.ObserveConversion(format, time.Since(start)) }()

	out, err := c.run(ctx, []byte(src), "pandoc", "--from", FormatHTML, "--to", pandocFormat(format))
	return string(out), err
}

func renderGoldmark(md goldmark.Markdown, src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// pandocFormat maps aliases pandoc does not know.
func pandocFormat(format string) string {
	switch format {
	case "md":
		return "markdown"
	case "adoc", "asciidoctor":
		return "asciidoc"
	default:
		return format
	}
}

func execRunner(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	var stdout, stderr bytes.Buffer
	// #nosec G204 -- path comes from exec.LookPath and args are built by this package
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Running converter", slog.String("tool", name), slog.Any("args", args))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		slog.Warn("Converter failed", slog.String("tool", name), logfields.Error(err))
		if msg != "" {
			return nil, fmt.Errorf("%s failed: %s: %w", name, msg, err)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}
