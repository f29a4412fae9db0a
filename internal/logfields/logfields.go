package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyCommand    = "command"
	KeyPath       = "path"
	KeyPostID     = "post_id"
	KeyBlogID     = "blog_id"
	KeyURL        = "url"
	KeyDialect    = "dialect"
	KeyFormat     = "format"
	KeyStatus     = "status"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func PostID(id string) slog.Attr      { return slog.String(KeyPostID, id) }
func BlogID(id string) slog.Attr      { return slog.String(KeyBlogID, id) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Dialect(d string) slog.Attr      { return slog.String(KeyDialect, d) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
