package commands

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/easyblogger/internal/auth"
	"git.home.luguber.info/inful/easyblogger/internal/blogger"
	"git.home.luguber.info/inful/easyblogger/internal/config"
	"git.home.luguber.info/inful/easyblogger/internal/convert"
	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
	"git.home.luguber.info/inful/easyblogger/internal/journal"
	"git.home.luguber.info/inful/easyblogger/internal/metrics"
	"git.home.luguber.info/inful/easyblogger/internal/postfile"
	"git.home.luguber.info/inful/easyblogger/internal/publisher"
	"git.home.luguber.info/inful/easyblogger/internal/version"
)

// Global carries process wide state into commands.
type Global struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	FS     afero.Fs
}

func (g *Global) context() context.Context {
	if g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

// CLI definition & global flags.
type CLI struct {
	ClientID    string           `short:"i" name:"client-id" env:"EASYBLOGGER_CLIENT_ID" help:"OAuth2 client id"`
	Secret      string           `short:"s" name:"secret" env:"EASYBLOGGER_CLIENT_SECRET" help:"OAuth2 client secret"`
	BlogID      string           `short:"b" name:"blog-id" env:"EASYBLOGGER_BLOG_ID" xor:"blog" help:"Blog id"`
	URL         string           `short:"u" name:"url" env:"EASYBLOGGER_BLOG_URL" xor:"blog" help:"Blog URL, used to look up the blog id"`
	Config      string           `name:"config" placeholder:"PATH" help:"Configuration file (default ~/.easyblogger.yaml)"`
	Credentials string           `name:"credentials" env:"EASYBLOGGER_CREDENTIALS" placeholder:"PATH" help:"OAuth2 token file"`
	Journal     string           `name:"journal" env:"EASYBLOGGER_JOURNAL" placeholder:"PATH" help:"Operation journal database, or \"off\""`
	MetricsFile string           `name:"metrics-file" placeholder:"PATH" help:"Write Prometheus metrics to this file on exit"`
	Verbose     int              `short:"v" type:"counter" help:"Increase log verbosity (-v info, -vv debug)"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Get     GetCmd     `cmd:"" help:"Show or export posts"`
	Post    PostCmd    `cmd:"" help:"Create a new post"`
	Update  UpdateCmd  `cmd:"" help:"Update an existing post"`
	Delete  DeleteCmd  `cmd:"" help:"Delete posts"`
	File    FileCmd    `cmd:"" help:"Create or update posts from files with front matter"`
	Watch   WatchCmd   `cmd:"" help:"Publish files whenever they change"`
	History HistoryCmd `cmd:"" help:"Show recorded operations"`
	Auth    AuthCmd    `cmd:"" help:"Sign in to Blogger and store the credentials"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`

	cfg      *config.Config
	recorder *metrics.PrometheusRecorder
	journal  journal.Store
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(config.NewLogger(os.Stderr, config.LevelForVerbosity(config.LogLevelWarn, c.Verbose)))
	return nil
}

// settings loads the configuration file and lets flags override it. A
// missing default file is not an error.
func (c *CLI) settings() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	path := c.Config
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil && !explicit && stderrors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Load("")
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot load configuration").WithContext("path", path).Build()
	}

	override(&cfg.ClientID, c.ClientID)
	override(&cfg.ClientSecret, c.Secret)
	if c.BlogID != "" || c.URL != "" {
		cfg.BlogID, cfg.BlogURL = c.BlogID, c.URL
	}
	if c.Credentials != "" {
		cfg.Credentials = config.ExpandHome(c.Credentials)
	}
	if c.Journal != "" {
		cfg.Journal = config.ExpandHome(c.Journal)
	}

	if c.Verbose == 0 {
		slog.SetDefault(config.NewLogger(os.Stderr, cfg.Logging.Level.Slog()))
	}
	c.cfg = cfg
	return cfg, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *CLI) authConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		ClientID:        cfg.ClientID,
		ClientSecret:    cfg.ClientSecret,
		CredentialsPath: cfg.Credentials,
	}
}

// blog returns an authorized Blogger client.
func (c *CLI) blog(ctx context.Context) (*blogger.Client, error) {
	cfg, err := c.settings()
	if err != nil {
		return nil, err
	}
	httpClient, err := c.authConfig(cfg).Client(ctx)
	if err != nil {
		return nil, err
	}
	return blogger.NewClient(httpClient, cfg.BlogID, cfg.BlogURL, blogger.WithUserAgent(version.UserAgent()))
}

// metricsRecorder returns the recorder for this run, a no-op unless a
// metrics file was requested.
func (c *CLI) metricsRecorder() metrics.Recorder {
	if c.MetricsFile == "" {
		return metrics.NoopRecorder{}
	}
	if c.recorder == nil {
		c.recorder = metrics.NewPrometheusRecorder(prom.NewRegistry())
	}
	return c.recorder
}

// openJournal opens the configured journal, or returns nil when disabled.
func (c *CLI) openJournal() (journal.Store, error) {
	if c.journal != nil {
		return c.journal, nil
	}
	cfg, err := c.settings()
	if err != nil {
		return nil, err
	}
	if !cfg.JournalEnabled() {
		return nil, nil
	}
	j, err := journal.NewSQLiteStore(cfg.Journal)
	if err != nil {
		return nil, err
	}
	c.journal = j
	return j, nil
}

// service wires a publisher for commands that change posts.
func (c *CLI) service(g *Global, opts ...publisher.Option) (*publisher.Service, error) {
	cfg, err := c.settings()
	if err != nil {
		return nil, err
	}
	blog, err := c.blog(g.context())
	if err != nil {
		return nil, err
	}
	j, err := c.openJournal()
	if err != nil {
		return nil, err
	}

	rec := c.metricsRecorder()
	base := []publisher.Option{
		publisher.WithRecorder(rec),
		publisher.WithConcurrency(cfg.Concurrency),
	}
	if j != nil {
		base = append(base, publisher.WithJournal(j))
	}
	return publisher.New(blog, convert.New(convert.WithRecorder(rec)), postfile.NewStore(g.fs(), g.Stdin), append(base, opts...)...), nil
}

func (g *Global) fs() afero.Fs {
	if g.FS == nil {
		return afero.NewOsFs()
	}
	return g.FS
}

// Finish releases resources and writes the metrics file.
func (c *CLI) Finish() error {
	if c.journal != nil {
		if err := c.journal.Close(); err != nil {
			slog.Warn("Failed to close journal", slog.String("error", err.Error()))
		}
		c.journal = nil
	}
	if c.recorder != nil && c.MetricsFile != "" {
		if err := c.recorder.WriteTextfile(c.MetricsFile); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "cannot write metrics file").WithContext("path", c.MetricsFile).Build()
		}
	}
	return nil
}
