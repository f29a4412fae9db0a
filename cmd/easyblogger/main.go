package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/easyblogger/cmd/easyblogger/commands"
	"git.home.luguber.info/inful/easyblogger/internal/config"
	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
	"git.home.luguber.info/inful/easyblogger/internal/version"
)

func main() {
	// .env values must be in the environment before kong reads env tags.
	if err := config.LoadEnv(); err != nil {
		slog.Warn("Failed to load .env", slog.String("error", err.Error()))
	}

	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("easyblogger"),
		kong.Description("Publish and manage Blogger posts from the command line."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Full()},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	global := &commands.Global{Ctx: ctx, Stdin: os.Stdin, Stdout: os.Stdout}

	err := parser.Run(global, cli)
	cancel()
	if ferr := cli.Finish(); ferr != nil && err == nil {
		err = ferr
	}

	errors.NewCLIErrorAdapter(cli.Verbose > 0, slog.Default()).HandleError(err)
}
