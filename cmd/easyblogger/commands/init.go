package commands

import (
	"fmt"

	"git.home.luguber.info/inful/easyblogger/internal/config"
	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	if path == "" {
		path = config.DefaultPath()
	}
	fmt.Fprintf(g.Stdout, "Writing configuration to %s\n", path)
	if err := config.Init(path, i.Force); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "initialization failed").WithContext("path", path).Build()
	}
	return nil
}
