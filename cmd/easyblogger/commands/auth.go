package commands

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// AuthCmd implements the 'auth' command.
type AuthCmd struct {
	NoBrowser bool `name:"no-browser" help:"Only print the consent URL"`
}

func (a *AuthCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.settings()
	if err != nil {
		return err
	}

	open := func(url string) error {
		fmt.Fprintf(os.Stderr, "Open this URL to authorize easyblogger:\n\n  %s\n\n", url)
		if !a.NoBrowser {
			if err := openBrowser(url); err != nil {
				fmt.Fprintln(os.Stderr, "Could not open a browser, please open the URL manually.")
			}
		}
		return nil
	}

	if _, err := root.authConfig(cfg).Login(g.context(), open); err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.Stdout, "Credentials stored in %s\n", cfg.Credentials)
	return err
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
