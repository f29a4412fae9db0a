package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
	"git.home.luguber.info/inful/easyblogger/internal/journal"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit  int    `short:"n" default:"20" help:"Number of entries to show"`
	PostID string `short:"p" name:"post-id" help:"Only entries for this post"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	j, err := root.openJournal()
	if err != nil {
		return err
	}
	if j == nil {
		return errors.ConfigError("the journal is disabled").Build()
	}

	entries, err := j.List(g.context(), journal.Filter{PostID: h.PostID, Limit: h.Limit})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tCOMMAND\tSTATUS\tPOST\tPATH\tTITLE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format(time.DateTime), e.Command, e.Status, e.PostID, e.Path, e.Title)
	}
	return tw.Flush()
}
