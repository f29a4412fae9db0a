package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
	"git.home.luguber.info/inful/easyblogger/internal/postfile"
	"git.home.luguber.info/inful/easyblogger/internal/publisher"
)

// PostOptions are shared by post and update.
type PostOptions struct {
	Title   string   `short:"t" help:"Post title"`
	Labels  []string `short:"l" help:"Comma separated labels"`
	Publish bool     `help:"Publish the post instead of saving a draft"`
	Date    string   `placeholder:"DATE" help:"Publish date, for example 2018-01-01T10:00:00"`
	Content string   `short:"c" xor:"content" help:"Post content"`
	File    string   `short:"f" xor:"content" placeholder:"FILE" help:"Read content from FILE, - for stdin"`
	Format  string   `default:"html" help:"Content format (html, markdown, asciidoc or any pandoc format)"`
	Filters []string `help:"Pandoc filters to run during conversion"`
}

func (o *PostOptions) request(g *Global) (publisher.PostRequest, error) {
	req := publisher.PostRequest{
		Title:   o.Title,
		Labels:  cleanLabels(o.Labels),
		Content: o.Content,
		Format:  o.Format,
		Filters: o.Filters,
		Publish: o.Publish,
	}

	if o.Date != "" {
		t, err := dateparse.ParseIn(o.Date, time.Local)
		if err != nil {
			return req, errors.WrapError(err, errors.CategoryValidation, "invalid publish date").WithContext("date", o.Date).Build()
		}
		req.PublishDate = &t
	}

	switch o.File {
	case "":
	case postfile.Stdin:
		data, err := io.ReadAll(g.Stdin)
		if err != nil {
			return req, errors.WrapError(err, errors.CategoryFileSystem, "cannot read standard input").Build()
		}
		req.Content = string(data)
	default:
		data, err := afero.ReadFile(g.fs(), o.File)
		if err != nil {
			return req, errors.WrapError(err, errors.CategoryFileSystem, "cannot read content file").WithContext("path", o.File).Build()
		}
		req.Content = string(data)
	}
	return req, nil
}

func cleanLabels(labels []string) []string {
	var out []string
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// PostCmd implements the 'post' command.
type PostCmd struct {
	PostOptions `embed:""`
}

func (p *PostCmd) Run(g *Global, root *CLI) error {
	req, err := p.request(g)
	if err != nil {
		return err
	}
	svc, err := root.service(g)
	if err != nil {
		return err
	}
	post, err := svc.Post(g.context(), req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.Stdout, "%s\t%s\n", post.ID, post.URL)
	return err
}

// UpdateCmd implements the 'update' command.
type UpdateCmd struct {
	PostID      string `arg:"" name:"post-id" help:"Id of the post to update"`
	PostOptions `embed:""`
}

func (u *UpdateCmd) Run(g *Global, root *CLI) error {
	req, err := u.request(g)
	if err != nil {
		return err
	}
	svc, err := root.service(g)
	if err != nil {
		return err
	}
	post, err := svc.Update(g.context(), u.PostID, req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.Stdout, "%s\t%s\n", post.ID, post.URL)
	return err
}

// DeleteCmd implements the 'delete' command.
type DeleteCmd struct {
	PostIDs []string `arg:"" name:"post-id" help:"Ids of the posts to delete"`
}

func (d *DeleteCmd) Run(g *Global, root *CLI) error {
	svc, err := root.service(g)
	if err != nil {
		return err
	}
	return svc.Delete(g.context(), d.PostIDs...)
}
