package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"git.home.luguber.info/inful/easyblogger/internal/blogger"
	"git.home.luguber.info/inful/easyblogger/internal/convert"
	"git.home.luguber.info/inful/easyblogger/internal/export"
	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
)

const summaryLength = 200

// GetCmd implements the 'get' command.
type GetCmd struct {
	PostID     string   `short:"p" name:"post-id" xor:"select" help:"Fetch a single post"`
	Labels     []string `short:"l" xor:"select" help:"Only posts with these labels"`
	Query      string   `short:"q" xor:"select" help:"Search posts"`
	PostURL    string   `name:"post-url" xor:"select" help:"Fetch the post at this URL or path"`
	Fields     []string `short:"f" default:"id,title,url" help:"Fields to print: id, title, url, published, updated, status, labels, summary"`
	Doc        string   `short:"d" name:"doc" placeholder:"FORMAT" help:"Export posts as documents in FORMAT"`
	WriteFiles bool     `short:"w" name:"write-files" help:"Write documents to files even for a single post"`
	Count      int      `short:"c" default:"10" help:"Maximum number of posts"`
}

// getter is the read side of the Blogger client.
type getter interface {
	GetPost(ctx context.Context, postID string) (*blogger.Post, error)
	GetPostByPath(ctx context.Context, path string) (*blogger.Post, error)
	ListPosts(ctx context.Context, labels []string, max int) ([]*blogger.Post, error)
	SearchPosts(ctx context.Context, query string, max int) ([]*blogger.Post, error)
}

func (c *GetCmd) Run(g *Global, root *CLI) error {
	blog, err := root.blog(g.context())
	if err != nil {
		return err
	}
	posts, err := c.fetch(g.context(), blog)
	if err != nil {
		return err
	}

	if c.Doc != "" {
		w := &export.Writer{
			FS:        g.fs(),
			Out:       g.Stdout,
			Converter: convert.New(convert.WithRecorder(root.metricsRecorder())),
		}
		_, err := w.Write(g.context(), posts, c.Doc, c.WriteFiles)
		return err
	}
	return printPosts(g.Stdout, posts, c.Fields)
}

func (c *GetCmd) fetch(ctx context.Context, blog getter) ([]*blogger.Post, error) {
	var (
		post *blogger.Post
		err  error
	)
	switch {
	case c.PostID != "":
		post, err = blog.GetPost(ctx, c.PostID)
	case c.PostURL != "":
		post, err = blog.GetPostByPath(ctx, c.PostURL)
	case c.Query != "":
		return blog.SearchPosts(ctx, c.Query, c.Count)
	default:
		return blog.ListPosts(ctx, cleanLabels(c.Labels), c.Count)
	}
	if err != nil {
		if errors.HasCategory(err, errors.CategoryNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []*blogger.Post{post}, nil
}

// printPosts writes one comma separated line per post with the requested
// fields. Labels are joined with semicolons.
func printPosts(w io.Writer, posts []*blogger.Post, fields []string) error {
	for _, p := range posts {
		values := make([]string, 0, len(fields))
		for _, f := range fields {
			v, ok := fieldValue(p, strings.TrimSpace(f))
			if ok {
				values = append(values, v)
			}
		}
		if _, err := fmt.Fprintln(w, strings.Join(values, ",")); err != nil {
			return err
		}
	}
	return nil
}

func fieldValue(p *blogger.Post, field string) (string, bool) {
	switch strings.ToLower(field) {
	case "id":
		return p.ID, true
	case "title":
		return p.Title, true
	case "url":
		return p.URL, true
	case "status":
		return p.Status, true
	case "labels":
		return strings.Join(p.Labels, ";"), true
	case "published":
		return formatTime(p.Published), true
	case "updated":
		return formatTime(p.Updated), true
	case "summary":
		return export.Summary(p.Content, summaryLength), true
	case "content":
		return p.Content, true
	default:
		return "", false
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
