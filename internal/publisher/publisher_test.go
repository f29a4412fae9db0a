package publisher

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/easyblogger/internal/blogger"
	"git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
	"git.home.luguber.info/inful/easyblogger/internal/frontmatter"
	"git.home.luguber.info/inful/easyblogger/internal/journal"
	"git.home.luguber.info/inful/easyblogger/internal/postfile"
)

type fakeBlog struct {
	mu       sync.Mutex
	nextID   int
	inserted []blogger.PostInput
	updated  map[string]blogger.PostInput
	deleted  []string
	failOn   string
}

func newFakeBlog() *fakeBlog {
	return &fakeBlog{nextID: 1000, updated: map[string]blogger.PostInput{}}
}

func (b *fakeBlog) InsertPost(_ context.Context, in blogger.PostInput) (*blogger.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failOn != "" && in.Title == b.failOn {
		return nil, errors.RemoteError("boom").Build()
	}
	b.inserted = append(b.inserted, in)
	id := fmt.Sprint(b.nextID)
	b.nextID++
	return &blogger.Post{ID: id, Title: in.Title, URL: "https://example.blogspot.com/" + id + ".html"}, nil
}

func (b *fakeBlog) UpdatePost(_ context.Context, id string, in blogger.PostInput) (*blogger.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updated[id] = in
	return &blogger.Post{ID: id, Title: in.Title, URL: "https://example.blogspot.com/" + id + ".html"}, nil
}

func (b *fakeBlog) DeletePost(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id == b.failOn {
		return blogger.ErrNotFound
	}
	b.deleted = append(b.deleted, id)
	return nil
}

type fakeConverter struct{}

func (fakeConverter) ToHTML(_ context.Context, src, format string, _ []string) (string, error) {
	if format == "broken" {
		return "", stderrors.New("no converter")
	}
	return "<p>" + strings.TrimSpace(src) + "</p>", nil
}

func newService(t *testing.T, fs afero.Fs, blog Blog, opts ...Option) (*Service, journal.Store) {
	t.Helper()
	j, err := journal.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	opts = append([]Option{WithJournal(j), WithRunID("run-1")}, opts...)
	return New(blog, fakeConverter{}, postfile.NewStore(fs, strings.NewReader("")), opts...), j
}

func TestPublishFile_Create_WritesBackPostID(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "post.md", []byte("<!--\nTitle: t\nLabels: a, b\nPublished: true\n-->\nBody\n"), 0o644))
	blog := newFakeBlog()
	svc, j := newService(t, fs, blog)

	res, err := svc.PublishFile(t.Context(), "post.md")
	require.NoError(t, err)
	assert.Equal(t, frontmatter.CommandCreate, res.Command)
	assert.Equal(t, "1000", res.PostID)
	assert.True(t, res.WroteBack)

	require.Len(t, blog.inserted, 1)
	assert.Equal(t, "t", blog.inserted[0].Title)
	assert.Equal(t, []string{"a", "b"}, blog.inserted[0].Labels)
	assert.Equal(t, "<p>Body</p>", blog.inserted[0].Content)
	assert.True(t, blog.inserted[0].Publish)

	data, err := afero.ReadFile(fs, "post.md")
	require.NoError(t, err)
	assert.Equal(t, "<!--\nTitle: t\nLabels: a, b\nPublished: true\nPostId: 1000\n-->\nBody\n", string(data))

	entries, err := j.List(t.Context(), journal.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "run-1", entries[0].RunID)
	assert.Equal(t, "1000", entries[0].PostID)
	assert.Equal(t, journal.StatusOK, entries[0].Status)
}

func TestPublishFile_SecondRunIsSkippedUnlessForced(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "post.md", []byte("<!--\nTitle: t\n-->\nBody\n"), 0o644))
	blog := newFakeBlog()
	svc, j := newService(t, fs, blog)

	_, err := svc.PublishFile(t.Context(), "post.md")
	require.NoError(t, err)

	res, err := svc.PublishFile(t.Context(), "post.md")
	require.NoError(t, err)
	assert.Equal(t, frontmatter.CommandUpdate, res.Command)
	assert.True(t, res.Skipped)
	assert.Empty(t, blog.updated)

	forced := New(blog, fakeConverter{}, postfile.NewStore(fs, nil), WithJournal(j), WithForce(true))
	res, err = forced.PublishFile(t.Context(), "post.md")
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Contains(t, blog.updated, "1000")
}

func TestPublishFile_ChangedContent_Updates(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "post.md", []byte("<!--\nTitle: t\n-->\nBody\n"), 0o644))
	blog := newFakeBlog()
	svc, _ := newService(t, fs, blog)

	_, err := svc.PublishFile(t.Context(), "post.md")
	require.NoError(t, err)
	data, err := afero.ReadFile(fs, "post.md")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "post.md", []byte(strings.Replace(string(data), "Body", "New body", 1)), 0o644))

	res, err := svc.PublishFile(t.Context(), "post.md")
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, "<p>New body</p>", blog.updated["1000"].Content)
}

func TestPublishFile_Stdin_ReturnsRenderedContent(t *testing.T) {
	blog := newFakeBlog()
	svc := New(blog, fakeConverter{}, postfile.NewStore(afero.NewMemMapFs(), strings.NewReader("+++\ntitle = \"t\"\n+++\nBody\n")))

	res, err := svc.PublishFile(t.Context(), postfile.Stdin)
	require.NoError(t, err)
	assert.False(t, res.WroteBack)
	assert.Equal(t, "+++\ntitle = \"t\"\nid = \"1000\"\n+++\nBody\n", res.Rendered)
}

func TestPublishFile_Errors_AreClassifiedWithPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.md", []byte("no header\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "conv.md", []byte("<!--\nFormat: broken\n-->\nx"), 0o644))
	svc, _ := newService(t, fs, newFakeBlog())

	_, err := svc.PublishFile(t.Context(), "bad.md")
	require.Error(t, err)
	assert.Equal(t, errors.CategoryFrontMatter, errors.GetCategory(err))
	assert.True(t, stderrors.Is(err, frontmatter.ErrUnknownFrontMatterFormat))
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	path, _ := ce.Context().GetString("path")
	assert.Equal(t, "bad.md", path)

	_, err = svc.PublishFile(t.Context(), "conv.md")
	assert.Equal(t, errors.CategoryConversion, errors.GetCategory(err))

	_, err = svc.PublishFile(t.Context(), "missing.md")
	assert.Equal(t, errors.CategoryFileSystem, errors.GetCategory(err))
}

func TestPublishFiles_OneFailureDoesNotStopOthers(t *testing.T) {
	fs := afero.NewMemMapFs()
	for i := range 6 {
		content := fmt.Sprintf("<!--\nTitle: post %d\n-->\nbody %d\n", i, i)
		if i == 2 {
			content = "garbage"
		}
		require.NoError(t, afero.WriteFile(fs, fmt.Sprintf("p%d.md", i), []byte(content), 0o644))
	}
	blog := newFakeBlog()
	blog.failOn = "post 4"
	svc, _ := newService(t, fs, blog, WithConcurrency(3))

	results := svc.PublishFiles(t.Context(), []string{"p0.md", "p1.md", "p2.md", "./p1.md", "p3.md", "p4.md", "p5.md"})
	require.Len(t, results, 6)
	assert.Equal(t, 2, Failed(results))
	assert.Len(t, blog.inserted, 4)

	for _, r := range results {
		switch r.Path {
		case "p2.md":
			assert.Equal(t, errors.CategoryFrontMatter, errors.GetCategory(r.Err))
		case "p4.md":
			assert.Equal(t, errors.CategoryRemote, errors.GetCategory(r.Err))
		default:
			assert.NoError(t, r.Err, r.Path)
			assert.True(t, r.WroteBack)
		}
	}
}

func TestPostUpdateDelete(t *testing.T) {
	blog := newFakeBlog()
	svc, j := newService(t, afero.NewMemMapFs(), blog)

	post, err := svc.Post(t.Context(), PostRequest{Title: "t", Content: "hi", Format: "markdown", Labels: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "1000", post.ID)
	assert.Equal(t, "<p>hi</p>", blog.inserted[0].Content)

	_, err = svc.Update(t.Context(), "1000", PostRequest{Title: "t2"})
	require.NoError(t, err)
	assert.Equal(t, "", blog.updated["1000"].Content)
	assert.Equal(t, "t2", blog.updated["1000"].Title)

	blog.failOn = "7"
	err = svc.Delete(t.Context(), "1000", "7", "8")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, blogger.ErrNotFound))
	assert.Equal(t, []string{"1000"}, blog.deleted)

	entries, err := j.List(t.Context(), journal.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "delete", entries[0].Command)
	assert.Equal(t, journal.StatusFailed, entries[0].Status)
}
