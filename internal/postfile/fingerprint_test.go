package postfile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/easyblogger/internal/frontmatter"
)

func TestFingerprint_IgnoresWrittenBackID(t *testing.T) {
	before, err := frontmatter.Parse("<!--\nTitle: t\nLabels: a\n-->\nbody\n")
	require.NoError(t, err)

	rendered, err := frontmatter.Render(before, "1000")
	require.NoError(t, err)
	after, err := frontmatter.Parse(rendered)
	require.NoError(t, err)

	fpBefore, err := Fingerprint(before)
	require.NoError(t, err)
	fpAfter, err := Fingerprint(after)
	require.NoError(t, err)
	require.NotEmpty(t, fpBefore)
	require.Equal(t, fpBefore, fpAfter)
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	a, err := frontmatter.Parse("<!--\nTitle: t\n-->\nbody\n")
	require.NoError(t, err)
	b, err := frontmatter.Parse("<!--\nTitle: t\n-->\nbody changed\n")
	require.NoError(t, err)
	c, err := frontmatter.Parse("<!--\nTitle: other\n-->\nbody\n")
	require.NoError(t, err)

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	fc, err := Fingerprint(c)
	require.NoError(t, err)

	require.NotEqual(t, fa, fb)
	require.NotEqual(t, fa, fc)
}

func TestFingerprint_Nil_Fails(t *testing.T) {
	_, err := Fingerprint(nil)
	require.Error(t, err)
}
