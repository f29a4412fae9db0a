package frontmatter

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse_LegacyHTMLComment_ResolvesUpdate(t *testing.T) {
	input := "<!--\nTitle: t\nLabels: l\nPostId: \"234\"\nPublished: false\nPublishDate: 2018-01-01T10:00:00\n-->\n"

	fm, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, DialectYAMLHTMLComment, fm.Dialect)
	require.True(t, fm.LegacyKeys)
	require.Equal(t, "t", fm.Title)
	require.Equal(t, []string{"l"}, fm.Labels)
	require.Equal(t, "234", fm.PostID)
	require.Equal(t, "markdown", fm.Format)
	require.False(t, fm.Publish)
	require.NotNil(t, fm.PublishDate)
	require.Equal(t, "2018-01-01T10:00:00", fm.PublishDate.Format("2006-01-02T15:04:05"))
	require.Empty(t, fm.Filters)
	require.Empty(t, fm.Body)
	require.Equal(t, CommandUpdate, Resolve(fm))
}

func TestParse_IndentedHTMLComment_ParsesHeader(t *testing.T) {
	input := `
            <!--
            Title: t
            Labels: l
            PostId: "234"
            Published: false
            PublishDate: 2018-01-01T10:00:00
            -->
        `

	fm, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, "t", fm.Title)
	require.Equal(t, "234", fm.PostID)
	require.Equal(t, "        ", fm.Body)
	require.Equal(t, CommandUpdate, Resolve(fm))
}

func TestParse_HugoTOML_DefaultsToAsciidoc(t *testing.T) {
	input := "+++\ntitle=\"t\"\nid=\"1234\"\ntags=[\"l\",\"a\",\"c\"]\npublishdate=2018-01-01T10:00:00\n+++\n\nbody"

	fm, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, DialectTOMLFenced, fm.Dialect)
	require.False(t, fm.LegacyKeys)
	require.Equal(t, "t", fm.Title)
	require.Equal(t, "1234", fm.PostID)
	require.Equal(t, []string{"l", "a", "c"}, fm.Labels)
	require.Equal(t, "asciidoc", fm.Format)
	require.False(t, fm.Publish)
	require.NotNil(t, fm.PublishDate)
	require.Equal(t, time.Date(2018, 1, 1, 10, 0, 0, 0, time.Local), *fm.PublishDate)
	require.Equal(t, "\nbody", fm.Body)
	require.Equal(t, CommandUpdate, Resolve(fm))
}

func TestParse_TOMLWithLegacyKeys_UsesLegacyMapping(t *testing.T) {
	input := "+++\nTitle = \"t\"\nLabels = \"a, b\"\nPublished = true\n+++\nbody\n"

	fm, err := Parse(input)
	require.NoError(t, err)
	require.True(t, fm.LegacyKeys)
	require.Equal(t, []string{"a", "b"}, fm.Labels)
	require.Equal(t, "markdown", fm.Format)
	require.True(t, fm.Publish)
	require.Equal(t, CommandCreate, Resolve(fm))
}

func TestParse_NumericTOMLID_IsStringified(t *testing.T) {
	fm, err := Parse("+++\nid = 42\n+++\n")
	require.NoError(t, err)
	require.Equal(t, "42", fm.PostID)
}

func TestParse_SlashComment_ParsesYAML(t *testing.T) {
	input := "////\nTitle: t\nPostId: 42\nFormat: asciidoc\n////\n= Heading\n"

	fm, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, DialectYAMLSlashComment, fm.Dialect)
	require.Equal(t, "42", fm.PostID)
	require.Equal(t, "asciidoc", fm.Format)
	require.Equal(t, "= Heading\n", fm.Body)
}

func TestParse_EmptyPostID_ResolvesCreate(t *testing.T) {
	fm, err := Parse("<!--\nTitle: t\nPostId:\n-->\nabc")
	require.NoError(t, err)
	require.Empty(t, fm.PostID)
	require.Equal(t, CommandCreate, Resolve(fm))
}

func TestParse_CommaSeparatedLabels_AreSplitAndTrimmed(t *testing.T) {
	fm, err := Parse("<!--\nLabels: l, a,  c ,\n-->\n")
	require.NoError(t, err)
	require.Equal(t, []string{"l", "a", "c"}, fm.Labels)
}

func TestParse_EmptyLabels_DefaultToUntagged(t *testing.T) {
	cases := []string{
		"<!--\nLabels:\n-->\n",
		"<!--\nLabels: \"\"\n-->\n",
		"<!--\nTitle: t\n-->\n",
		"+++\ntags = []\n+++\n",
		"+++\ntitle = \"t\"\n+++\n",
	}
	for _, input := range cases {
		fm, err := Parse(input)
		require.NoError(t, err, input)
		require.Equal(t, []string{DefaultLabel}, fm.Labels, input)
	}
}

func TestParse_EmptyHeader_KeepsBody(t *testing.T) {
	fm, err := Parse("\n            <!--\n            -->\nabc")
	require.NoError(t, err)
	require.Empty(t, fm.Title)
	require.Equal(t, "abc", fm.Body)
	require.Equal(t, []string{DefaultLabel}, fm.Labels)
	require.Equal(t, CommandCreate, Resolve(fm))
}

func TestParse_FormatWithSpaceBeforeColon(t *testing.T) {
	fm, err := Parse("<!--\n            Format : markdown_strict\n\n            -->\nabc")
	require.NoError(t, err)
	require.Equal(t, "markdown_strict", fm.Format)
}

func TestParse_LowercaseLegacyKeys_MatchCaseInsensitively(t *testing.T) {
	fm, err := Parse("<!--\ntitle: t\nformat: rst\npostid: 9\n-->\n")
	require.NoError(t, err)
	require.Equal(t, "t", fm.Title)
	require.Equal(t, "rst", fm.Format)
	require.Equal(t, "9", fm.PostID)
}

func TestParse_LargePostID_KeepsLiteralText(t *testing.T) {
	fm, err := Parse("<!--\nPostId: 7193051398735937373\n-->\n")
	require.NoError(t, err)
	require.Equal(t, "7193051398735937373", fm.PostID)
}

func TestParse_Filters_SequenceOrString(t *testing.T) {
	fm, err := Parse("<!--\nfilters: [pandoc-citeproc, ./f.py]\n-->\n")
	require.NoError(t, err)
	require.Equal(t, []string{"pandoc-citeproc", "./f.py"}, fm.Filters)

	fm, err = Parse("+++\nfilters = \"a,b\"\n+++\n")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, fm.Filters)
}

func TestParse_HugoDraft_InvertsPublish(t *testing.T) {
	fm, err := Parse("+++\ntitle = \"t\"\ndraft = false\n+++\n")
	require.NoError(t, err)
	require.True(t, fm.Publish)

	fm, err = Parse("+++\ntitle = \"t\"\ndraft = true\n+++\n")
	require.NoError(t, err)
	require.False(t, fm.Publish)

	fm, err = Parse("+++\ntitle = \"t\"\ndraft = \"\"\n+++\n")
	require.NoError(t, err)
	require.False(t, fm.Publish)
}

func TestParse_EmptyPublished_IsFalse(t *testing.T) {
	fm, err := Parse("<!--\nPublished:\n-->\n")
	require.NoError(t, err)
	require.False(t, fm.Publish)
}

func TestParse_NonBooleanPublished_IsMalformed(t *testing.T) {
	_, err := Parse("<!--\nPublished: maybe\n-->\n")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedHeader))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "Published", perr.Key)
}

func TestParse_YAML11Booleans_AreAccepted(t *testing.T) {
	for input, want := range map[string]bool{
		"yes": true, "On": true, "Y": true,
		"no": false, "OFF": false, "n": false,
	} {
		fm, err := Parse("<!--\nPublished: " + input + "\n-->\n")
		require.NoError(t, err, input)
		require.Equal(t, want, fm.Publish, input)
	}
}

func TestParse_RecursiveAlias_IsMalformed(t *testing.T) {
	_, err := Parse("<!--\nTitle: t\nx: &a [*a]\n-->\nbody\n")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedHeader))
}

func TestParse_AliasExpansionBomb_IsMalformed(t *testing.T) {
	var b strings.Builder
	b.WriteString("<!--\nTitle: t\nl0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&b, "l%d: &l%d [", i, i)
		for j := 0; j < 10; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "*l%d", i-1)
		}
		b.WriteString("]\n")
	}
	b.WriteString("-->\nbody\n")

	_, err := Parse(b.String())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedHeader))
}

func TestParse_SharedAlias_IsExpanded(t *testing.T) {
	fm, err := Parse("<!--\nTitle: t\nbase: &b [go, cli]\nLabels: *b\nalso: *b\n-->\n")
	require.NoError(t, err)
	require.Equal(t, []string{"go", "cli"}, fm.Labels)
	require.Equal(t, []any{"go", "cli"}, fm.Raw["also"])
}

func TestParse_UnknownEnvelope_ReturnsUnknownFormat(t *testing.T) {
	_, err := Parse("# Just a title\n\nSome text\n")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownFrontMatterFormat))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Contains(t, perr.Excerpt, "# Just a title")
}

func TestParse_UnclosedEnvelope_ReturnsUnknownFormat(t *testing.T) {
	_, err := Parse("<!--\nTitle: t\nbody without a closing delimiter\n")
	require.True(t, errors.Is(err, ErrUnknownFrontMatterFormat))
}

func TestParse_BrokenTOML_ReturnsMalformedHeader(t *testing.T) {
	_, err := Parse("+++\ntitle = \n+++\nbody\n")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedHeader))
}

func TestParse_BrokenYAML_ReturnsMalformedHeader(t *testing.T) {
	_, err := Parse("<!--\nTitle: [unclosed\n-->\nbody\n")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedHeader))
}

func TestParse_ScalarYAMLHeader_ReturnsMalformedHeader(t *testing.T) {
	_, err := Parse("<!--\njust words\n-->\nbody\n")
	require.True(t, errors.Is(err, ErrMalformedHeader))
}

func TestParse_UnknownKeys_AreKeptInRaw(t *testing.T) {
	fm, err := Parse("<!--\nTitle: t\nSeries: go\nextra:\n  nested: 1\n-->\n")
	require.NoError(t, err)
	require.Equal(t, "go", fm.Raw["Series"])
	require.Equal(t, map[string]any{"nested": "1"}, fm.Raw["extra"])
}

func TestResolve_NilRecord_IsCreate(t *testing.T) {
	require.Equal(t, CommandCreate, Resolve(nil))
}

func TestNew_UnknownDialect_Fails(t *testing.T) {
	_, err := New(DialectUnknown, nil, "")
	require.True(t, errors.Is(err, ErrUnknownFrontMatterFormat))
}
