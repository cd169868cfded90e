package crawler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	got, err := NormalizeURL("HTTPS://Scholar.Google.com:443/scholar?start=10&q=a#frag")
	require.NoError(t, err)
	require.Equal(t, "https://scholar.google.com/scholar?q=a&start=10", got)
}

func TestResolveAgainstOrigin(t *testing.T) {
	base, err := url.Parse("https://scholar.google.com/scholar?q=a&start=0")
	require.NoError(t, err)

	rel, err := ResolveAgainstOrigin(base, "/scholar?start=10&q=a")
	require.NoError(t, err)
	require.Equal(t, "https://scholar.google.com/scholar?start=10&q=a", rel.String())

	abs, err := ResolveAgainstOrigin(base, "https://example.org/paper.pdf")
	require.NoError(t, err)
	require.Equal(t, "https://example.org/paper.pdf", abs.String())
}

func TestWithOffset(t *testing.T) {
	u, err := url.Parse("https://scholar.google.com/citations?user=abc&cstart=0&pagesize=100")
	require.NoError(t, err)

	next := WithOffset(u, "cstart", 100)
	require.Equal(t, "100", next.Query().Get("cstart"))
	require.Equal(t, "abc", next.Query().Get("user"))
	require.Equal(t, "0", u.Query().Get("cstart"), "input URL must not be modified")

	missing, err := url.Parse("https://scholar.google.com/citations?user=abc")
	require.NoError(t, err)
	require.Equal(t, "100", WithOffset(missing, "cstart", 100).Query().Get("cstart"))
}
