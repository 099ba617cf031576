package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadLinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rss_links.txt")
	content := `
# tech
https://example.com/a.xml

https://example.com/b.xml
  https://example.com/c.xml
# trailing comment
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	links, err := ReadLinks(path)
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://example.com/a.xml",
		"https://example.com/b.xml",
		"https://example.com/c.xml",
	}, links)
}

func TestReadLinksEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rss_links.txt")
	require.NoError(t, os.WriteFile(path, []byte("# only comments\n\n"), 0o644))

	_, err := ReadLinks(path)
	require.ErrorContains(t, err, "no feed links")
}

func TestReadLinksMissingFile(t *testing.T) {
	_, err := ReadLinks(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
