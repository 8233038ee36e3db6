package installer

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/macmole/internal/config"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

// writeZip builds an archive whose entries carry the given names.
func writeZip(t *testing.T, path string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		if strings.HasSuffix(name, "/") {
			continue
		}
		_, err = w.Write([]byte("x"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func paths(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = filepath.Base(r.Path)
	}
	return out
}

func TestScanFindsInstallerExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tool.dmg"), 300)
	writeFile(t, filepath.Join(root, "setup.pkg"), 100)
	writeFile(t, filepath.Join(root, "nested", "xcode.xip"), 200)
	writeFile(t, filepath.Join(root, "notes.txt"), 999)

	s := &Scanner{Roots: []config.InstallerRoot{{Path: root, Label: "Downloads"}}}
	records := s.Scan()

	assert.Equal(t, []string{"tool.dmg", "xcode.xip", "setup.pkg"}, paths(records))
	for _, r := range records {
		assert.Equal(t, "Downloads", r.Source)
	}
}

func TestScanDeduplicatesOverlappingRoots(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dup.dmg"), 100)

	s := &Scanner{Roots: []config.InstallerRoot{
		{Path: root, Label: "Downloads"},
		{Path: root, Label: "Desktop"},
	}}
	records := s.Scan()

	require.Len(t, records, 1)
	assert.Equal(t, "dup.dmg", filepath.Base(records[0].Path))
}

func TestScanTiesBreakByPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bbb.pkg"), 100)
	writeFile(t, filepath.Join(root, "aaa.pkg"), 100)

	s := &Scanner{Roots: []config.InstallerRoot{{Path: root, Label: "Downloads"}}}
	assert.Equal(t, []string{"aaa.pkg", "bbb.pkg"}, paths(s.Scan()))
}

func TestZipWithPayloadQualifies(t *testing.T) {
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "app.zip"), "readme.txt", "Foo.app/Contents/Info.plist", "Foo.app/")
	writeZip(t, filepath.Join(root, "pkg.zip"), "dist/Installer.pkg")
	writeZip(t, filepath.Join(root, "plain.zip"), "readme.txt", "photo.jpg")

	s := &Scanner{Roots: []config.InstallerRoot{{Path: root, Label: "Downloads"}}}
	got := paths(s.Scan())

	assert.Contains(t, got, "app.zip")
	assert.Contains(t, got, "pkg.zip")
	assert.NotContains(t, got, "plain.zip")
}

func TestZipPayloadBeyondInspectLimitIgnored(t *testing.T) {
	root := t.TempDir()
	names := make([]string, 0, zipInspectLimit+1)
	for i := 0; i < zipInspectLimit; i++ {
		names = append(names, "filler"+strings.Repeat("x", i%5)+".txt")
	}
	names = append(names, "late/Installer.pkg")
	writeZip(t, filepath.Join(root, "deep.zip"), names...)

	assert.False(t, zipHasInstallerPayload(filepath.Join(root, "deep.zip")))
}

func TestCorruptZipExcluded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "broken.zip"), 64)

	s := &Scanner{Roots: []config.InstallerRoot{{Path: root, Label: "Downloads"}}}
	assert.Empty(t, s.Scan())
}

func TestHomebrewDisplayNameStripsHash(t *testing.T) {
	hash := strings.Repeat("ab", 32)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, hash+"--wget-1.24.5.catalina.bottle.pkg"), 100)

	s := &Scanner{Roots: []config.InstallerRoot{{Path: root, Label: config.HomebrewCacheLabel}}}
	records := s.Scan()

	require.Len(t, records, 1)
	assert.Equal(t, "wget-1.24.5.catalina.bottle.pkg", records[0].DisplayName)
	assert.Equal(t, hash+"--wget-1.24.5.catalina.bottle.pkg", filepath.Base(records[0].Path))
}

func TestStripContentHashPrefix(t *testing.T) {
	hash := strings.Repeat("0f", 32)
	cases := []struct {
		in, want string
	}{
		{hash + "--pkg.dmg", "pkg.dmg"},
		{hash + "-pkg.dmg", hash + "-pkg.dmg"},
		{strings.Repeat("G", 64) + "--pkg.dmg", strings.Repeat("G", 64) + "--pkg.dmg"},
		{"short--pkg.dmg", "short--pkg.dmg"},
		{hash + "--", hash + "--"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StripContentHashPrefix(c.in), c.in)
	}
}
