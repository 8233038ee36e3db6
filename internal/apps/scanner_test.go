package apps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBundle lays out a minimal .app directory with an XML Info.plist.
// Empty plist keys are omitted.
func writeBundle(t *testing.T, root, name, bundleID, displayName string) string {
	t.Helper()
	bundle := filepath.Join(root, name)
	contents := filepath.Join(bundle, "Contents")
	require.NoError(t, os.MkdirAll(contents, 0o755))

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
`)
	if bundleID != "" {
		fmt.Fprintf(&b, "\t<key>CFBundleIdentifier</key>\n\t<string>%s</string>\n", bundleID)
	}
	if displayName != "" {
		fmt.Fprintf(&b, "\t<key>CFBundleDisplayName</key>\n\t<string>%s</string>\n", displayName)
	}
	b.WriteString("</dict>\n</plist>\n")

	require.NoError(t, os.WriteFile(filepath.Join(contents, "Info.plist"), []byte(b.String()), 0o644))
	return bundle
}

func newTestScanner(root string, sizes map[string]int64) *Scanner {
	return &Scanner{
		Roots:       []string{root},
		VolumeRoots: func() []string { return nil },
		LastUsed:    func(string) string { return LastUsedNever },
		DirSize: func(path string) int64 {
			return sizes[filepath.Base(path)]
		},
	}
}

func TestScanSortsBySizeDescending(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "Small.app", "com.example.small", "Small")
	writeBundle(t, root, "Big.app", "com.example.big", "Big")
	writeBundle(t, root, "Mid.app", "com.example.mid", "Mid")

	s := newTestScanner(root, map[string]int64{
		"Small.app": 1 << 20,
		"Big.app":   5 << 20,
		"Mid.app":   2 << 20,
	})
	records := s.Scan(context.Background())

	require.Len(t, records, 3)
	assert.Equal(t, "Big", records[0].Name)
	assert.Equal(t, "Mid", records[1].Name)
	assert.Equal(t, "Small", records[2].Name)
}

func TestScanTiesBreakByPath(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "Zeta.app", "com.example.zeta", "Zeta")
	writeBundle(t, root, "Alpha.app", "com.example.alpha", "Alpha")

	s := newTestScanner(root, map[string]int64{"Zeta.app": 1 << 20, "Alpha.app": 1 << 20})
	records := s.Scan(context.Background())

	require.Len(t, records, 2)
	assert.Equal(t, "Alpha", records[0].Name)
	assert.Equal(t, "Zeta", records[1].Name)
}

func TestScanDropsProtectedBundles(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "Finder.app", "com.apple.finder", "Finder")
	writeBundle(t, root, "Editor.app", "com.example.editor", "Editor")

	s := newTestScanner(root, map[string]int64{"Finder.app": 1 << 20, "Editor.app": 1 << 20})
	records := s.Scan(context.Background())

	require.Len(t, records, 1)
	assert.Equal(t, "com.example.editor", records[0].BundleID)
}

func TestScanSkipsNonBundles(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "Real.app", "com.example.real", "Real")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "NotAnApp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.app"), []byte("x"), 0o644))

	s := newTestScanner(root, map[string]int64{"Real.app": 1 << 20})
	records := s.Scan(context.Background())

	require.Len(t, records, 1)
	assert.Equal(t, "com.example.real", records[0].BundleID)
}

func TestScanMissingRootYieldsNothing(t *testing.T) {
	s := newTestScanner(filepath.Join(t.TempDir(), "no-such-dir"), nil)
	assert.Empty(t, s.Scan(context.Background()))
}

func TestBundleIDFallsBackToUnknown(t *testing.T) {
	root := t.TempDir()
	// No Info.plist at all.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Bare.app", "Contents"), 0o755))

	s := newTestScanner(root, map[string]int64{"Bare.app": 1 << 20})
	records := s.Scan(context.Background())

	require.Len(t, records, 1)
	assert.Equal(t, UnknownBundleID, records[0].BundleID)
	assert.Equal(t, "Bare", records[0].Name)
}

func TestBundleNamePrefersDisplayName(t *testing.T) {
	root := t.TempDir()
	bundle := writeBundle(t, root, "Internal.app", "com.example.x", "Friendly Name")
	assert.Equal(t, "Friendly Name", readBundleName(bundle))
}

func TestPipeRecordLayout(t *testing.T) {
	rec := Record{
		BundlePath: "/Applications/Foo.app",
		Name:       "Foo",
		BundleID:   "com.example.foo",
		SizeBytes:  5 << 20,
		LastUsed:   "2024-11-03",
	}
	line := rec.PipeRecord(1730000000)

	fields := strings.Split(line, "|")
	require.Len(t, fields, 7)
	assert.Equal(t, "1730000000", fields[0])
	assert.Equal(t, "/Applications/Foo.app", fields[1])
	assert.Equal(t, "Foo", fields[2])
	assert.Equal(t, "com.example.foo", fields[3])
	assert.Equal(t, "5.0 MB", fields[4])
	assert.Equal(t, "2024-11-03", fields[5])
	assert.Equal(t, "5120", fields[6])
}

func TestRootsDeduplicateByIdentity(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "Solo.app", "com.example.solo", "Solo")

	s := &Scanner{
		Roots:       []string{root, root},
		VolumeRoots: func() []string { return []string{root} },
		LastUsed:    func(string) string { return LastUsedNever },
		DirSize:     func(string) int64 { return 1 << 20 },
	}
	records := s.Scan(context.Background())

	require.Len(t, records, 1)
}
