package installer

import (
	"archive/zip"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lakshaymaurya-felt/macmole/internal/config"
	"github.com/lakshaymaurya-felt/macmole/internal/walker"
)

// zipInspectLimit is how many archive entries are examined when deciding
// whether a .zip actually holds an installer payload. An archive whose
// only installer entry sits past the limit is not reported.
const zipInspectLimit = 50

// zipPayloadSuffixes mark an archive entry as an installer payload.
// Entries are matched by suffix, so path-prefixed names qualify too.
var zipPayloadSuffixes = []string{".app/", ".pkg", ".dmg", ".xip"}

// Record is one leftover installer file. Records are deduplicated by
// absolute path across all roots.
type Record struct {
	Path        string
	SizeBytes   int64
	Source      string
	DisplayName string
}

// Scanner walks the configured user-content roots for installer files.
type Scanner struct {
	// Roots overrides the fixed installer roots. Used by tests.
	Roots []config.InstallerRoot

	Log *zap.Logger
}

// NewScanner returns a Scanner with production defaults.
func NewScanner(log *zap.Logger) *Scanner {
	return &Scanner{Log: log}
}

func (s *Scanner) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Scan walks every root to the bounded depth, collects matching files,
// deduplicates by absolute path (a file reachable from two roots counts
// once), and returns the result sorted by size descending, path
// ascending on ties.
func (s *Scanner) Scan() []Record {
	roots := s.Roots
	if roots == nil {
		roots = config.InstallerRoots()
	}

	var (
		mu  sync.Mutex
		all []Record
	)

	var g errgroup.Group
	for _, root := range roots {
		g.Go(func() error {
			found := s.scanRoot(root)
			mu.Lock()
			all = append(all, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]bool, len(all))
	records := all[:0]
	for _, r := range all {
		if seen[r.Path] {
			continue
		}
		seen[r.Path] = true
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].SizeBytes != records[j].SizeBytes {
			return records[i].SizeBytes > records[j].SizeBytes
		}
		return records[i].Path < records[j].Path
	})
	return records
}

// scanRoot performs the plain bounded walk below one root.
func (s *Scanner) scanRoot(root config.InstallerRoot) []Record {
	var found []Record
	w := &walker.Walker{MaxDepth: config.InstallerMaxDepth, Log: s.Log}
	w.Walk(root.Path, func(path string, d fs.DirEntry) {
		if d.IsDir() {
			return
		}
		if !s.qualifies(path) {
			return
		}
		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		found = append(found, Record{
			Path:        path,
			SizeBytes:   size,
			Source:      root.Label,
			DisplayName: displayName(path, root.Label),
		})
	})
	return found
}

// qualifies applies the extension rule, with the .zip payload check.
func (s *Scanner) qualifies(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !config.IsInstallerExtension(ext) {
		return false
	}
	if ext != ".zip" {
		return true
	}
	ok := zipHasInstallerPayload(path)
	if !ok {
		s.log().Debug("zip has no installer payload", zap.String("path", path))
	}
	return ok
}

// zipHasInstallerPayload opens the archive in listing mode and inspects
// the first zipInspectLimit entry names. Inspection failure (corrupt or
// unreadable archive) excludes the file rather than including it.
func zipHasInstallerPayload(path string) bool {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	defer r.Close()

	for i, f := range r.File {
		if i >= zipInspectLimit {
			break
		}
		name := f.Name
		for _, suffix := range zipPayloadSuffixes {
			if strings.HasSuffix(name, suffix) {
				return true
			}
		}
	}
	return false
}

// displayName derives the cosmetic name shown to the user. Homebrew's
// download cache prefixes filenames with a 64-hex content hash and "--";
// that prefix is stripped for display only, the path is untouched.
func displayName(path, source string) string {
	name := filepath.Base(path)
	if source == config.HomebrewCacheLabel {
		name = StripContentHashPrefix(name)
	}
	return name
}

// StripContentHashPrefix removes a leading 64-character lowercase-hex
// string followed by "--", when present.
func StripContentHashPrefix(name string) string {
	if len(name) <= 66 || name[64:66] != "--" {
		return name
	}
	for _, c := range name[:64] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return name
		}
	}
	return name[66:]
}
