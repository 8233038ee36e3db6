package apps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
	"howett.net/plist"

	"github.com/lakshaymaurya-felt/macmole/internal/config"
	"github.com/lakshaymaurya-felt/macmole/internal/core"
)

const (
	// mdlsTimeout bounds each Spotlight metadata lookup.
	mdlsTimeout = 5 * time.Second

	// UnknownBundleID is the sentinel for bundles whose Info.plist
	// cannot be read or carries no identifier.
	UnknownBundleID = "unknown"

	// LastUsedNever means Spotlight has no last-used attribute for the
	// bundle. LastUsedUnknown means the attribute existed but could not
	// be read or parsed. Both are sentinels, not dates.
	LastUsedNever   = "Never"
	LastUsedUnknown = "Unknown"
)

// maxConcurrentBundles bounds per-bundle size/metadata fan-out.
const maxConcurrentBundles = 8

// Record is one removable application bundle. Records are created fresh
// on every scan and never persisted.
type Record struct {
	BundlePath string
	Name       string
	BundleID   string
	SizeBytes  int64
	LastUsed   string
}

// SizeKB returns the bundle size in whole kilobytes, the unit records
// are ranked by.
func (r Record) SizeKB() int64 {
	return r.SizeBytes / 1024
}

// PipeRecord renders the record as the fixed seven-field pipe-delimited
// line consumed by scripting frontends:
//
//	epoch|absolute_path|display_name|bundle_id|human_size|last_used|size_in_kb
func (r Record) PipeRecord(epoch int64) string {
	return fmt.Sprintf("%d|%s|%s|%s|%s|%s|%d",
		epoch, r.BundlePath, r.Name, r.BundleID,
		core.FormatSize(r.SizeBytes), r.LastUsed, r.SizeKB())
}

// Scanner enumerates .app bundles under the known application roots and
// every mounted volume's Applications directory. All fields are optional;
// zero values give production behavior.
type Scanner struct {
	// Roots overrides the fixed application roots. Used by tests.
	Roots []string

	// VolumeRoots overrides mounted-volume discovery. Used by tests.
	VolumeRoots func() []string

	// LastUsed overrides the Spotlight last-used lookup. Used by tests.
	LastUsed func(path string) string

	// DirSize overrides bundle size measurement. Used by tests.
	DirSize func(path string) int64

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

// Scan enumerates all roots and returns the non-protected bundles,
// sorted by size in kilobytes descending (path ascending on ties, so
// repeated scans of an unchanged disk return identical sequences).
func (s *Scanner) Scan(ctx context.Context) []Record {
	roots := s.roots()

	var (
		mu      sync.Mutex
		records []Record
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBundles)

	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			// Missing or unreadable root contributes nothing.
			s.log().Debug("skipping application root", zap.String("root", root), zap.Error(err))
			continue
		}
		for _, e := range entries {
			if !strings.HasSuffix(e.Name(), ".app") || !e.IsDir() {
				continue
			}
			bundle := filepath.Join(root, e.Name())
			g.Go(func() error {
				rec, ok := s.inspect(ctx, bundle)
				if !ok {
					return nil
				}
				mu.Lock()
				records = append(records, rec)
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	sort.Slice(records, func(i, j int) bool {
		ki, kj := records[i].SizeKB(), records[j].SizeKB()
		if ki != kj {
			return ki > kj
		}
		return records[i].BundlePath < records[j].BundlePath
	})
	return records
}

// inspect builds the record for one bundle. Protected bundles return
// ok=false and are dropped before any size or metadata work.
func (s *Scanner) inspect(ctx context.Context, bundle string) (Record, bool) {
	bundleID := readBundleID(bundle)
	if config.IsProtectedApp(bundleID, bundle) {
		s.log().Debug("dropping protected application",
			zap.String("bundle", bundle), zap.String("id", bundleID))
		return Record{}, false
	}

	rec := Record{
		BundlePath: bundle,
		Name:       readBundleName(bundle),
		BundleID:   bundleID,
		SizeBytes:  s.dirSize(bundle),
		LastUsed:   s.lastUsed(ctx, bundle),
	}
	return rec, true
}

func (s *Scanner) dirSize(path string) int64 {
	if s.DirSize != nil {
		return s.DirSize(path)
	}
	return core.DirSize(path)
}

func (s *Scanner) lastUsed(ctx context.Context, path string) string {
	if s.LastUsed != nil {
		return s.LastUsed(path)
	}
	return mdlsLastUsed(ctx, path)
}

// ─── Root Discovery ──────────────────────────────────────────────────────────

// roots returns the fixed application roots plus every mounted volume's
// Applications directory that is not identical (device+inode) to one
// already listed. The fixed list itself is deduplicated the same way, so
// a root reachable twice is scanned once.
func (s *Scanner) roots() []string {
	fixed := s.Roots
	if fixed == nil {
		fixed = config.ApplicationRoots()
	}

	seen := make(map[[2]uint64]bool)
	var roots []string
	add := func(path string) {
		var st unix.Stat_t
		if err := unix.Stat(path, &st); err != nil {
			return
		}
		key := [2]uint64{uint64(st.Dev), uint64(st.Ino)}
		if seen[key] {
			return
		}
		seen[key] = true
		roots = append(roots, path)
	}

	for _, r := range fixed {
		add(r)
	}
	for _, v := range s.volumeRoots() {
		if len(roots) >= len(fixed)+config.MaxVolumeRoots {
			break
		}
		add(v)
	}
	return roots
}

// volumeRoots lists /Volumes/*/Applications candidates for every mounted
// partition. Discovery failure degrades to the fixed roots only.
func (s *Scanner) volumeRoots() []string {
	if s.VolumeRoots != nil {
		return s.VolumeRoots()
	}
	parts, err := disk.Partitions(false)
	if err != nil {
		s.log().Debug("volume enumeration failed", zap.Error(err))
		return nil
	}
	var candidates []string
	for _, p := range parts {
		if !strings.HasPrefix(p.Mountpoint, "/Volumes/") {
			continue
		}
		candidates = append(candidates, filepath.Join(p.Mountpoint, "Applications"))
	}
	return candidates
}

// ─── Bundle Metadata ─────────────────────────────────────────────────────────

// infoPlist is the subset of Contents/Info.plist the scanner reads.
type infoPlist struct {
	BundleID    string `plist:"CFBundleIdentifier"`
	BundleName  string `plist:"CFBundleName"`
	DisplayName string `plist:"CFBundleDisplayName"`
}

func readInfoPlist(bundle string) (infoPlist, error) {
	data, err := os.ReadFile(filepath.Join(bundle, "Contents", "Info.plist"))
	if err != nil {
		return infoPlist{}, err
	}
	var info infoPlist
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return infoPlist{}, err
	}
	return info, nil
}

// readBundleID extracts CFBundleIdentifier; any failure yields the
// "unknown" sentinel rather than dropping the bundle.
func readBundleID(bundle string) string {
	info, err := readInfoPlist(bundle)
	if err != nil || info.BundleID == "" {
		return UnknownBundleID
	}
	return info.BundleID
}

// readBundleName prefers the display name, then the bundle name, then
// the directory name without its .app suffix.
func readBundleName(bundle string) string {
	info, _ := readInfoPlist(bundle)
	if info.DisplayName != "" {
		return info.DisplayName
	}
	if info.BundleName != "" {
		return info.BundleName
	}
	return strings.TrimSuffix(filepath.Base(bundle), ".app")
}

// mdlsLastUsed asks Spotlight for kMDItemLastUsedDate. A missing
// attribute means the app was never opened; lookup or parse failures
// yield the Unknown sentinel.
func mdlsLastUsed(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, mdlsTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "mdls", "-name", "kMDItemLastUsedDate", "-raw", path).Output()
	if err != nil {
		return LastUsedUnknown
	}
	raw := strings.TrimSpace(string(out))
	if raw == "" || raw == "(null)" {
		return LastUsedNever
	}
	// mdls -raw prints e.g. "2024-11-03 09:41:12 +0000".
	t, err := time.Parse("2006-01-02 15:04:05 -0700", raw)
	if err != nil {
		return LastUsedUnknown
	}
	return t.Format("2006-01-02")
}
