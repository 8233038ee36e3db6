package core

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

const (
	kib = 1 << 10
	mib = 1 << 20
	gib = 1 << 30
)

// FormatSize converts a byte count to a human-readable string.
// Bytes are printed whole; KB, MB, and GB carry one decimal place.
func FormatSize(bytes int64) string {
	switch {
	case bytes < kib:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mib:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kib)
	case bytes < gib:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mib)
	default:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gib)
	}
}

// DirSize returns the total size in bytes of all regular files under
// path. Entries that cannot be read or statted contribute nothing, and
// any failure degrades to a smaller (possibly zero) total rather than an
// error. Symlinks are not followed.
func DirSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total
}
