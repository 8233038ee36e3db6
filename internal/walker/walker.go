package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// MatchFunc inspects a directory together with its immediate entries and
// reports whether the directory is a terminal candidate. A matched
// directory is emitted to the visit callback and its subtree is not
// descended into.
type MatchFunc func(dir string, entries []fs.DirEntry) bool

// VisitFunc receives each emitted entry: regular files during plain
// traversal, and matched directories when a MatchFunc is set.
type VisitFunc func(path string, d fs.DirEntry)

// Walker performs a depth-bounded, depth-first traversal. Symbolic links
// are never followed and never reported, which prevents cycles and
// double-counting. Unreadable directories and entries that fail to stat
// contribute nothing; a walk never aborts on a single bad node.
type Walker struct {
	// MaxDepth is the deepest level visited, counting the root's
	// immediate children as depth 1. Values < 1 walk nothing.
	MaxDepth int

	// SkipHidden skips directories whose name starts with a dot.
	SkipHidden bool

	// Match, when set, turns the walk into project discovery: each
	// directory is offered to Match before being descended into.
	Match MatchFunc

	// Log receives per-node debug traces. Nil disables tracing.
	Log *zap.Logger
}

// Walk traverses root. The root itself is never emitted; its children
// are at depth 1.
func (w *Walker) Walk(root string, visit VisitFunc) {
	if w.MaxDepth < 1 {
		return
	}
	w.walk(root, 1, visit)
}

func (w *Walker) walk(dir string, depth int, visit VisitFunc) {
	if depth > w.MaxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable directory contributes nothing.
		if w.Log != nil {
			w.Log.Debug("skipping unreadable directory", zap.String("dir", dir), zap.Error(err))
		}
		return
	}

	for _, e := range entries {
		// Symlinks are skipped entirely, files and directories alike.
		if e.Type()&fs.ModeSymlink != 0 {
			continue
		}

		path := filepath.Join(dir, e.Name())

		if !e.IsDir() {
			if w.Match == nil {
				visit(path, e)
			}
			continue
		}

		if w.SkipHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}

		if w.Match != nil {
			children, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			if w.Match(path, children) {
				// Terminal candidate: emit, do not descend.
				visit(path, e)
				continue
			}
		}

		w.walk(path, depth+1, visit)
	}
}
