package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lakshaymaurya-felt/macmole/internal/config"
	"github.com/lakshaymaurya-felt/macmole/internal/core"
	"github.com/lakshaymaurya-felt/macmole/internal/walker"
)

// CleanableDir is one regenerable cache or build directory inside a
// project. Only directories that exist with a measured size above zero
// are reported.
type CleanableDir struct {
	Name      string
	Path      string
	SizeBytes int64
}

// Project is one directory that matched at least one ecosystem rule and
// holds at least one non-empty cleanable directory.
type Project struct {
	Name       string
	Path       string
	Ecosystems []string
	Cleanable  []CleanableDir
}

// TotalSize returns the sum of the project's cleanable directory sizes.
func (p Project) TotalSize() int64 {
	var total int64
	for _, d := range p.Cleanable {
		total += d.SizeBytes
	}
	return total
}

// Scanner discovers projects under the configured workspace roots.
type Scanner struct {
	// Roots overrides the fixed workspace roots. Used by tests.
	Roots []string

	// Rules overrides the ecosystem rule catalog. Used by tests.
	Rules []config.EcosystemRule

	// DirSize overrides cleanable-directory measurement. Used by tests.
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

func (s *Scanner) rules() []config.EcosystemRule {
	if s.Rules != nil {
		return s.Rules
	}
	return config.EcosystemRules()
}

func (s *Scanner) dirSize(path string) int64 {
	if s.DirSize != nil {
		return s.DirSize(path)
	}
	return core.DirSize(path)
}

// Scan walks every configured root and returns projects in discovery
// order: roots in configuration order, and within a root the
// deterministic depth-first directory order. A matched project's subtree
// is never descended, so each project is reported exactly once, at the
// shallowest matching depth.
func (s *Scanner) Scan() []Project {
	roots := s.Roots
	if roots == nil {
		roots = config.WorkspaceRoots()
	}

	perRoot := make([][]Project, len(roots))
	var g errgroup.Group
	for i, root := range roots {
		g.Go(func() error {
			perRoot[i] = s.scanRoot(root)
			return nil
		})
	}
	_ = g.Wait()

	var projects []Project
	for _, found := range perRoot {
		projects = append(projects, found...)
	}
	return projects
}

// scanRoot discovers projects under one root. The walker handles depth
// bounding, symlink exclusion, and hidden-directory skipping; the match
// predicate records which ecosystems matched each directory so the visit
// callback does not have to re-list it.
func (s *Scanner) scanRoot(root string) []Project {
	rules := s.rules()
	matched := make(map[string][]string)

	w := &walker.Walker{
		MaxDepth:   config.WorkspaceMaxDepth,
		SkipHidden: true,
		Log:        s.Log,
		Match: func(dir string, entries []fs.DirEntry) bool {
			ids := matchEcosystems(rules, entries)
			if len(ids) == 0 {
				return false
			}
			matched[dir] = ids
			return true
		},
	}

	var projects []Project
	w.Walk(root, func(path string, d fs.DirEntry) {
		if !d.IsDir() {
			return
		}
		project, ok := s.buildProject(path, matched[path], rules)
		if !ok {
			return
		}
		projects = append(projects, project)
	})
	return projects
}

// buildProject measures the union of cleanable directories over every
// matched ecosystem. Projects whose filtered set ends up empty are
// dropped entirely.
func (s *Scanner) buildProject(dir string, ecosystems []string, rules []config.EcosystemRule) (Project, bool) {
	var cleanable []CleanableDir
	for _, name := range cleanDirUnion(rules, ecosystems) {
		path := filepath.Join(dir, name)
		info, err := os.Lstat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		size := s.dirSize(path)
		if size <= 0 {
			continue
		}
		cleanable = append(cleanable, CleanableDir{Name: name, Path: path, SizeBytes: size})
	}
	if len(cleanable) == 0 {
		s.log().Debug("dropping project with nothing to clean", zap.String("dir", dir))
		return Project{}, false
	}
	return Project{
		Name:       filepath.Base(dir),
		Path:       dir,
		Ecosystems: ecosystems,
		Cleanable:  cleanable,
	}, true
}

// matchEcosystems returns the IDs of every rule the directory's
// immediate entries satisfy, in catalog order. Matching looks at names
// only, never file contents.
func matchEcosystems(rules []config.EcosystemRule, entries []fs.DirEntry) []string {
	var ids []string
	for _, rule := range rules {
		if ruleMatches(rule, entries) {
			ids = append(ids, rule.ID)
		}
	}
	return ids
}

func ruleMatches(rule config.EcosystemRule, entries []fs.DirEntry) bool {
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() {
			for _, marker := range rule.FileMarkers {
				if name == marker {
					return true
				}
			}
			for _, suffix := range rule.FileSuffixes {
				if strings.HasSuffix(name, suffix) {
					return true
				}
			}
			continue
		}
		for _, suffix := range rule.DirSuffixes {
			if strings.HasSuffix(name, suffix) {
				return true
			}
		}
	}
	return false
}

// cleanDirUnion returns the deduplicated union of CleanDirNames over the
// matched ecosystems, preserving catalog order for deterministic output.
func cleanDirUnion(rules []config.EcosystemRule, ecosystems []string) []string {
	matched := make(map[string]bool, len(ecosystems))
	for _, id := range ecosystems {
		matched[id] = true
	}
	seen := make(map[string]bool)
	var names []string
	for _, rule := range rules {
		if !matched[rule.ID] {
			continue
		}
		for _, name := range rule.CleanDirNames {
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
