package config

import (
	"os"
	"path/filepath"
	"strings"
)

// home returns the current user's home directory. Falls back to the
// HOME environment variable only if os.UserHomeDir fails.
func home() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.Getenv("HOME")
}

// ─── Application Scanning ────────────────────────────────────────────────────

// MaxVolumeRoots caps how many /Volumes/*/Applications roots are added,
// guarding against pathological mounts (network shares with hundreds of
// volumes).
const MaxVolumeRoots = 16

// ApplicationRoots returns the fixed directories whose immediate children
// are checked for .app bundles. Mounted-volume roots are discovered
// separately and deduplicated against this list by device+inode.
func ApplicationRoots() []string {
	h := home()
	return []string{
		"/Applications",
		filepath.Join(h, "Applications"),
		"/Library/Input Methods",
		filepath.Join(h, "Library", "Input Methods"),
	}
}

// protectedBundleIDs are system-critical applications that are never
// offered for removal, regardless of where the bundle lives.
var protectedBundleIDs = map[string]bool{
	"com.apple.finder":                  true,
	"com.apple.dock":                    true,
	"com.apple.Safari":                  true,
	"com.apple.systempreferences":       true,
	"com.apple.SystemPreferences":       true,
	"com.apple.launchpad.launcher":      true,
	"com.apple.AppStore":                true,
	"com.apple.Terminal":                true,
	"com.apple.ActivityMonitor":         true,
	"com.apple.DiskUtility":             true,
	"com.apple.keychainaccess":          true,
	"com.apple.installer":               true,
	"com.apple.MigrateAssistant":        true,
	"com.apple.backup.launcher":         true, // Time Machine
	"com.apple.SoftwareUpdate":          true,
	"com.apple.systemevents":            true,
	"com.apple.controlcenter":           true,
	"com.apple.loginwindow":             true,
	"com.apple.coreservices.uiagent":    true,
	"com.apple.CoreSimulator.simulator": true,
}

// protectedPathPrefixes are path prefixes under which bundles are never
// offered for removal and deletion is refused outright.
var protectedPathPrefixes = []string{
	"/System/",
	"/usr/",
	"/bin/",
	"/sbin/",
	"/private/",
	"/Library/Apple/",
	"/Applications/Utilities/",
	"/Applications/Safari.app",
}

// IsProtectedApp reports whether an application bundle is system-critical,
// either by its bundle identifier or by its path. Protected bundles are
// dropped before any further processing.
func IsProtectedApp(bundleID, path string) bool {
	if protectedBundleIDs[bundleID] {
		return true
	}
	return IsProtectedPath(path)
}

// IsProtectedPath reports whether a path sits under one of the
// never-delete prefixes.
func IsProtectedPath(path string) bool {
	for _, prefix := range protectedPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// ─── Installer Scanning ──────────────────────────────────────────────────────

// HomebrewCacheLabel marks records found in the Homebrew download cache.
// Filenames there carry a content-hash prefix that is stripped for display.
const HomebrewCacheLabel = "Homebrew Cache"

// InstallerMaxDepth bounds the walk below each installer root.
const InstallerMaxDepth = 8

// InstallerRoot is one directory scanned for leftover installer files.
type InstallerRoot struct {
	// Path is the directory to walk.
	Path string

	// Label is a human-readable source tag attached to every record
	// found under this root.
	Label string
}

// InstallerRoots returns the fixed user-content directories scanned for
// installer files. Roots that do not exist contribute nothing.
func InstallerRoots() []InstallerRoot {
	h := home()
	return []InstallerRoot{
		{Path: filepath.Join(h, "Downloads"), Label: "Downloads"},
		{Path: filepath.Join(h, "Desktop"), Label: "Desktop"},
		{Path: filepath.Join(h, "Documents"), Label: "Documents"},
		{Path: filepath.Join(h, "Public"), Label: "Public"},
		{Path: "/Users/Shared", Label: "Shared"},
		{Path: filepath.Join(h, "Library", "Caches", "Homebrew", "downloads"), Label: HomebrewCacheLabel},
		{Path: filepath.Join(h, "Library", "Mobile Documents", "com~apple~CloudDocs", "Downloads"), Label: "iCloud Downloads"},
		{Path: filepath.Join(h, "Library", "Containers", "com.apple.mail", "Data", "Library", "Mail Downloads"), Label: "Mail Downloads"},
		{Path: filepath.Join(h, "Library", "Messages", "Attachments"), Label: "Messages Attachments"},
	}
}

// installerExtensions are file extensions treated as installer files.
// .zip is special-cased: the archive contents must confirm an installer
// payload before the file qualifies.
var installerExtensions = map[string]bool{
	".dmg":  true,
	".pkg":  true,
	".mpkg": true,
	".xip":  true,
	".iso":  true,
	".zip":  true,
}

// IsInstallerExtension reports whether ext (lowercase, with leading dot)
// is in the installer set.
func IsInstallerExtension(ext string) bool {
	return installerExtensions[ext]
}

// ─── Workspace Scanning ──────────────────────────────────────────────────────

// WorkspaceMaxDepth bounds the project-discovery walk below each root.
const WorkspaceMaxDepth = 8

// WorkspaceRoots returns the fixed directories under the user's home that
// commonly hold development projects.
func WorkspaceRoots() []string {
	h := home()
	return []string{
		filepath.Join(h, "Projects"),
		filepath.Join(h, "Developer"),
		filepath.Join(h, "Code"),
		filepath.Join(h, "code"),
		filepath.Join(h, "dev"),
		filepath.Join(h, "src"),
		filepath.Join(h, "workspace"),
		filepath.Join(h, "repos"),
		filepath.Join(h, "go", "src"),
	}
}

// EcosystemRule describes how one development ecosystem is recognized
// from a directory's immediate entries, and which subdirectories of a
// matched project are safe to clean. Matching never inspects file
// contents.
type EcosystemRule struct {
	// ID is the unique identifier for this ecosystem.
	ID string

	// FileMarkers match when an immediate entry has exactly this name.
	FileMarkers []string

	// DirSuffixes match when an immediate directory name ends with one
	// of these strings (e.g., ".xcodeproj").
	DirSuffixes []string

	// FileSuffixes match when an immediate file name ends with one of
	// these strings (e.g., ".csproj").
	FileSuffixes []string

	// CleanDirNames are immediate subdirectories of a matched project
	// that hold regenerable build output or dependency caches.
	CleanDirNames []string
}

// EcosystemRules returns the full declarative rule set, in a fixed order.
// The slice and its contents must be treated as immutable.
func EcosystemRules() []EcosystemRule {
	return []EcosystemRule{
		{
			ID:            "node-js-ts",
			FileMarkers:   []string{"package.json", "yarn.lock", "pnpm-lock.yaml", "tsconfig.json"},
			CleanDirNames: []string{"node_modules", ".next", ".nuxt", ".turbo", ".parcel-cache", "dist", "build", "coverage", ".cache"},
		},
		{
			ID:            "rust",
			FileMarkers:   []string{"Cargo.toml"},
			CleanDirNames: []string{"target"},
		},
		{
			ID:            "python",
			FileMarkers:   []string{"requirements.txt", "pyproject.toml", "setup.py", "Pipfile"},
			CleanDirNames: []string{"__pycache__", ".venv", "venv", ".tox", ".pytest_cache", ".mypy_cache", ".ruff_cache"},
		},
		{
			ID:            "java",
			FileMarkers:   []string{"pom.xml", "build.gradle", "build.gradle.kts", "settings.gradle"},
			CleanDirNames: []string{"build", "target", ".gradle", "out"},
		},
		{
			ID:            "go",
			FileMarkers:   []string{"go.mod"},
			CleanDirNames: []string{"vendor", "bin", "dist"},
		},
		{
			ID:            "swift-xcode",
			FileMarkers:   []string{"Package.swift", "Podfile", "Cartfile"},
			DirSuffixes:   []string{".xcodeproj", ".xcworkspace"},
			CleanDirNames: []string{".build", "DerivedData", "Pods", "Carthage", "build"},
		},
		{
			ID:            "php",
			FileMarkers:   []string{"composer.json"},
			CleanDirNames: []string{"vendor"},
		},
		{
			ID:            "elixir",
			FileMarkers:   []string{"mix.exs"},
			CleanDirNames: []string{"_build", "deps"},
		},
		{
			ID:            "dotnet",
			FileSuffixes:  []string{".csproj", ".fsproj", ".sln"},
			CleanDirNames: []string{"bin", "obj", "packages"},
		},
	}
}
