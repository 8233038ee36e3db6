package core

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lakshaymaurya-felt/macmole/internal/config"
)

// elevatedTimeout is the maximum time to wait for the privileged removal
// helper, including the time the user spends on the credential prompt.
const elevatedTimeout = 120 * time.Second

// Target is one path scheduled for deletion, with its pre-measured size
// so the report can state how much space was freed.
type Target struct {
	Path string
	Size int64
}

// Failure records a single path that could not be deleted.
type Failure struct {
	Path string
	Err  error
}

// Report summarizes a deletion batch. Partial failure is visible to the
// caller but never fatal: the batch always runs to completion.
type Report struct {
	Deleted  int
	Freed    int64
	Failures []Failure
	DryRun   bool
}

// RequiresElevation reports whether removing path needs administrator
// privileges. Bundles under /Applications and anything under /Library
// are owned by admin; everything else is removed directly.
func RequiresElevation(path string) bool {
	return strings.HasPrefix(path, "/Applications/") || strings.HasPrefix(path, "/Library/")
}

// Delete removes every target recursively and forcefully. Non-existence
// counts as success. Paths under a protected prefix are refused. Targets
// needing elevation are removed through a single osascript invocation so
// the user is prompted for credentials once per batch.
//
// Callers must obtain explicit confirmation, enumerating every target,
// before invoking Delete.
func Delete(ctx context.Context, log *zap.Logger, targets []Target, dryRun bool) Report {
	if log == nil {
		log = zap.NewNop()
	}
	report := Report{DryRun: dryRun}

	var elevated []Target
	for _, t := range targets {
		if config.IsProtectedPath(t.Path) {
			report.Failures = append(report.Failures, Failure{
				Path: t.Path,
				Err:  fmt.Errorf("refusing to delete protected path %q", t.Path),
			})
			continue
		}
		if dryRun {
			log.Debug("dry-run: would delete", zap.String("path", t.Path))
			report.Deleted++
			report.Freed += t.Size
			continue
		}
		if RequiresElevation(t.Path) {
			elevated = append(elevated, t)
			continue
		}
		if err := os.RemoveAll(t.Path); err != nil {
			log.Debug("delete failed", zap.String("path", t.Path), zap.Error(err))
			report.Failures = append(report.Failures, Failure{Path: t.Path, Err: err})
			continue
		}
		report.Deleted++
		report.Freed += t.Size
	}

	if len(elevated) > 0 {
		deleteElevated(ctx, log, elevated, &report)
	}

	return report
}

// deleteElevated removes admin-owned paths via osascript's
// "with administrator privileges", which shows the system credential
// prompt. The outcome is verified per path afterwards, so one stubborn
// target (or a declined prompt) is reported without masking the rest.
func deleteElevated(ctx context.Context, log *zap.Logger, targets []Target, report *Report) {
	ctx, cancel := context.WithTimeout(ctx, elevatedTimeout)
	defer cancel()

	quoted := make([]string, len(targets))
	for i, t := range targets {
		quoted[i] = shellQuote(t.Path)
	}
	script := fmt.Sprintf("do shell script %q with administrator privileges",
		"rm -rf -- "+strings.Join(quoted, " "))

	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	runErr := cmd.Run()
	if runErr != nil {
		log.Debug("elevated removal returned error", zap.Error(runErr))
	}

	for _, t := range targets {
		if _, err := os.Lstat(t.Path); os.IsNotExist(err) {
			report.Deleted++
			report.Freed += t.Size
			continue
		}
		err := runErr
		if err == nil {
			err = fmt.Errorf("path still present after elevated removal")
		}
		report.Failures = append(report.Failures, Failure{Path: t.Path, Err: err})
	}
}

// shellQuote wraps s in single quotes, escaping embedded single quotes,
// so paths with spaces survive the shell round-trip inside osascript.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
