package ui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/lakshaymaurya-felt/macmole/internal/core"
)

// Run drives one scanner end to end. On a terminal it launches the
// interactive selection TUI; otherwise it prints a plain table and
// offers no deletion, so piped output stays scriptable.
func Run(title string, scan ScanFunc, dryRun bool) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return runPlain(title, scan)
	}

	p := tea.NewProgram(NewModel(title, scan, dryRun), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// runPlain is the non-TTY fallback: one row per item, largest first as
// delivered by the scanner, with a total footer.
func runPlain(title string, scan ScanFunc) error {
	items, err := scan(context.Background())
	if err != nil {
		return fmt.Errorf("%s scan failed: %w", title, err)
	}

	var total int64
	for _, item := range items {
		fmt.Printf("%10s  %s  %s\n", core.FormatSize(item.Size), item.Title, item.Detail)
		total += item.Size
	}
	fmt.Printf("%10s  total (%d items)\n", core.FormatSize(total), len(items))
	return nil
}
