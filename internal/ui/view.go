package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/lakshaymaurya-felt/macmole/internal/core"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseScanning:
		fmt.Fprintf(&b, "  %s Scanning...\n", m.spinner.View())
		if m.report.Deleted > 0 {
			fmt.Fprintf(&b, "\n  %s\n", successStyle.Render(reportLine(m.report)))
		}
	case phaseDeleting:
		fmt.Fprintf(&b, "  %s Deleting...\n", m.spinner.View())
	case phaseConfirm:
		b.WriteString(m.renderConfirm())
	case phaseDone:
		b.WriteString(m.renderDone())
	default:
		b.WriteString(m.renderList())
	}

	if m.err != nil {
		fmt.Fprintf(&b, "\n  %s\n", errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderList() string {
	var b strings.Builder

	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("  Nothing found. Your disk is tidy."))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("  R Rescan  |  Q Quit"))
		b.WriteString("\n")
		return b.String()
	}

	start := m.offset
	end := start + viewport
	if end > len(m.items) {
		end = len(m.items)
	}

	for idx := start; idx < end; idx++ {
		item := m.items[idx]

		mark := "[ ]"
		if m.selected[idx] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %-40s %10s", mark, trim(item.Title, 40), core.FormatSize(item.Size))

		prefix := "   "
		if idx == m.cursor {
			prefix = " ▶ "
			line = selectedStyle.Render(line)
		}
		fmt.Fprintf(&b, "%s%s\n", prefix, line)
		if idx == m.cursor && item.Detail != "" {
			fmt.Fprintf(&b, "       %s\n", dimStyle.Render(trim(item.Detail, m.width-10)))
		}
	}

	if len(m.items) > viewport {
		fmt.Fprintf(&b, "\n  %s\n", dimStyle.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(m.items))))
	}

	count := len(m.selectedTargets())
	fmt.Fprintf(&b, "\n  Selected: %d of %d  •  %s\n",
		count, len(m.items), sizeStyle.Render(humanize.IBytes(uint64(m.selectedSize()))))
	b.WriteString(dimStyle.Render("  ↑/↓ Nav  |  Space Select  |  A All  |  Enter Delete  |  R Rescan  |  Q Quit"))
	b.WriteString("\n")
	return b.String()
}

// renderConfirm enumerates every target so the user sees exactly what
// will be removed before committing.
func (m Model) renderConfirm() string {
	var b strings.Builder
	targets := m.selectedTargets()

	verb := "Delete"
	if m.dryRun {
		verb = "Preview deleting"
	}
	fmt.Fprintf(&b, "  %s\n\n",
		warningStyle.Render(fmt.Sprintf("%s %d items (%s)?", verb, len(targets), core.FormatSize(m.selectedSize()))))
	for _, t := range targets {
		fmt.Fprintf(&b, "    %s  %s\n", sizeStyle.Render(fmt.Sprintf("%10s", core.FormatSize(t.Size))), t.Path)
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  Y/Enter Confirm  |  any other key Cancel"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderDone() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s\n", successStyle.Render(reportLine(m.report)))
	for _, f := range m.report.Failures {
		fmt.Fprintf(&b, "  %s\n", errorStyle.Render(fmt.Sprintf("failed: %s: %v", f.Path, f.Err)))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  Q Quit"))
	b.WriteString("\n")
	return b.String()
}

// reportLine summarizes a deletion batch, including partial failure.
func reportLine(r core.Report) string {
	verb := "Deleted"
	if r.DryRun {
		verb = "Would delete"
	}
	line := fmt.Sprintf("%s %d items, freeing %s", verb, r.Deleted, core.FormatSize(r.Freed))
	if len(r.Failures) > 0 {
		line += fmt.Sprintf(" (%d failed)", len(r.Failures))
	}
	return line
}

func trim(s string, max int) string {
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
