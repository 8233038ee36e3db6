package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/macmole/internal/core"
)

// Item is one selectable row in a scanner's result list.
type Item struct {
	// Title is the primary label (app name, file name, project name).
	Title string

	// Detail is a secondary label shown dimmed (path, source, ecosystems).
	Detail string

	// Path is the filesystem target removed when the item is selected.
	Path string

	// Size is the item's measured size in bytes.
	Size int64
}

// ScanFunc produces the item list. It is invoked once on startup and
// again after every deletion batch.
type ScanFunc func(ctx context.Context) ([]Item, error)

type phase int

const (
	phaseScanning phase = iota
	phaseList
	phaseConfirm
	phaseDeleting
	phaseDone
)

const viewport = 15

type scanDoneMsg struct {
	items []Item
	err   error
}

type deleteDoneMsg struct {
	report core.Report
}

// Model is the shared scan → select → confirm → delete → rescan TUI used
// by all three scanner commands.
type Model struct {
	title  string
	scan   ScanFunc
	dryRun bool

	phase    phase
	items    []Item
	selected map[int]bool
	cursor   int
	offset   int
	width    int
	height   int

	spinner spinner.Model
	report  core.Report
	err     error
}

// NewModel builds the TUI model for one scanner.
func NewModel(title string, scan ScanFunc, dryRun bool) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		title:    title,
		scan:     scan,
		dryRun:   dryRun,
		phase:    phaseScanning,
		selected: make(map[int]bool),
		spinner:  s,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.scanCmd())
}

func (m Model) scanCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.scan(context.Background())
		return scanDoneMsg{items: items, err: err}
	}
}

// deleteCmd removes the selected items. Deletion never runs concurrently
// with a scan: the model only issues it from the confirm phase, and the
// rescan starts after the report arrives.
func (m Model) deleteCmd(targets []core.Target) tea.Cmd {
	dryRun := m.dryRun
	return func() tea.Msg {
		report := core.Delete(context.Background(), nil, targets, dryRun)
		return deleteDoneMsg{report: report}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanDoneMsg:
		m.phase = phaseList
		m.items = msg.items
		m.err = msg.err
		m.selected = make(map[int]bool)
		m.cursor = 0
		m.offset = 0
		return m, nil

	case deleteDoneMsg:
		m.report = msg.report
		if m.dryRun {
			m.phase = phaseDone
			return m, nil
		}
		// Rescan so the list reflects what actually survived.
		m.phase = phaseScanning
		return m, tea.Batch(m.spinner.Tick, m.scanCmd())

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.phase {

	case phaseConfirm:
		switch key {
		case "y", "enter":
			targets := m.selectedTargets()
			m.phase = phaseDeleting
			return m, tea.Batch(m.spinner.Tick, m.deleteCmd(targets))
		default:
			// Anything else cancels.
			m.phase = phaseList
			return m, nil
		}

	case phaseList:
		switch key {
		case "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				if m.cursor >= m.offset+viewport {
					m.offset = m.cursor - viewport + 1
				}
			}
		case " ":
			if len(m.items) > 0 {
				m.selected[m.cursor] = !m.selected[m.cursor]
			}
		case "a":
			if len(m.selected) == len(m.items) {
				m.selected = make(map[int]bool)
			} else {
				for i := range m.items {
					m.selected[i] = true
				}
			}
		case "r":
			m.phase = phaseScanning
			return m, tea.Batch(m.spinner.Tick, m.scanCmd())
		case "enter":
			if len(m.selectedTargets()) > 0 {
				m.phase = phaseConfirm
			}
		}

	case phaseDone:
		switch key {
		case "q", "esc", "enter":
			return m, tea.Quit
		}
	}

	return m, nil
}

// selectedTargets returns the deletion plan for the current selection.
func (m Model) selectedTargets() []core.Target {
	var targets []core.Target
	for i, item := range m.items {
		if m.selected[i] {
			targets = append(targets, core.Target{Path: item.Path, Size: item.Size})
		}
	}
	return targets
}

// selectedSize returns the total size of the current selection.
func (m Model) selectedSize() int64 {
	var total int64
	for i, item := range m.items {
		if m.selected[i] {
			total += item.Size
		}
	}
	return total
}
