// Package ui provides terminal output for tasks: the fixed-width table
// printed by the list commands and an optional full-screen viewer.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasktracker/internal/store"
	"github.com/nibzard/tasktracker/internal/task"
	"github.com/nibzard/tasktracker/internal/tracker"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	interval    time.Duration
	trackerOpts []tracker.Option
}

// WithRefreshInterval sets how often the viewer reloads the task list.
func WithRefreshInterval(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithTrackerOptions passes extra options to the tracker the viewer reads through.
func WithTrackerOptions(opts ...tracker.Option) TUIOption {
	return func(c *tuiConfig) {
		c.trackerOpts = append(c.trackerOpts, opts...)
	}
}

// RunTUI starts the read-only task viewer over s.
func RunTUI(ctx context.Context, s store.Store, opts ...TUIOption) error {
	c := &tuiConfig{interval: time.Second}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(ctx, s, c)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle  = lipgloss.NewStyle().Faint(true)
	filterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	statusStyles = map[task.Status]lipgloss.Style{
		task.StatusTodo:       lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		task.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

type tuiModel struct {
	ctx          context.Context
	tracker      *tracker.Tracker
	location     string
	loadErr      error
	corruptErr   *store.CorruptError
	data         *tuiData
	filteredData *tuiData
	tickInterval time.Duration
	filter       task.Status // Filter by status
	showHelp     bool        // Show help screen
}

type tuiData struct {
	counts map[task.Status]int
	other  int // tasks whose status is outside the known set
	tasks  []task.Task
}

type tickMsg time.Time

func newTUIModel(ctx context.Context, s store.Store, c *tuiConfig) *tuiModel {
	m := &tuiModel{
		ctx:          ctx,
		location:     s.Location(),
		tickInterval: c.interval,
	}
	opts := append([]tracker.Option{
		tracker.WithCorruptionHandler(func(err *store.CorruptError) {
			m.corruptErr = err
		}),
	}, c.trackerOpts...)
	m.tracker = tracker.New(s, opts...)
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "1":
			m.filter = task.StatusTodo
			m.applyFilter()
			return m, nil
		case "2":
			m.filter = task.StatusInProgress
			m.applyFilter()
			return m, nil
		case "3":
			m.filter = task.StatusDone
			m.applyFilter()
			return m, nil
		case "0":
			m.filter = ""
			m.filteredData = nil
			return m, nil
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}

	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.filter != "" {
		b.WriteString(filterStyle.Render(fmt.Sprintf("Filter: %s (0 to clear)", m.filter)) + "\n\n")
	}

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading tasks:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}
	if m.corruptErr != nil {
		b.WriteString(warningStyle.Render(fmt.Sprintf("Warning: %s is corrupted (%v)", m.corruptErr.Path, m.corruptErr.Err)) + "\n\n")
	}
	if m.data == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	displayData := m.data
	if m.filteredData != nil {
		displayData = m.filteredData
	}

	writeOverview(&b, displayData)
	writeTasks(&b, displayData, m.filter)
	b.WriteString(fmt.Sprintf("Storage: %s\n\n", m.location))
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) refresh() {
	m.corruptErr = nil
	tasks, err := m.tracker.List(m.ctx, "")
	if err != nil {
		m.loadErr = err
		m.data = nil
		m.filteredData = nil
		return
	}
	m.loadErr = nil
	m.data = buildTUIData(tasks)
	m.applyFilter()
}

// applyFilter applies the current filter to the data.
func (m *tuiModel) applyFilter() {
	if m.data == nil || m.filter == "" {
		m.filteredData = nil
		return
	}

	filtered := &tuiData{counts: emptyCounts()}
	filtered.counts[m.filter] = m.data.counts[m.filter]
	filtered.tasks = task.Filter(m.data.tasks, m.filter)
	m.filteredData = filtered
}

func emptyCounts() map[task.Status]int {
	counts := make(map[task.Status]int, len(task.Statuses()))
	for _, s := range task.Statuses() {
		counts[s] = 0
	}
	return counts
}

// buildTUIData counts tasks by status. tasks must already be deduped and sorted.
func buildTUIData(tasks []task.Task) *tuiData {
	data := &tuiData{counts: emptyCounts(), tasks: tasks}
	for _, t := range tasks {
		if t.Status.Valid() {
			data.counts[t.Status]++
		} else {
			data.other++
		}
	}
	return data
}

func writeTitle(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Task Tracker") + "\n\n")
}

func writeOverview(b *strings.Builder, data *tuiData) {
	b.WriteString(sectionStyle.Render("Overview") + "\n\n")
	parts := make([]string, 0, len(task.Statuses())+1)
	for _, s := range task.Statuses() {
		parts = append(parts, statusStyles[s].Render(fmt.Sprintf("%s: %d", s, data.counts[s])))
	}
	if data.other > 0 {
		parts = append(parts, fmt.Sprintf("other: %d", data.other))
	}
	b.WriteString("  " + strings.Join(parts, "  ") + "\n\n")
}

func writeTasks(b *strings.Builder, data *tuiData, filter task.Status) {
	b.WriteString(sectionStyle.Render("Tasks") + "\n\n")
	if len(data.tasks) == 0 {
		if filter != "" {
			b.WriteString(fmt.Sprintf("  No tasks with status '%s' found.\n\n", filter))
		} else {
			b.WriteString("  No tasks found.\n\n")
		}
		return
	}
	var table strings.Builder
	// strings.Builder never fails to write.
	_ = WriteTable(&table, data.tasks)
	b.WriteString(table.String())
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString(sectionStyle.Render("Keyboard Shortcuts") + "\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Reload tasks\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Filter by todo\n")
	b.WriteString("  2            Filter by in-progress\n")
	b.WriteString("  3            Filter by done\n")
	b.WriteString("  0            Clear filter\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(footerStyle.Render(fmt.Sprintf("Press h for help | q to quit | Refreshing every %s", interval)) + "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
