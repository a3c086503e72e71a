// Package tui implements the live watch view: a zone list with open
// task counts alongside the selected zone's task table, refreshed by
// polling the stores.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/spotcheck/internal/core/analysis"
	"github.com/colonyops/spotcheck/internal/core/styles"
	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/core/zone"
	"github.com/colonyops/spotcheck/internal/spotcheck"
)

// zoneRow is one zone's line in the sidebar.
type zoneRow struct {
	Zone       zone.Zone
	OpenTasks  int64
	LastRun    *time.Time
	TotalTasks int64
}

// snapshot is one poll's worth of store state.
type snapshot struct {
	Zones []zoneRow
	Tasks []task.Task // tasks of the selected zone
}

type refreshMsg struct {
	snap snapshot
	err  error
}

type tickMsg struct{}

// Model is the bubbletea model for the watch view.
type Model struct {
	app  *spotcheck.App
	poll time.Duration

	spinner  spinner.Model
	table    table.Model
	zones    []zoneRow
	selected int

	width  int
	height int
	loaded bool
	err    error
}

// NewModel creates the watch model.
func NewModel(app *spotcheck.App, pollInterval time.Duration) Model {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.ColorPrimary)),
	)

	tbl := table.New(
		table.WithColumns(taskColumns(60)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	ts := table.DefaultStyles()
	ts.Header = styles.TableHeaderStyle
	ts.Selected = styles.TableSelectedStyle
	tbl.SetStyles(ts)

	return Model{
		app:     app,
		poll:    pollInterval,
		spinner: sp,
		table:   tbl,
	}
}

func taskColumns(descWidth int) []table.Column {
	return []table.Column{
		{Title: " ", Width: 2},
		{Title: "DESCRIPTION", Width: descWidth},
		{Title: "PRI", Width: 4},
		{Title: "CONF", Width: 5},
		{Title: "SEEN", Width: 4},
		{Title: "AGE", Width: 8},
	}
}

// Init starts the spinner and the first refresh.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			if m.selected < len(m.zones)-1 {
				m.selected++
				return m, m.refresh()
			}
		case "k", "up":
			if m.selected > 0 {
				m.selected--
				return m, m.refresh()
			}
		case "r":
			return m, m.refresh()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tickMsg:
		return m, m.refresh()

	case refreshMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.zones = msg.snap.Zones
			if m.selected >= len(m.zones) {
				m.selected = 0
			}
			m.table.SetRows(taskRows(msg.snap.Tasks))
		}
		return m, m.scheduleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) resize() {
	descWidth := m.width - sidebarWidth - 30
	if descWidth < 20 {
		descWidth = 20
	}
	m.table.SetColumns(taskColumns(descWidth))

	tableHeight := m.height - 6
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table.SetHeight(tableHeight)
}

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.poll, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// refresh polls the stores for the zone list and the selected zone's
// tasks. It captures the current selection so a slow poll cannot apply
// another zone's tasks.
func (m Model) refresh() tea.Cmd {
	app := m.app
	selected := m.selected

	return func() tea.Msg {
		ctx := context.Background()

		zones, err := app.Zones.List(ctx)
		if err != nil {
			return refreshMsg{err: err}
		}

		snap := snapshot{Zones: make([]zoneRow, 0, len(zones))}
		for _, z := range zones {
			row := zoneRow{Zone: z}

			counts, err := app.Stores.Tasks.CountByStatus(ctx, z.ID)
			if err != nil {
				return refreshMsg{err: err}
			}
			for _, n := range counts {
				row.TotalTasks += n
			}
			row.OpenTasks = counts[task.StatusPending]

			latest, err := app.Stores.Analyses.Latest(ctx, z.ID)
			switch {
			case err == nil:
				at := latest.CreatedAt
				row.LastRun = &at
			case !errors.Is(err, analysis.ErrNotFound):
				return refreshMsg{err: err}
			}

			snap.Zones = append(snap.Zones, row)
		}

		if selected < len(snap.Zones) {
			tasks, err := app.Tasks.List(ctx, task.ListFilter{ZoneID: snap.Zones[selected].Zone.ID})
			if err != nil {
				return refreshMsg{err: err}
			}
			snap.Tasks = tasks
		}

		return refreshMsg{snap: snap}
	}
}

func taskRows(tasks []task.Task) []table.Row {
	now := time.Now()
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, table.Row{
			styles.StatusIcon(t.Status),
			t.Description,
			priorityShort(t.Priority),
			fmt.Sprintf("%.2f", t.ConfidenceScore),
			fmt.Sprintf("%d", t.DetectionCount),
			shortDuration(t.Age(now)),
		})
	}
	return rows
}

const sidebarWidth = 28

// View renders the watch layout.
func (m Model) View() string {
	if !m.loaded {
		return fmt.Sprintf("\n  %s loading zones...\n", m.spinner.View())
	}

	title := styles.TitleStyle.Render("spotcheck watch")

	var body string
	switch {
	case m.err != nil:
		body = styles.FailStyle.Render(fmt.Sprintf("error: %v", m.err))
	case len(m.zones) == 0:
		body = styles.MutedStyle.Render("no zones configured — run 'spotcheck zones add'")
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), m.table.View())
	}

	statusBar := styles.StatusBarStyle.Render("j/k: zone  r: refresh  q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, body, statusBar)
}

func (m Model) sidebarView() string {
	lines := make([]string, 0, len(m.zones))
	for i, row := range m.zones {
		lastRun := "never"
		if row.LastRun != nil {
			lastRun = shortDuration(time.Since(*row.LastRun)) + " ago"
		}

		label := fmt.Sprintf("%s %s", styles.IconZone, row.Zone.Name)
		if !row.Zone.Enabled {
			label += " (off)"
		}
		detail := fmt.Sprintf("  %d open · %s", row.OpenTasks, lastRun)

		style := styles.MutedStyle
		if i == m.selected {
			style = styles.SelectedStyle
		}
		lines = append(lines, style.Width(sidebarWidth).Render(label+"\n"+detail))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func priorityShort(p int) string {
	switch p {
	case task.PriorityHigh:
		return "high"
	case task.PriorityMedium:
		return "med"
	case task.PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("%d", p)
	}
}

// shortDuration formats an age compactly: 42s, 18m, 3h, 5d.
func shortDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
