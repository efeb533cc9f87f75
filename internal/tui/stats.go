package tui

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/storydrill/internal/catalog"
	"github.com/fakeyudi/storydrill/internal/report"
)

// Catalog is the part of catalog.Library the stats screen needs.
type Catalog interface {
	Images() []catalog.ImageRecord
	Adjust(id string, delta int) error
	Reload() error
}

// Stats is the Bubble Tea model for the image usage table.
type Stats struct {
	lib    Catalog
	logger *slog.Logger
	sortBy catalog.SortCriteria
	rows   []catalog.ImageRecord // in display order
	table  table.Model
	width  int
	height int
	status string
}

// NewStats returns a stats screen over lib sorted by sortBy.
func NewStats(lib Catalog, sortBy catalog.SortCriteria, logger *slog.Logger) Stats {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("86"))
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	t.SetStyles(styles)

	m := Stats{lib: lib, logger: logger, sortBy: sortBy, table: t, width: 80}
	m.refreshRows()
	return m
}

func columns(width int) []table.Column {
	rest := max(20, width-8-24-10)
	return []table.Column{
		{Title: "Image", Width: rest / 2},
		{Title: "Path", Width: rest - rest/2},
		{Title: "Shown", Width: 8},
		{Title: "Last shown", Width: 22},
	}
}

// SortBy returns the active sort criteria.
func (m Stats) SortBy() catalog.SortCriteria { return m.sortBy }

// Rows returns the images in display order.
func (m Stats) Rows() []catalog.ImageRecord { return m.rows }

func (m *Stats) refreshRows() {
	m.rows = catalog.Sort(m.lib.Images(), m.sortBy)
	rows := make([]table.Row, len(m.rows))
	for i, img := range m.rows {
		rows[i] = table.Row{img.ID, img.Path, strconv.Itoa(img.ShowCount), report.FormatTimestamp(img.LastShownAt)}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// selectRow moves the cursor to id, keeping an adjusted image selected when
// the sort order moves it.
func (m *Stats) selectRow(id string) {
	for i, img := range m.rows {
		if img.ID == id {
			m.table.SetCursor(i)
			return
		}
	}
}

func (m Stats) Init() tea.Cmd { return nil }

func (m Stats) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "s":
			m.sortBy = m.sortBy.Next()
			m.refreshRows()
			m.status = "Sorted by " + string(m.sortBy)
			return m, nil
		case "+", "=":
			m.adjust(+1)
			return m, nil
		case "-", "_":
			m.adjust(-1)
			return m, nil
		case "r":
			m.reload()
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case CatalogChangedMsg:
		m.reload()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(columns(msg.Width))
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(3, msg.Height-4))
		return m, nil
	}
	return m, nil
}

func (m *Stats) adjust(delta int) {
	if len(m.rows) == 0 {
		return
	}
	id := m.rows[m.table.Cursor()].ID
	if err := m.lib.Adjust(id, delta); err != nil {
		m.logger.Warn("adjusting show count", "image", id, "err", err)
		m.status = "Adjust failed: " + err.Error()
		return
	}
	m.refreshRows()
	m.selectRow(id)
	m.status = fmt.Sprintf("%s adjusted by %+d", id, delta)
}

func (m *Stats) reload() {
	if err := m.lib.Reload(); err != nil {
		m.logger.Warn("refreshing catalog", "err", err)
		m.status = "Refresh: " + err.Error()
	} else {
		m.status = fmt.Sprintf("Refreshed: %d image(s)", len(m.lib.Images()))
	}
	m.refreshRows()
}

func (m Stats) View() string {
	title := titleStyle.Width(m.width).Render(fmt.Sprintf("storydrill  image usage (%d)", len(m.rows)))

	content := m.table.View()
	if len(m.rows) == 0 {
		content = dimStyle.Render("\n  No images found. Add images to the images directory and press r.\n")
	}

	hint := fmt.Sprintf("  ↑/↓ select  +/- adjust  s sort (%s)  r refresh  q quit", m.sortBy)
	if m.status != "" {
		hint += "  " + m.status
	}
	statusBar := statusBarStyle.Width(m.width).Render(hint)
	return lipgloss.JoinVertical(lipgloss.Left, title, content, statusBar)
}
