package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/storydrill/internal/report"
	"github.com/fakeyudi/storydrill/internal/session"
)

// ExitGuard decides whether an emergency exit may be taken.
type ExitGuard interface {
	Limit() int
	Remaining() int
	TryExit() (bool, error)
}

// tickMsg is one elapsed second.
type tickMsg time.Time

// CatalogChangedMsg is sent when the images directory changes on disk.
type CatalogChangedMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// PracticeConfig wires a practice screen to a session.
type PracticeConfig struct {
	Machine   *session.Machine
	Guard     ExitGuard
	Inbox     *Inbox       // the notifier the machine was built with
	Reload    func() error // refreshes the catalog; may be nil
	TATImages int
	Logger    *slog.Logger
}

// Practice is the Bubble Tea model that runs one session.
type Practice struct {
	cfg        PracticeConfig
	bar        progress.Model
	width      int
	height     int
	confirming bool // exit confirmation prompt is open
	status     string
	notices    []string
	cancelled  bool // left before the session could start or after it ended
}

// NewPractice returns a practice screen for cfg.
func NewPractice(cfg PracticeConfig) Practice {
	if cfg.Inbox == nil {
		cfg.Inbox = NewInbox()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return Practice{
		cfg:   cfg,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		width: 80,
	}
}

// State returns the session snapshot.
func (m Practice) State() session.SessionState { return m.cfg.Machine.State() }

// Notices returns every notification received during the session.
func (m Practice) Notices() []string { return m.notices }

// Cancelled reports whether the user quit outside the exitable stages.
func (m Practice) Cancelled() bool { return m.cancelled }

func (m Practice) Init() tea.Cmd {
	m.cfg.Machine.Start()
	return tick()
}

func (m Practice) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.cfg.Machine.Tick()
		m.drain()
		if m.confirming && !m.exitable() {
			m.confirming = false
			m.status = "The test moved on; emergency exit no longer available."
		}
		if m.cfg.Machine.Finished() {
			return m, tea.Quit
		}
		return m, tick()

	case CatalogChangedMsg:
		if m.cfg.Reload != nil {
			if err := m.cfg.Reload(); err != nil {
				m.cfg.Logger.Warn("catalog reload failed", "err", err)
				m.status = "Image catalog reload failed: " + err.Error()
			} else {
				m.status = "Image catalog updated."
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, msg.Width-4)
		return m, nil
	}
	return m, nil
}

func (m Practice) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.confirming {
		switch key {
		case "y", "Y", "enter":
			m.confirming = false
			return m.takeExit()
		case "n", "N", "esc":
			m.confirming = false
			m.status = ""
		}
		return m, nil
	}

	switch key {
	case "x", "q", "esc", "ctrl+c":
		stage := m.cfg.Machine.Stage()
		if !stage.Exitable() {
			// Nothing to abandon yet, or the session is already over.
			m.cancelled = stage == session.StageCountdown
			return m, tea.Quit
		}
		if m.cfg.Guard.Remaining() == 0 {
			m.status = fmt.Sprintf("Emergency exit limit reached. Available uses: 0 of %d.", m.cfg.Guard.Limit())
			return m, nil
		}
		m.confirming = true
	}
	return m, nil
}

// exitable reports whether an emergency exit could still end the session.
func (m Practice) exitable() bool {
	return m.cfg.Machine.Stage().Exitable() && !m.cfg.Machine.Finished()
}

func (m Practice) takeExit() (tea.Model, tea.Cmd) {
	// The guard persists the exit, so check before charging it.
	if !m.exitable() {
		m.status = session.ErrExitNotAllowed.Error()
		return m, nil
	}
	ok, err := m.cfg.Guard.TryExit()
	switch {
	case err != nil:
		m.cfg.Logger.Error("recording emergency exit", "err", err)
		m.status = "Could not record the exit: " + err.Error()
		return m, nil
	case !ok:
		m.status = fmt.Sprintf("Emergency exit limit reached. Available uses: 0 of %d.", m.cfg.Guard.Limit())
		return m, nil
	}
	if err := m.cfg.Machine.Exit(); err != nil {
		m.status = err.Error()
		return m, nil
	}
	return m, tea.Quit
}

func (m *Practice) drain() {
	for _, n := range m.cfg.Inbox.Drain() {
		m.notices = append(m.notices, n)
		m.status = n
	}
}

func (m Practice) View() string {
	st := m.cfg.Machine.State()

	title := titleStyle.Width(m.width).Render(m.indicator(st))

	var body strings.Builder
	body.WriteString("\n")
	body.WriteString(stageStyle.Render("  "+st.Stage.Label()) + "\n\n")

	switch st.Stage {
	case session.StageCountdown:
		body.WriteString(countdownStyle.Render(fmt.Sprintf("  %d", max(1, st.Remaining))) + "\n")
	case session.StageShowImage:
		if img := st.CurrentImage; img != nil {
			body.WriteString(labelStyle.Render("  Image:") + "  " + img.ID + "\n")
			body.WriteString(dimStyle.Render("  "+img.Path) + "\n")
		}
	case session.StageWriteStory, session.StageReviseStory, session.StageNarrate:
		body.WriteString(renderMarkdown(instructions(st.Stage), m.width-4) + "\n\n")
		body.WriteString("  " + timeStyle.Render(report.FormatTime(st.Remaining)) + "\n")
	case session.StageEnd:
		body.WriteString(dimStyle.Render(fmt.Sprintf("  %d image(s) shown.", len(st.Shown))) + "\n")
	case session.StageAborted:
		body.WriteString(warnStyle.Render("  "+session.MsgNoImages) + "\n")
	}

	var footer strings.Builder
	if st.Stage != session.StageCountdown && st.Stage != session.StageEnd && st.Duration > 0 {
		elapsed := float64(st.Duration-st.Remaining) / float64(st.Duration)
		footer.WriteString("  " + m.bar.ViewAs(elapsed) + "\n")
	}
	if m.confirming {
		footer.WriteString(warnStyle.Render(fmt.Sprintf(
			"  Exit the test? Images already shown stay counted. %d exit(s) remaining this week. [y/n]",
			m.cfg.Guard.Remaining())) + "\n")
	} else if m.status != "" {
		footer.WriteString(noticeStyle.Render("  "+m.status) + "\n")
	}

	hint := "  q quit"
	if st.Stage.Exitable() {
		hint = fmt.Sprintf("  x emergency exit (%d left)", m.cfg.Guard.Remaining())
	}
	statusBar := statusBarStyle.Width(m.width).Render(hint)

	return lipgloss.JoinVertical(lipgloss.Left, title, body.String(), footer.String(), statusBar)
}

// indicator renders "PPDT" or "TAT: 3/11".
func (m Practice) indicator(st session.SessionState) string {
	if st.TestType == session.TAT && st.CurrentImage != nil {
		return fmt.Sprintf("storydrill  TAT: %d/%d", st.TATIndex+1, m.cfg.TATImages)
	}
	return "storydrill  " + string(st.TestType)
}

func instructions(stage session.Stage) string {
	return "## " + stage.Label() + "\n\nPlease use pen and paper."
}
