package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/storydrill/internal/catalog"
	"github.com/fakeyudi/storydrill/internal/exitlimit"
	"github.com/fakeyudi/storydrill/internal/report"
	"github.com/fakeyudi/storydrill/internal/session"
	"github.com/fakeyudi/storydrill/internal/tui"
)

var practicePlain bool

// plainTick is the wall-clock length of one session second in plain mode.
var plainTick = time.Second

var ppdtCmd = &cobra.Command{
	Use:   "ppdt",
	Short: "Run a PPDT session: one image, write, revise and narrate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPractice(cmd, session.PPDT)
	},
}

var tatCmd = &cobra.Command{
	Use:   "tat",
	Short: "Run a TAT session: a series of images, each observed then written",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPractice(cmd, session.TAT)
	},
}

func runPractice(cmd *cobra.Command, tt session.TestType) error {
	out := cmd.OutOrStdout()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.reload(); err != nil {
		return err
	}

	st := settings()
	if short := st.Shortfall(tt, a.lib.Len()); short > 0 && a.lib.Len() > 0 {
		logger.Warn("catalog smaller than a full session", "images", a.lib.Len(), "needed", st.ImageBudget(tt))
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: only %d image(s) available, %d will be repeated in this %s session.\n",
			a.lib.Len(), short, tt)
	}

	plain := practicePlain || !term.IsTerminal(os.Stdout.Fd())

	var final session.SessionState
	var cancelled bool
	if plain {
		m := session.New(tt, st, a.lib, session.NotifyFunc(func(msg string) {
			fmt.Fprintln(out, "! "+msg)
		}), logger)
		attachViewer(m)
		printStages(out, m, st)
		cancelled = runPlain(out, m, a.guard)
		final = m.State()
	} else {
		inbox := tui.NewInbox()
		m := session.New(tt, st, a.lib, inbox, logger)
		attachViewer(m)
		model, err := tui.RunPractice(tui.NewPractice(tui.PracticeConfig{
			Machine:   m,
			Guard:     a.guard,
			Inbox:     inbox,
			Reload:    a.lib.Reload,
			TATImages: st.TATImages,
			Logger:    logger,
		}), cfg.ImagesDir)
		if err != nil {
			return err
		}
		final, cancelled = model.State(), model.Cancelled()
		for _, n := range model.Notices() {
			fmt.Fprintln(out, "! "+n)
		}
	}

	printOutcome(out, final, cancelled, a.guard)
	return nil
}

// runPlain drives m from a wall-clock ticker until it finishes. An interrupt
// is an emergency exit request. It reports whether the user left before the
// first image.
func runPlain(out io.Writer, m *session.Machine, guard *exitlimit.Guard) (cancelled bool) {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	ticker := time.NewTicker(plainTick)
	defer ticker.Stop()

	m.Start()
	for !m.Finished() {
		select {
		case <-ticker.C:
			m.Tick()
		case <-interrupts:
			switch stage := m.Stage(); {
			case stage == session.StageCountdown:
				return true
			case !stage.Exitable():
				return false
			}
			ok, err := guard.TryExit()
			switch {
			case err != nil:
				logger.Error("recording emergency exit", "err", err)
				fmt.Fprintln(out, "! Could not record the exit: "+err.Error())
			case !ok:
				fmt.Fprintf(out, "! Emergency exit limit reached. Available uses: 0 of %d.\n", guard.Limit())
			default:
				if err := m.Exit(); err != nil {
					fmt.Fprintln(out, "! "+err.Error())
				}
			}
		}
	}
	return false
}

// printStages announces each stage on a plain terminal.
func printStages(out io.Writer, m *session.Machine, st session.Settings) {
	m.OnTransition(func(_, next session.Stage) {
		s := m.State()
		switch next {
		case session.StageCountdown:
			fmt.Fprintf(out, "%s session starting in %d second(s). Press Ctrl+C during the test for an emergency exit.\n",
				s.TestType, st.StageDuration(next))
		case session.StageShowImage:
			prefix := string(s.TestType)
			if s.TestType == session.TAT {
				prefix = fmt.Sprintf("TAT %d/%d", s.TATIndex+1, st.TATImages)
			}
			if img := s.CurrentImage; img != nil {
				fmt.Fprintf(out, "[%s] %s: %s (%s) for %s\n", prefix, next.Label(), img.ID, img.Path,
					report.FormatTime(st.StageDuration(next)))
			}
		case session.StageWriteStory, session.StageReviseStory, session.StageNarrate:
			fmt.Fprintf(out, "%s (%s). Please use pen and paper.\n", next.Label(), report.FormatTime(st.StageDuration(next)))
		case session.StageEnd:
			fmt.Fprintln(out, next.Label())
		}
	})
}

func printOutcome(out io.Writer, st session.SessionState, cancelled bool, guard *exitlimit.Guard) {
	switch {
	case cancelled:
		fmt.Fprintln(out, "Session cancelled before it started.")
	case st.Outcome == session.OutcomeCompleted:
		fmt.Fprintf(out, "Session complete: %d image(s) shown.\n", len(st.Shown))
	case st.Outcome == session.OutcomeExited:
		fmt.Fprintf(out, "Session exited early. %d image(s) shown stay counted. %d emergency exit(s) left.\n",
			len(st.Shown), guard.Remaining())
	case st.Outcome == session.OutcomeNoImages:
		fmt.Fprintln(out, "Session aborted.")
	}
}

// attachViewer opens each shown image with the configured viewer command.
func attachViewer(m *session.Machine) {
	if strings.TrimSpace(cfg.ImageViewer) == "" {
		return
	}
	m.OnTransition(func(_, next session.Stage) {
		if next != session.StageShowImage {
			return
		}
		if img := m.State().CurrentImage; img != nil {
			if err := openImage(cfg.ImageViewer, cfg.ImagesDir, *img); err != nil {
				logger.Warn("image viewer failed", "image", img.ID, "err", err)
			}
		}
	})
}

// openImage starts viewer with the image's absolute path as last argument.
func openImage(viewer, imagesDir string, img catalog.ImageRecord) error {
	fields := strings.Fields(viewer)
	if len(fields) == 0 {
		return errors.New("empty image viewer command")
	}
	path, err := filepath.Abs(filepath.Join(imagesDir, filepath.FromSlash(img.Path)))
	if err != nil {
		return err
	}
	c := exec.Command(fields[0], append(fields[1:], path)...)
	if err := c.Start(); err != nil {
		return err
	}
	go c.Wait()
	return nil
}

func init() {
	for _, c := range []*cobra.Command{ppdtCmd, tatCmd} {
		c.Flags().BoolVar(&practicePlain, "plain", false, "plain text output instead of TUI")
		rootCmd.AddCommand(c)
	}
}
