// Package session runs a single PPDT or TAT practice session: it sequences
// the timed stages and asks the image catalog for each image to show.
package session

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fakeyudi/storydrill/internal/catalog"
	"github.com/fakeyudi/storydrill/internal/timer"
)

// ErrExitNotAllowed is returned by Exit outside the image and writing stages.
var ErrExitNotAllowed = errors.New("emergency exit is only available while a test is running")

// MsgNoImages is the notification sent when no image can be selected.
const MsgNoImages = "No images available. Please add images to the images directory."

// ImageSource supplies images to a session and records their shows.
type ImageSource interface {
	Next() (catalog.ImageRecord, bool)
	MarkShown(id string) error
}

// Notifier surfaces a human-readable message to the candidate.
type Notifier interface {
	Notify(message string)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(message string)

func (f NotifyFunc) Notify(message string) { f(message) }

// Listener is invoked on every stage transition.
type Listener func(prev, next Stage)

// SessionState is a snapshot of a running session.
type SessionState struct {
	ID           string
	TestType     TestType
	Stage        Stage
	CurrentImage *catalog.ImageRecord
	TATIndex     int      // 0-based position in the TAT series
	Shown        []string // image ids shown so far, in order
	Remaining    int      // seconds left in the stage
	Duration     int      // stage length in seconds
	Outcome      Outcome
}

// Machine is the stage state machine for one session. It is driven from a
// single goroutine: the host calls Start once, then Tick once per second and
// Exit on request.
type Machine struct {
	id        string
	testType  TestType
	settings  Settings
	images    ImageSource
	notifier  Notifier
	logger    *slog.Logger
	listeners []Listener

	started  bool
	stage    Stage
	current  *catalog.ImageRecord
	tatIndex int
	shown    []string
	timer    *timer.Timer // the single active stage timer
	outcome  Outcome
}

// New returns a machine for a session of testType that has not started yet.
func New(testType TestType, settings Settings, images ImageSource, notifier Notifier, logger *slog.Logger) *Machine {
	if notifier == nil {
		notifier = NotifyFunc(func(string) {})
	}
	id := uuid.New().String()
	return &Machine{
		id:       id,
		testType: testType,
		settings: settings,
		images:   images,
		notifier: notifier,
		logger:   logger.With("session", id, "test", string(testType)),
		stage:    StageCountdown,
	}
}

// OnTransition registers a listener for stage transitions.
func (m *Machine) OnTransition(l Listener) {
	m.listeners = append(m.listeners, l)
}

// Start enters the countdown. Calling it again has no effect.
func (m *Machine) Start() {
	if m.started {
		return
	}
	m.started = true
	m.logger.Info("session started")
	m.enter(StageCountdown)
}

// Tick delivers one elapsed second to the active stage timer.
func (m *Machine) Tick() {
	if m.Finished() || m.timer == nil {
		return
	}
	m.timer.Tick()
}

// Exit abandons the session. Shows recorded so far are kept.
func (m *Machine) Exit() error {
	if m.Finished() || !m.stage.Exitable() {
		return ErrExitNotAllowed
	}
	m.timer.Pause()
	m.outcome = OutcomeExited
	m.logger.Info("session exited early", "stage", m.stage.String(), "shown", len(m.shown))
	return nil
}

// Finished reports whether the session has ended for any reason.
func (m *Machine) Finished() bool { return m.outcome != OutcomeRunning }

// Stage returns the current stage.
func (m *Machine) Stage() Stage { return m.stage }

// State returns a snapshot of the session.
func (m *Machine) State() SessionState {
	st := SessionState{
		ID:       m.id,
		TestType: m.testType,
		Stage:    m.stage,
		TATIndex: m.tatIndex,
		Shown:    append([]string(nil), m.shown...),
		Outcome:  m.outcome,
	}
	if m.current != nil {
		img := *m.current
		st.CurrentImage = &img
	}
	if m.timer != nil {
		st.Remaining = m.timer.Remaining()
		st.Duration = m.timer.Duration()
	}
	return st
}

// enter switches to next, arms its timer and notifies listeners before the
// timer starts counting.
func (m *Machine) enter(next Stage) {
	prev := m.stage
	m.stage = next
	if next == StageAborted {
		m.timer = nil
		m.outcome = OutcomeNoImages
	} else {
		m.timer = timer.New(m.settings.StageDuration(next), m.onStageEnd)
	}
	m.logger.Debug("stage transition", "from", prev.String(), "to", next.String())
	for _, l := range m.listeners {
		l(prev, next)
	}
	if m.timer != nil {
		m.timer.Start()
	}
}

// onStageEnd runs when the active stage timer expires.
func (m *Machine) onStageEnd() {
	switch m.stage {
	case StageCountdown:
		img, ok := m.images.Next()
		if !ok {
			m.logger.Warn("no images available at session start")
			m.notifier.Notify(MsgNoImages)
			m.enter(StageAborted)
			return
		}
		m.show(img)
		m.enter(StageShowImage)
	case StageShowImage:
		m.enter(StageWriteStory)
	case StageWriteStory:
		if m.testType == PPDT {
			m.enter(StageReviseStory)
			return
		}
		m.advanceTAT()
	case StageReviseStory:
		m.enter(StageNarrate)
	case StageNarrate:
		m.enter(StageEnd)
	case StageEnd:
		m.outcome = OutcomeCompleted
		m.logger.Info("session completed", "shown", len(m.shown))
	}
}

func (m *Machine) advanceTAT() {
	if m.tatIndex >= m.settings.TATImages-1 {
		m.enter(StageEnd)
		return
	}
	img, ok := m.images.Next()
	if !ok {
		m.logger.Warn("catalog exhausted mid-session", "index", m.tatIndex)
		m.notifier.Notify(MsgNoImages)
		m.enter(StageEnd)
		return
	}
	m.tatIndex++
	m.show(img)
	m.enter(StageShowImage)
}

// show makes img current and records the show immediately, so an abandoned
// session still counts towards fairness.
func (m *Machine) show(img catalog.ImageRecord) {
	m.current = &img
	m.shown = append(m.shown, img.ID)
	if err := m.images.MarkShown(img.ID); err != nil {
		m.logger.Warn("failed to record image show", "image", img.ID, "err", err)
	}
	m.logger.Info("image shown", "image", img.ID, "index", m.tatIndex)
}
