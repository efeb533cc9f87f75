package session

import (
	"fmt"
	"strings"
)

// TestType selects the stage sequence of a session.
type TestType string

const (
	PPDT TestType = "PPDT" // one image: observe, write, revise, narrate
	TAT  TestType = "TAT"  // a series of images: observe, write, repeated
)

// ParseTestType accepts "ppdt" or "tat" in any case.
func ParseTestType(s string) (TestType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(PPDT):
		return PPDT, nil
	case string(TAT):
		return TAT, nil
	default:
		return "", fmt.Errorf("unknown test type %q (supported: ppdt, tat)", s)
	}
}

// Stage is a step of a practice session.
type Stage int

const (
	StageCountdown Stage = iota
	StageShowImage
	StageWriteStory
	StageReviseStory // PPDT only
	StageNarrate     // PPDT only
	StageEnd
	StageAborted // no image could be selected at session start
)

func (s Stage) String() string {
	switch s {
	case StageCountdown:
		return "countdown"
	case StageShowImage:
		return "showImage"
	case StageWriteStory:
		return "writeStory"
	case StageReviseStory:
		return "reviseStory"
	case StageNarrate:
		return "narrate"
	case StageEnd:
		return "end"
	case StageAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Label is the heading shown to the candidate during the stage.
func (s Stage) Label() string {
	switch s {
	case StageCountdown:
		return "Get Ready"
	case StageShowImage:
		return "Observe Image"
	case StageWriteStory:
		return "Write Story"
	case StageReviseStory:
		return "Revise Story"
	case StageNarrate:
		return "Narrate"
	case StageEnd:
		return "The END"
	case StageAborted:
		return "No Images"
	default:
		return ""
	}
}

// Exitable reports whether an emergency exit may be taken during the stage.
func (s Stage) Exitable() bool {
	switch s {
	case StageShowImage, StageWriteStory, StageReviseStory, StageNarrate:
		return true
	}
	return false
}

// Timed reports whether the stage shows a countdown clock to the candidate.
func (s Stage) Timed() bool {
	switch s {
	case StageWriteStory, StageReviseStory, StageNarrate:
		return true
	}
	return false
}

// Outcome is how a session ended.
type Outcome int

const (
	OutcomeRunning Outcome = iota
	OutcomeCompleted
	OutcomeExited
	OutcomeNoImages
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeCompleted:
		return "completed"
	case OutcomeExited:
		return "exited"
	case OutcomeNoImages:
		return "no-images"
	default:
		return "unknown"
	}
}
