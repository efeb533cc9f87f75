package session

// Durations holds the length of each stage in whole seconds.
type Durations struct {
	Countdown int
	Observe   int
	Write     int
	Revise    int
	Narrate   int
	EndPause  int
}

// Settings configures a Machine.
type Settings struct {
	Durations Durations
	TATImages int // images per TAT session
}

// DefaultSettings returns the standard test timings.
func DefaultSettings() Settings {
	return Settings{
		Durations: Durations{
			Countdown: 3,
			Observe:   30,
			Write:     4 * 60,
			Revise:    4 * 60,
			Narrate:   60,
			EndPause:  3,
		},
		TATImages: 11,
	}
}

// StageDuration returns the configured length of stage in seconds.
func (s Settings) StageDuration(stage Stage) int {
	d := s.Durations
	switch stage {
	case StageCountdown:
		return d.Countdown
	case StageShowImage:
		return d.Observe
	case StageWriteStory:
		return d.Write
	case StageReviseStory:
		return d.Revise
	case StageNarrate:
		return d.Narrate
	case StageEnd:
		return d.EndPause
	default:
		return 0
	}
}

// ImageBudget returns how many images a session of type tt shows.
func (s Settings) ImageBudget(tt TestType) int {
	if tt == TAT {
		return s.TATImages
	}
	return 1
}

// Shortfall returns how many images a full session of type tt would have to
// repeat given a catalog of available images.
func (s Settings) Shortfall(tt TestType, available int) int {
	return max(0, s.ImageBudget(tt)-available)
}
