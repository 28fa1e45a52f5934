package controls

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stagekit/stagekit/mathutil"
)

const (
	ZoomMin     = 50
	ZoomMax     = 200
	ZoomStep    = 10
	ZoomDefault = 100

	BPMMin     = 40
	BPMMax     = 220
	BPMDefault = 120
	BPMStep    = 1

	// FeedbackClearDelay is how long the transient BPM delta string stays
	// on screen after the last adjustment.
	FeedbackClearDelay = 1500 * time.Millisecond
)

// State is a point-in-time snapshot for the presentation layer.
type State struct {
	Zoom      int
	DarkSheet bool
	Playing   bool
	BPM       int
	Feedback  string
}

// Controls holds the per-session on-stage UI state: zoom, inverted sheet
// colors, and the metronome. It is independent of navigation, starts fresh
// for every performance session, and is never persisted.
type Controls struct {
	mux           sync.Mutex
	zoom          int
	darkSheet     bool
	playing       bool
	bpm           int
	feedbackDelta int
	feedbackSeq   int
	logger        zerolog.Logger
}

// New starts at default zoom with the metronome paused at initialBPM
// (clamped; the song's tempo hint usually seeds it, 0 falls back to the
// default tempo).
func New(initialBPM int, logger zerolog.Logger) *Controls {
	if initialBPM == 0 {
		initialBPM = BPMDefault
	}
	return &Controls{
		mux:           sync.Mutex{},
		zoom:          ZoomDefault,
		darkSheet:     false,
		playing:       false,
		bpm:           mathutil.Clamp(initialBPM, BPMMin, BPMMax),
		feedbackDelta: 0,
		feedbackSeq:   0,
		logger:        logger.With().Str("component", "controls").Logger(),
	}
}

func (c *Controls) ZoomIn() {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.zoom = mathutil.Clamp(c.zoom+ZoomStep, ZoomMin, ZoomMax)
}

func (c *Controls) ZoomOut() {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.zoom = mathutil.Clamp(c.zoom-ZoomStep, ZoomMin, ZoomMax)
}

func (c *Controls) ResetZoom() {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.zoom = ZoomDefault
}

func (c *Controls) ToggleDarkSheet() {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.darkSheet = !c.darkSheet
}

func (c *Controls) TogglePlayPause() {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.playing = !c.playing
	c.logger.Trace().Bool("playing", c.playing).Int("bpm", c.bpm).Msg("Metronome toggled")
}

func (c *Controls) IncreaseBPM() {
	c.adjustBPM(BPMStep)
}

func (c *Controls) DecreaseBPM() {
	c.adjustBPM(-BPMStep)
}

// SetBPM reseeds the tempo, e.g. from the next song's hint when navigating.
// It does not produce feedback.
func (c *Controls) SetBPM(bpm int) {
	if bpm == 0 {
		return
	}
	c.mux.Lock()
	defer c.mux.Unlock()
	c.bpm = mathutil.Clamp(bpm, BPMMin, BPMMax)
	c.feedbackDelta = 0
	c.feedbackSeq++
}

func (c *Controls) adjustBPM(step int) {
	c.mux.Lock()
	defer c.mux.Unlock()

	next := mathutil.Clamp(c.bpm+step, BPMMin, BPMMax)
	c.feedbackDelta += next - c.bpm
	c.bpm = next

	// Each adjustment restarts the clear delay; a stale timer from an
	// earlier press must not wipe a newer delta.
	c.feedbackSeq++
	seq := c.feedbackSeq
	time.AfterFunc(FeedbackClearDelay, func() {
		c.mux.Lock()
		defer c.mux.Unlock()
		if c.feedbackSeq == seq {
			c.feedbackDelta = 0
		}
	})
}

func (c *Controls) Snapshot() State {
	c.mux.Lock()
	defer c.mux.Unlock()
	return State{
		Zoom:      c.zoom,
		DarkSheet: c.darkSheet,
		Playing:   c.playing,
		BPM:       c.bpm,
		Feedback:  formatFeedback(c.feedbackDelta),
	}
}

func formatFeedback(delta int) string {
	if delta == 0 {
		return ""
	}
	return fmt.Sprintf("%+d", delta)
}
