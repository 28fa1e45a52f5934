package controls_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/stagekit/stagekit/controls"
)

func TestZoom(t *testing.T) {
	t.Parallel()

	t.Run("clamps_at_bounds", func(t *testing.T) {
		t.Parallel()
		c := controls.New(0, zerolog.Nop())

		for range 50 {
			c.ZoomIn()
		}
		assert.Equal(t, controls.ZoomMax, c.Snapshot().Zoom)

		for range 50 {
			c.ZoomOut()
		}
		assert.Equal(t, controls.ZoomMin, c.Snapshot().Zoom)
	})

	t.Run("reset", func(t *testing.T) {
		t.Parallel()
		c := controls.New(0, zerolog.Nop())
		c.ZoomIn()
		c.ZoomIn()
		c.ResetZoom()
		assert.Equal(t, controls.ZoomDefault, c.Snapshot().Zoom)
	})
}

func TestDarkSheet(t *testing.T) {
	t.Parallel()
	c := controls.New(0, zerolog.Nop())

	assert.False(t, c.Snapshot().DarkSheet)
	c.ToggleDarkSheet()
	assert.True(t, c.Snapshot().DarkSheet)
	c.ToggleDarkSheet()
	assert.False(t, c.Snapshot().DarkSheet)
}

func TestMetronome(t *testing.T) {
	t.Parallel()

	t.Run("play_pause", func(t *testing.T) {
		t.Parallel()
		c := controls.New(90, zerolog.Nop())

		assert.False(t, c.Snapshot().Playing)
		c.TogglePlayPause()
		assert.True(t, c.Snapshot().Playing)
	})

	t.Run("bpm_seeded_from_song_hint", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 90, controls.New(90, zerolog.Nop()).Snapshot().BPM)
		assert.Equal(t, controls.BPMDefault, controls.New(0, zerolog.Nop()).Snapshot().BPM)
		assert.Equal(t, controls.BPMMax, controls.New(500, zerolog.Nop()).Snapshot().BPM)
	})

	t.Run("bpm_clamps_at_bounds", func(t *testing.T) {
		t.Parallel()
		c := controls.New(controls.BPMMax-1, zerolog.Nop())
		for range 10 {
			c.IncreaseBPM()
		}
		assert.Equal(t, controls.BPMMax, c.Snapshot().BPM)

		c = controls.New(controls.BPMMin+1, zerolog.Nop())
		for range 10 {
			c.DecreaseBPM()
		}
		assert.Equal(t, controls.BPMMin, c.Snapshot().BPM)
	})

	t.Run("feedback_accumulates_and_clears", func(t *testing.T) {
		t.Parallel()
		c := controls.New(100, zerolog.Nop())

		for range 5 {
			c.IncreaseBPM()
		}
		assert.Equal(t, "+5", c.Snapshot().Feedback)

		assert.Eventually(t, func() bool {
			return c.Snapshot().Feedback == ""
		}, 3*time.Second, 50*time.Millisecond)
	})

	t.Run("set_bpm_produces_no_feedback", func(t *testing.T) {
		t.Parallel()
		c := controls.New(100, zerolog.Nop())
		c.SetBPM(140)
		s := c.Snapshot()
		assert.Equal(t, 140, s.BPM)
		assert.Empty(t, s.Feedback)
	})
}

func TestRepeater(t *testing.T) {
	t.Parallel()

	c := controls.New(100, zerolog.Nop())
	r := controls.NewRepeater()

	r.Start(c.IncreaseBPM)
	assert.Equal(t, 101, c.Snapshot().BPM)

	assert.Eventually(t, func() bool {
		return c.Snapshot().BPM >= 103
	}, 2*time.Second, 20*time.Millisecond)

	r.Stop()
	settled := c.Snapshot().BPM
	time.Sleep(3 * controls.HoldRepeatInterval)
	assert.Equal(t, settled, c.Snapshot().BPM)
}
