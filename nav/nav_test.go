package nav_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagekit/stagekit/nav"
)

func TestNavigator(t *testing.T) {
	t.Parallel()

	t.Run("boundaries", func(t *testing.T) {
		t.Parallel()
		n := nav.New(3, 0)

		assert.False(t, n.CanGoPrevious())
		assert.False(t, n.Previous())
		assert.Equal(t, 0, n.Current())

		assert.True(t, n.Next())
		assert.True(t, n.Next())
		assert.Equal(t, 2, n.Current())

		assert.False(t, n.CanGoNext())
		assert.False(t, n.Next())
		assert.Equal(t, 2, n.Current())
		assert.True(t, n.CanGoPrevious())
	})

	t.Run("goto", func(t *testing.T) {
		t.Parallel()
		n := nav.New(5, 0)

		require.NoError(t, n.GoTo(3))
		assert.Equal(t, 3, n.Current())

		assert.ErrorIs(t, n.GoTo(5), nav.ErrOutOfRange)
		assert.ErrorIs(t, n.GoTo(-1), nav.ErrOutOfRange)
		assert.Equal(t, 3, n.Current())
	})

	t.Run("initial_index_clamps_to_zero", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 2, nav.New(3, 2).Current())
		assert.Equal(t, 0, nav.New(3, 7).Current())
		assert.Equal(t, 0, nav.New(3, -1).Current())
	})

	t.Run("empty_list_is_terminal", func(t *testing.T) {
		t.Parallel()
		n := nav.New(0, 0)

		assert.True(t, n.Empty())
		assert.Equal(t, -1, n.Current())
		assert.False(t, n.CanGoNext())
		assert.False(t, n.CanGoPrevious())
		assert.False(t, n.Next())
		assert.False(t, n.Previous())
		assert.ErrorIs(t, n.GoTo(0), nav.ErrOutOfRange)
	})

	t.Run("single_song", func(t *testing.T) {
		t.Parallel()
		n := nav.New(1, 0)
		assert.False(t, n.CanGoNext())
		assert.False(t, n.CanGoPrevious())
	})
}
