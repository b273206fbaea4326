package move

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/json-to-terraform/connector/internal/tick"
)

func TestCoordinator_WindowLastsOneTick(t *testing.T) {
	loop := tick.NewLoop()
	c := New(loop)

	assert.Equal(t, Normal, c.State())
	assert.True(t, c.Admit())

	c.EnterSuppressionWindow()
	assert.True(t, c.IsSuppressing())
	assert.False(t, c.Admit())
	assert.False(t, c.Admit())
	assert.Equal(t, 2, c.Swallowed())

	loop.Tick()
	assert.Equal(t, Normal, c.State())
	assert.True(t, c.Admit())
	assert.Equal(t, 2, c.Swallowed())
}

func TestCoordinator_ReenterRenewsWindow(t *testing.T) {
	loop := tick.NewLoop()
	c := New(loop)

	c.EnterSuppressionWindow()
	loop.Schedule(func() {
		// a second gesture handled during the tick that would close the first window
		c.EnterSuppressionWindow()
	})
	c.EnterSuppressionWindow()
	assert.Equal(t, 2, loop.Pending(), "the first window timer is cancelled")

	loop.Tick()
	assert.True(t, c.IsSuppressing(), "window re-entered during the tick stays open")

	loop.Tick()
	assert.False(t, c.IsSuppressing())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "normal", Normal.String())
	assert.Equal(t, "suppressing", Suppressing.String())
	assert.Equal(t, "unknown", State(9).String())
}
