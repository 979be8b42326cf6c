package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flickwm/flick/internal/gesture"
)

func TestLerpEndpoints(t *testing.T) {
	from := Color{0.0, 0.0, 0.0, 1.0}
	to := Color{0.1, 0.2, 0.8, 1.0}

	assert.Equal(t, from, Lerp(from, to, 0))
	assert.Equal(t, to, Lerp(from, to, 1))
}

func TestLerpMidpoint(t *testing.T) {
	got := Lerp(Color{0.0, 0.0, 0.0, 1.0}, Color{0.1, 0.2, 0.8, 1.0}, 0.5)
	assert.InDelta(t, 0.05, got.R, 1e-9)
	assert.InDelta(t, 0.1, got.G, 1e-9)
	assert.InDelta(t, 0.4, got.B, 1e-9)
	assert.InDelta(t, 1.0, got.A, 1e-9)
}

func TestLerpClampsParameter(t *testing.T) {
	from := Color{0.8, 0.1, 0.1, 1.0}
	to := Color{0.1, 0.2, 0.8, 1.0}

	assert.Equal(t, from, Lerp(from, to, -0.5))
	assert.Equal(t, to, Lerp(from, to, 1.5))
}

func TestCurrentColorStatic(t *testing.T) {
	s := New(ViewHome, 200, Hooks{})
	assert.Equal(t, Color{0.1, 0.2, 0.8, 1.0}, s.CurrentColor())

	s.GoToView(ViewApp)
	assert.Equal(t, Color{0.0, 0.0, 0.0, 1.0}, s.CurrentColor())
}

func TestCurrentColorBlendsDuringSwipe(t *testing.T) {
	s := New(ViewApp, 200, Hooks{})

	require.True(t, s.HandleGesture(swipeStart(gesture.EdgeBottom)))
	require.True(t, s.HandleGesture(swipeUpdate(gesture.EdgeBottom, 0.5)))

	got := s.CurrentColor()
	assert.InDelta(t, 0.05, got.R, 1e-9)
	assert.InDelta(t, 0.1, got.G, 1e-9)
	assert.InDelta(t, 0.4, got.B, 1e-9)
}

func TestViewColorsDistinct(t *testing.T) {
	seen := map[Color]View{}
	for _, v := range []View{ViewLock, ViewHome, ViewApp, ViewAppSwitcher, ViewQuickSettings} {
		c := ViewColor(v)
		prev, dup := seen[c]
		require.False(t, dup, "%s and %s share a color", prev, v)
		seen[c] = v
	}
}
