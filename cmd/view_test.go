package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pb "github.com/flickwm/flick/internal/proto"
)

func TestParseViewArg(t *testing.T) {
	cases := map[string]pb.ShellView{
		"lock":           pb.ShellView_LOCK,
		"home":           pb.ShellView_HOME,
		"app":            pb.ShellView_APP,
		"app_switcher":   pb.ShellView_APP_SWITCHER,
		"quick_settings": pb.ShellView_QUICK_SETTINGS,
	}
	for name, want := range cases {
		got, ok := parseViewArg(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got)
	}

	_, ok := parseViewArg("desktop")
	assert.False(t, ok)
}

func TestViewNameRoundTrip(t *testing.T) {
	for _, name := range []string{"lock", "home", "app", "app_switcher", "quick_settings"} {
		v, ok := parseViewArg(name)
		assert.True(t, ok)
		assert.Equal(t, name, viewName(v))
	}
}

func TestSwipePathTargetsEdges(t *testing.T) {
	w, h := 1080, 2340

	x, y, dx, dy := swipePath("bottom", w, h, 300)
	assert.Equal(t, w/2, x)
	assert.Equal(t, h-1, y)
	assert.Equal(t, 0, dx)
	assert.Equal(t, -300, dy)

	x, y, dx, dy = swipePath("left", w, h, 300)
	assert.Equal(t, 1, x)
	assert.Equal(t, h/2, y)
	assert.Equal(t, 300, dx)
	assert.Equal(t, 0, dy)

	x, _, dx, _ = swipePath("right", w, h, 200)
	assert.Equal(t, w-1, x)
	assert.Equal(t, -200, dx)

	_, y, _, dy = swipePath("top", w, h, 200)
	assert.Equal(t, 1, y)
	assert.Equal(t, 200, dy)
}
