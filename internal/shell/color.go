package shell

// Color is a straight-alpha RGBA clear color with channels in [0, 1]
type Color struct {
	R, G, B, A float64
}

var viewColors = map[View]Color{
	ViewLock:          {0.8, 0.1, 0.1, 1.0},
	ViewHome:          {0.1, 0.2, 0.8, 1.0},
	ViewApp:           {0.0, 0.0, 0.0, 1.0},
	ViewAppSwitcher:   {0.1, 0.7, 0.2, 1.0},
	ViewQuickSettings: {0.7, 0.1, 0.7, 1.0},
}

// ViewColor returns the background color of a view
func ViewColor(v View) Color {
	return viewColors[v]
}

// Lerp blends two colors channel-wise. t is clamped to [0, 1], and
// the endpoints are returned exactly rather than recomputed, so
// lerp(a, b, 1) is b down to the last bit.
func Lerp(from, to Color, t float64) Color {
	if t <= 0 {
		return from
	}
	if t >= 1 {
		return to
	}
	return Color{
		R: from.R + (to.R-from.R)*t,
		G: from.G + (to.G-from.G)*t,
		B: from.B + (to.B-from.B)*t,
		A: from.A + (to.A-from.A)*t,
	}
}

// CurrentColor returns the clear color for the current frame. During a
// transition it is the blend between the source and destination view
// colors at the current progress.
func (s *Shell) CurrentColor() Color {
	if s.transitionState != TransitionNone {
		return Lerp(ViewColor(s.transitionFrom), ViewColor(s.transitionTo), s.transitionProgress)
	}
	return ViewColor(s.currentView)
}
