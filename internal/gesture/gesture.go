// Package gesture turns raw per-slot touch events into semantic gesture
// events: taps, long presses and edge swipes with progress and velocity.
package gesture

import (
	"math"
	"time"

	"github.com/flickwm/flick/internal/logger"
)

// MaxTouchPoints bounds the number of simultaneous touch slots.
const MaxTouchPoints = 10

// Edge identifies a screen edge
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "none"
	}
}

// EventType is the kind of a semantic gesture event
type EventType int

const (
	EventNone EventType = iota
	EventTap
	EventLongPress
	EventEdgeSwipeStart
	EventEdgeSwipeUpdate
	EventEdgeSwipeEnd
	EventPinch
	EventPan
)

// SlotState is the per-slot classification state
type SlotState int

const (
	SlotNone SlotState = iota
	SlotPotentialTap
	SlotLongPress
	SlotEdgeSwipe
	SlotSwipe
	SlotMultiTouch
)

// Event is a semantic gesture event with kind-specific payload
type Event struct {
	Type EventType

	// For tap/long press: position at touch down
	X, Y float64

	// For edge swipes
	Edge      Edge
	Progress  float64 // 0.0 to 1.0+
	Velocity  float64 // signed along the edge axis, px/s
	Completed bool    // for swipe end: did it complete?
	IsLong    bool    // for swipe end: long swipe or fast flick
	Distance  float64 // for swipe end: displacement from start
	Fingers   int

	// For pinch/pan (reserved, not emitted yet)
	Scale          float64
	DeltaX, DeltaY float64
}

// Action is a derived semantic command from a completed gesture
type Action int

const (
	ActionNone Action = iota
	ActionGoHome
	ActionShowKeyboard
	ActionCloseApp
	ActionQuickSettings
	ActionAppSwitcher
	ActionTap
	ActionLongPress
)

func (a Action) String() string {
	switch a {
	case ActionGoHome:
		return "go_home"
	case ActionShowKeyboard:
		return "show_keyboard"
	case ActionCloseApp:
		return "close_app"
	case ActionQuickSettings:
		return "quick_settings"
	case ActionAppSwitcher:
		return "app_switcher"
	case ActionTap:
		return "tap"
	case ActionLongPress:
		return "long_press"
	default:
		return "none"
	}
}

// Config holds the recognizer thresholds. Distances are pixels, times
// milliseconds, velocities pixels per second.
type Config struct {
	EdgeThreshold          float64
	SwipeThreshold         float64
	SwipeCompleteThreshold float64
	SwipeLongThreshold     float64
	LongPressMs            int
	TapMs                  int
	TapDistance            float64
	FlickVelocity          float64
}

// DefaultConfig returns the stock thresholds
func DefaultConfig() Config {
	return Config{
		EdgeThreshold:          80,
		SwipeThreshold:         300,
		SwipeCompleteThreshold: 100,
		SwipeLongThreshold:     200,
		LongPressMs:            500,
		TapMs:                  200,
		TapDistance:            10,
		FlickVelocity:          500,
	}
}

// TouchPoint is one touch slot
type TouchPoint struct {
	ID     int32
	Active bool

	StartX, StartY     float64
	CurrentX, CurrentY float64

	// Velocity in pixels per second
	VelocityX, VelocityY float64

	StartTime time.Time
	LastTime  time.Time

	State SlotState
	Edge  Edge // when State is SlotEdgeSwipe
}

func (p *TouchPoint) distance() float64 {
	dx := p.CurrentX - p.StartX
	dy := p.CurrentY - p.StartY
	return math.Sqrt(dx*dx + dy*dy)
}

// Recognizer classifies touch events independently per slot
type Recognizer struct {
	config Config

	screenWidth  float64
	screenHeight float64

	points      [MaxTouchPoints]TouchPoint
	activeCount int
	multiTouch  bool

	// pinch tracking (reserved)
	pinchInitialDistance float64

	now func() time.Time // overridable in tests
}

// New creates a recognizer for the given screen size
func New(screenWidth, screenHeight int, config Config) *Recognizer {
	g := &Recognizer{
		config:       config,
		screenWidth:  float64(screenWidth),
		screenHeight: float64(screenHeight),
		now:          time.Now,
	}
	logger.Debugf("Gesture recognizer initialized: %dx%d, edge=%.0f",
		screenWidth, screenHeight, config.EdgeThreshold)
	return g
}

// SetScreenSize updates the edge zones after an output mode change
func (g *Recognizer) SetScreenSize(width, height int) {
	g.screenWidth = float64(width)
	g.screenHeight = float64(height)
	logger.Debugf("Gesture screen size updated: %dx%d", width, height)
}

// ActiveCount returns the number of live touch slots
func (g *Recognizer) ActiveCount() int {
	return g.activeCount
}

func (g *Recognizer) findPoint(id int32) *TouchPoint {
	for i := range g.points {
		if g.points[i].Active && g.points[i].ID == id {
			return &g.points[i]
		}
	}
	return nil
}

func (g *Recognizer) findFreeSlot() *TouchPoint {
	for i := range g.points {
		if !g.points[i].Active {
			return &g.points[i]
		}
	}
	return nil
}

func (g *Recognizer) detectEdge(x, y float64) Edge {
	t := g.config.EdgeThreshold
	switch {
	case x < t:
		return EdgeLeft
	case x > g.screenWidth-t:
		return EdgeRight
	case y < t:
		return EdgeTop
	case y > g.screenHeight-t:
		return EdgeBottom
	default:
		return EdgeNone
	}
}

// TouchDown starts tracking a touch. The returned event is valid when the
// second result is true (an edge swipe began). A full slot table drops the
// touch.
func (g *Recognizer) TouchDown(id int32, x, y float64) (Event, bool) {
	point := g.findFreeSlot()
	if point == nil {
		logger.Errorf("No free touch slot for id %d", id)
		return Event{}, false
	}

	t := g.now()
	*point = TouchPoint{
		ID:        id,
		Active:    true,
		StartX:    x,
		StartY:    y,
		CurrentX:  x,
		CurrentY:  y,
		StartTime: t,
		LastTime:  t,
	}
	g.activeCount++

	if edge := g.detectEdge(x, y); edge != EdgeNone {
		point.State = SlotEdgeSwipe
		point.Edge = edge

		logger.Debugf("Touch down id=%d at (%.0f,%.0f): edge swipe %s", id, x, y, edge)

		return Event{
			Type:    EventEdgeSwipeStart,
			Edge:    edge,
			Fingers: g.activeCount,
			X:       x,
			Y:       y,
		}, true
	}

	point.State = SlotPotentialTap
	logger.Debugf("Touch down id=%d at (%.0f,%.0f): potential tap", id, x, y)

	if g.activeCount == 2 {
		g.multiTouch = true
		for i := range g.points {
			if g.points[i].Active {
				g.points[i].State = SlotMultiTouch
			}
		}
		logger.Debug("Multi-touch mode activated")
	}

	return Event{}, false
}

// TouchMotion updates a touch slot and reports edge-swipe progress
func (g *Recognizer) TouchMotion(id int32, x, y float64) (Event, bool) {
	point := g.findPoint(id)
	if point == nil {
		return Event{}, false
	}

	now := g.now()
	dt := now.Sub(point.LastTime).Seconds()
	if dt > 0.001 {
		point.VelocityX = (x - point.CurrentX) / dt
		point.VelocityY = (y - point.CurrentY) / dt
	}

	point.CurrentX = x
	point.CurrentY = y
	point.LastTime = now

	switch point.State {
	case SlotEdgeSwipe:
		dx := point.CurrentX - point.StartX
		dy := point.CurrentY - point.StartY

		var progress, velocity float64
		switch point.Edge {
		case EdgeLeft:
			progress = dx / g.config.SwipeThreshold
			velocity = point.VelocityX
		case EdgeRight:
			progress = -dx / g.config.SwipeThreshold
			velocity = -point.VelocityX
		case EdgeTop:
			progress = dy / g.config.SwipeThreshold
			velocity = point.VelocityY
		case EdgeBottom:
			progress = -dy / g.config.SwipeThreshold
			velocity = -point.VelocityY
		}
		if progress < 0 {
			progress = 0
		}

		return Event{
			Type:     EventEdgeSwipeUpdate,
			Edge:     point.Edge,
			Progress: progress,
			Velocity: velocity,
			Fingers:  g.activeCount,
		}, true

	case SlotPotentialTap:
		// Check if moved too far for a tap
		if point.distance() > g.config.TapDistance {
			point.State = SlotSwipe
			logger.Debugf("Touch %d: tap -> swipe (moved %.0f px)", id, point.distance())
		}

	case SlotMultiTouch:
		// Pinch/pan classification is a later revision
	}

	return Event{}, false
}

// TouchUp finishes a touch slot, emitting the terminal event for its
// classification. The slot is freed after the event is built so finger
// counts reflect the state at release.
func (g *Recognizer) TouchUp(id int32) (Event, bool) {
	point := g.findPoint(id)
	if point == nil {
		return Event{}, false
	}

	durationMs := g.now().Sub(point.StartTime).Milliseconds()
	distance := point.distance()

	var event Event
	hasEvent := false

	switch point.State {
	case SlotEdgeSwipe:
		completed := distance > g.config.SwipeCompleteThreshold
		isLong := distance > g.config.SwipeLongThreshold

		var velocity float64
		switch point.Edge {
		case EdgeLeft, EdgeRight:
			velocity = math.Abs(point.VelocityX)
		case EdgeTop, EdgeBottom:
			velocity = math.Abs(point.VelocityY)
		}

		// A fast flick completes and counts as a long swipe
		if velocity > g.config.FlickVelocity {
			completed = true
			isLong = true
		}

		logger.Infof("Edge swipe %s end: distance=%.0f, velocity=%.0f, completed=%t, long=%t",
			point.Edge, distance, velocity, completed, isLong)

		event = Event{
			Type:      EventEdgeSwipeEnd,
			Edge:      point.Edge,
			Completed: completed,
			IsLong:    isLong,
			Distance:  distance,
			Velocity:  velocity,
			Fingers:   g.activeCount,
		}
		hasEvent = true

	case SlotPotentialTap:
		if durationMs < int64(g.config.TapMs) && distance < g.config.TapDistance {
			logger.Infof("Tap at (%.0f, %.0f)", point.StartX, point.StartY)
			event = Event{Type: EventTap, X: point.StartX, Y: point.StartY}
			hasEvent = true
		} else if durationMs >= int64(g.config.LongPressMs) && distance < g.config.TapDistance {
			logger.Infof("Long press at (%.0f, %.0f)", point.StartX, point.StartY)
			event = Event{Type: EventLongPress, X: point.StartX, Y: point.StartY}
			hasEvent = true
		}
	}

	point.Active = false
	g.activeCount--

	if g.activeCount == 0 {
		g.multiTouch = false
		g.pinchInitialDistance = 0
	}

	return event, hasEvent
}

// TouchCancel clears all touch state without emitting events
func (g *Recognizer) TouchCancel() {
	logger.Debug("Touch cancelled, clearing all state")

	for i := range g.points {
		g.points[i].Active = false
	}
	g.activeCount = 0
	g.multiTouch = false
	g.pinchInitialDistance = 0
}

// ToAction maps a completed gesture event to its semantic command
func ToAction(event Event) Action {
	switch event.Type {
	case EventEdgeSwipeEnd:
		if !event.Completed {
			return ActionNone
		}
		switch event.Edge {
		case EdgeBottom:
			// Short swipe raises the keyboard, long swipe goes home
			if event.IsLong {
				return ActionGoHome
			}
			return ActionShowKeyboard
		case EdgeTop:
			return ActionCloseApp
		case EdgeLeft:
			return ActionQuickSettings
		case EdgeRight:
			return ActionAppSwitcher
		default:
			return ActionNone
		}

	case EventTap:
		return ActionTap

	case EventLongPress:
		return ActionLongPress

	default:
		return ActionNone
	}
}
