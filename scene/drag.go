package scene

import (
	"github.com/TFMV/dijkstraviz/graph"
)

// State is the drag state of a scene.
type State int

const (
	// Idle means no circle is being dragged.
	Idle State = iota
	// Dragging means the mouse button is held on a circle.
	Dragging
	// Settling means the button was released and the circle is easing onto
	// its final position.
	Settling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Settling:
		return "settling"
	}
	return "unknown"
}

type drag struct {
	state  State
	circle *Circle
	target graph.Point
	offset graph.Point // grab point relative to the circle center
	mouse  graph.Point
	timer  Timer
}

// State returns the current drag state.
func (s *Scene) State() State { return s.drag.state }

// Dragged returns the circle being dragged or settling, or nil.
func (s *Scene) Dragged() *Circle { return s.drag.circle }

// MouseDown starts dragging the front-most circle under (x, y). A press
// while a previous drag is still ticking, or while the scene is locked, is
// ignored.
func (s *Scene) MouseDown(x, y float64) {
	s.drag.mouse = graph.Point{X: x, Y: y}

	c, i := s.hitTest(x, y)
	if c == nil || s.drag.timer != nil || s.locked {
		return
	}

	s.bringToFront(i)
	s.drag.state = Dragging
	s.drag.circle = c
	s.drag.offset = graph.Point{X: x - c.X, Y: y - c.Y}
	s.drag.target = graph.Point{X: c.X, Y: c.Y}
	s.drag.timer = s.scheduler.Every(s.interval, s.Tick)
	s.cursor = CursorMove
	s.dirty = true

	s.emit(DraggingStarted, c)
}

// MouseMove updates the drag target, or reports hovering when not dragging.
func (s *Scene) MouseMove(x, y float64) {
	s.drag.mouse = graph.Point{X: x, Y: y}

	if s.drag.state == Dragging {
		s.drag.target = graph.Point{X: x - s.drag.offset.X, Y: y - s.drag.offset.Y}
		s.cursor = CursorMove
		s.dirty = true
		return
	}

	if c := s.HitTest(x, y); c != nil {
		s.cursor = CursorPointer
		s.emit(MouseOver, c)
		return
	}
	s.cursor = CursorDefault
	s.emit(MouseOut, nil)
}

// MouseUp fixes the final target and lets the dragged circle settle.
func (s *Scene) MouseUp(x, y float64) {
	s.drag.mouse = graph.Point{X: x, Y: y}

	if s.drag.state == Dragging {
		s.drag.target = graph.Point{X: x - s.drag.offset.X, Y: y - s.drag.offset.Y}
		s.drag.state = Settling
		s.dirty = true
	}
	s.updateCursor()
}

// Tick advances the dragged circle one easing step toward its target and
// re-evaluates the cursor. Once the button is released and the circle is
// within snap distance, it snaps, the tick timer stops and DraggingStopped
// fires.
func (s *Scene) Tick() {
	c := s.drag.circle
	if c == nil {
		return
	}
	s.dirty = true

	pos := graph.Point{X: c.X, Y: c.Y}
	if s.drag.state == Settling && s.easing.Near(pos, s.drag.target) {
		s.stop()
		return
	}

	next := s.easing.Step(pos, s.drag.target)
	c.X, c.Y = next.X, next.Y
	if s.drag.state == Dragging {
		s.cursor = CursorMove
	} else {
		s.updateCursor()
	}
	s.emit(DraggingContinuing, c)
}

// Settle ends a drag in progress at once: the circle snaps to its current
// target, the tick timer stops and DraggingStopped fires. It does nothing
// when no circle is being dragged.
func (s *Scene) Settle() {
	if s.drag.circle == nil {
		return
	}
	s.dirty = true
	s.stop()
}

// Lock settles any drag in progress and makes the scene ignore presses until
// Unlock. Hover events still fire.
func (s *Scene) Lock() {
	s.Settle()
	s.locked = true
}

// Unlock accepts presses again.
func (s *Scene) Unlock() { s.locked = false }

// Locked reports whether presses are ignored.
func (s *Scene) Locked() bool { return s.locked }

func (s *Scene) stop() {
	c := s.drag.circle
	c.X, c.Y = s.drag.target.X, s.drag.target.Y
	if s.drag.timer != nil {
		s.drag.timer.Stop()
	}
	s.emit(DraggingStopped, c)

	s.drag = drag{mouse: s.drag.mouse}
	s.updateCursor()
}

// Cancel abandons any drag in progress without emitting events and stops its
// timer. The circle stays where the last tick left it.
func (s *Scene) Cancel() {
	if s.drag.timer != nil {
		s.drag.timer.Stop()
	}
	s.drag = drag{mouse: s.drag.mouse}
}

func (s *Scene) updateCursor() {
	if s.HitTest(s.drag.mouse.X, s.drag.mouse.Y) != nil {
		s.cursor = CursorPointer
		return
	}
	s.cursor = CursorDefault
}
