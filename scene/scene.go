package scene

import (
	"time"

	"github.com/TFMV/dijkstraviz/ident"
	"github.com/TFMV/dijkstraviz/loop"
	"github.com/TFMV/dijkstraviz/physics"
)

// Scheduler starts the periodic drag tick.
type Scheduler = loop.Scheduler

// Timer is the handle returned by a Scheduler.
type Timer = loop.Timer

// DefaultTickInterval is the drag tick period, roughly 60 Hz.
const DefaultTickInterval = time.Second / 60

// Scene holds drawables in z-order, index 0 being front-most.
type Scene struct {
	circles []*Circle
	lines   []*Line
	texts   []*Text

	circleIDs map[ident.ID]struct{}
	lineIDs   map[ident.ID]int
	textIDs   map[ident.ID]int

	dirty  bool
	cursor Cursor

	scheduler Scheduler
	interval  time.Duration
	easing    physics.Easing
	drag      drag
	locked    bool

	subscribers map[EventKind][]*subscription
}

// Option configures a Scene.
type Option func(*Scene)

// WithScheduler sets the scheduler driving drag ticks.
func WithScheduler(s Scheduler) Option {
	return func(sc *Scene) { sc.scheduler = s }
}

// WithTickInterval sets the drag tick period.
func WithTickInterval(d time.Duration) Option {
	return func(sc *Scene) {
		if d > 0 {
			sc.interval = d
		}
	}
}

// WithEasing sets the drag easing.
func WithEasing(e physics.Easing) Option {
	return func(sc *Scene) { sc.easing = e }
}

// New creates an empty scene. Without a scheduler the scene uses a manual
// one, and ticks only happen when Tick is called.
func New(opts ...Option) *Scene {
	s := &Scene{
		circleIDs:   make(map[ident.ID]struct{}),
		lineIDs:     make(map[ident.ID]int),
		textIDs:     make(map[ident.ID]int),
		cursor:      CursorDefault,
		interval:    DefaultTickInterval,
		easing:      physics.DefaultEasing(),
		subscribers: make(map[EventKind][]*subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scheduler == nil {
		s.scheduler = loop.NewManual()
	}
	return s
}

// AddCircle adds c, every line incident to it and those lines' texts. Items
// already present are skipped, so adding the same circle twice is a no-op.
func (s *Scene) AddCircle(c *Circle) {
	if _, ok := s.circleIDs[c.ID]; !ok {
		s.circleIDs[c.ID] = struct{}{}
		s.circles = append(s.circles, c)
	}

	for _, l := range c.Lines() {
		if _, ok := s.lineIDs[l.ID]; ok {
			continue
		}
		s.lineIDs[l.ID] = len(s.lines)
		s.lines = append(s.lines, l)

		if l.Text == nil {
			continue
		}
		if _, ok := s.textIDs[l.Text.ID]; ok {
			continue
		}
		s.textIDs[l.Text.ID] = len(s.texts)
		s.texts = append(s.texts, l.Text)
	}
	s.dirty = true
}

// RedrawIfDirty repaints the scene if anything changed since the last
// redraw: lines first, then texts, then circles, each list back to front.
// It reports whether a redraw happened.
func (s *Scene) RedrawIfDirty(surface Surface) bool {
	if !s.dirty {
		return false
	}
	surface.Clear()
	for i := len(s.lines) - 1; i >= 0; i-- {
		s.lines[i].Draw(surface)
	}
	for i := len(s.texts) - 1; i >= 0; i-- {
		s.texts[i].Draw(surface)
	}
	for i := len(s.circles) - 1; i >= 0; i-- {
		s.circles[i].Draw(surface)
	}
	s.dirty = false
	return true
}

// HitTest returns the front-most circle containing (x, y), or nil.
func (s *Scene) HitTest(x, y float64) *Circle {
	c, _ := s.hitTest(x, y)
	return c
}

func (s *Scene) hitTest(x, y float64) (*Circle, int) {
	for i, c := range s.circles {
		if c.Contains(x, y) {
			return c, i
		}
	}
	return nil, -1
}

// MarkDirty schedules a redraw.
func (s *Scene) MarkDirty() { s.dirty = true }

// Dirty reports whether a redraw is pending.
func (s *Scene) Dirty() bool { return s.dirty }

// Cursor returns the pointer style for the current mouse position.
func (s *Scene) Cursor() Cursor { return s.cursor }

// Circles returns the circles front to back.
func (s *Scene) Circles() []*Circle { return append([]*Circle(nil), s.circles...) }

// Lines returns the lines front to back.
func (s *Scene) Lines() []*Line { return append([]*Line(nil), s.lines...) }

// Texts returns the line texts front to back.
func (s *Scene) Texts() []*Text { return append([]*Text(nil), s.texts...) }

// bringToFront moves circle i, its lines and their texts to index 0 of their
// lists.
func (s *Scene) bringToFront(i int) {
	c := s.circles[i]
	s.circles = moveToFront(s.circles, i)

	lines := c.Lines()
	for j := len(lines) - 1; j >= 0; j-- {
		l := lines[j]
		if idx, ok := s.lineIDs[l.ID]; ok {
			s.lines = moveToFront(s.lines, idx)
			s.reindexLines()
		}
		if l.Text == nil {
			continue
		}
		if idx, ok := s.textIDs[l.Text.ID]; ok {
			s.texts = moveToFront(s.texts, idx)
			s.reindexTexts()
		}
	}
}

func (s *Scene) reindexLines() {
	for i, l := range s.lines {
		s.lineIDs[l.ID] = i
	}
}

func (s *Scene) reindexTexts() {
	for i, t := range s.texts {
		s.textIDs[t.ID] = i
	}
}

func moveToFront[T any](items []T, i int) []T {
	if i <= 0 || i >= len(items) {
		return items
	}
	item := items[i]
	copy(items[1:i+1], items[:i])
	items[0] = item
	return items
}
