package scene

// EventKind names a scene notification.
type EventKind int

const (
	MouseOver EventKind = iota
	MouseOut
	DraggingStarted
	DraggingContinuing
	DraggingStopped
)

var eventNames = [...]string{
	MouseOver:          "mouse:over",
	MouseOut:           "mouse:out",
	DraggingStarted:    "dragging:started",
	DraggingContinuing: "dragging:continuing",
	DraggingStopped:    "dragging:stopped",
}

func (k EventKind) String() string {
	if int(k) < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event is delivered to subscribers. Circle is nil for MouseOut.
type Event struct {
	Kind   EventKind
	Circle *Circle
}

// Handler receives scene events on the scene's goroutine.
type Handler func(Event)

type subscription struct {
	handler Handler
}

// Subscribe registers h for events of kind k. Handlers run synchronously in
// subscription order. The returned function removes the subscription.
func (s *Scene) Subscribe(k EventKind, h Handler) (unsubscribe func()) {
	sub := &subscription{handler: h}
	s.subscribers[k] = append(s.subscribers[k], sub)

	return func() {
		subs := s.subscribers[k]
		for i, other := range subs {
			if other == sub {
				s.subscribers[k] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Scene) emit(k EventKind, c *Circle) {
	subs := append([]*subscription(nil), s.subscribers[k]...)
	ev := Event{Kind: k, Circle: c}
	for _, sub := range subs {
		sub.handler(ev)
	}
}
