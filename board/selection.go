package board

import "fmt"

const unselected = -1

// selection tracks the source and target picked by starting drags. The first
// pick is the source and the second the target. A third pick starts over
// with a new source, and picking the source again as target leaves only the
// source selected.
type selection struct {
	source, target int
	count          int
}

func emptySelection() selection {
	return selection{source: unselected, target: unselected}
}

func (s *selection) pick(label int) {
	switch s.count {
	case 0:
		s.source = label
		s.count = 1
	case 1:
		s.target = label
		s.count = 2
	default:
		s.source = label
		s.target = unselected
		s.count = 1
	}

	if s.count == 2 && s.source == s.target {
		s.target = unselected
		s.count = 1
	}
}

func (s selection) ready() bool {
	return s.count == 2
}

func (s selection) String() string {
	switch s.count {
	case 0:
		return "none"
	case 1:
		return fmt.Sprintf("source %d", s.source)
	default:
		return fmt.Sprintf("source %d, target %d", s.source, s.target)
	}
}

// Source returns the selected source label.
func (b *Board) Source() (int, bool) {
	return b.sel.source, b.sel.count >= 1
}

// Target returns the selected target label.
func (b *Board) Target() (int, bool) {
	return b.sel.target, b.sel.count == 2
}

// Ready reports whether both a source and a target are selected.
func (b *Board) Ready() bool { return b.sel.ready() }

// Select picks label the same way starting a drag on its circle does. It
// fails with ErrSearchRunning while an animated search is in progress.
func (b *Board) Select(label int) error {
	if b.anim != nil {
		return ErrSearchRunning
	}
	if b.circles[label] == nil {
		return fmt.Errorf("%w: no node %d", ErrInvalidSelection, label)
	}
	b.last = nil
	b.sel.pick(label)
	b.paintDefaults()
	b.paintSelection()
	b.MarkDirty()
	return nil
}

// ClearSelection forgets the selection and repaints the picked circles. It
// does nothing while an animated search is in progress.
func (b *Board) ClearSelection() {
	if b.anim != nil {
		return
	}
	b.sel = emptySelection()
	b.paintDefaults()
	b.MarkDirty()
}

func (b *Board) paintSelection() {
	if c := b.circles[b.sel.source]; c != nil && b.sel.count >= 1 {
		c.Color = b.colors.Source
	}
	if c := b.circles[b.sel.target]; c != nil && b.sel.count == 2 {
		c.Color = b.colors.Target
	}
}
