package aggregate

import (
	"github.com/acerion/slavgps-core/pkg/trw"
)

// SelectionKind identifies what the global selection points at.
type SelectionKind int

const (
	SelectedTrack SelectionKind = iota
	SelectedRoute
	SelectedWaypoint
	SelectedTrackpoint
	SelectedGroupOfTracks
	SelectedGroupOfWaypoints
)

// Selection points into a live item of one container. References are
// weak: a uid plus container pointer, never an item pointer.
type Selection struct {
	Container *trw.Container
	Kind      SelectionKind
	UID       int64

	// TrackpointIdx is meaningful only for SelectedTrackpoint.
	TrackpointIdx int
}

// State is the one global selection per top-level window. Owned by the
// mutator thread.
type State struct {
	current   Selection
	active    bool
	highlight bool
}

// NewState returns an empty selection state.
func NewState() *State {
	return &State{}
}

// Select sets the current selection and raises the highlight.
func (s *State) Select(sel Selection) {
	s.current = sel
	s.active = true
	s.highlight = true
}

// Current returns the selection, if any.
func (s *State) Current() (Selection, bool) {
	return s.current, s.active
}

// Clear drops the selection entirely.
func (s *State) Clear() {
	s.current = Selection{}
	s.active = false
	s.highlight = false
}

// ClearHighlight lowers the highlight and reports whether anything
// changed, so the caller knows whether a redraw is due.
func (s *State) ClearHighlight() bool {
	changed := s.highlight
	s.highlight = false
	return changed
}

// Highlighted reports whether the selection is currently highlighted.
func (s *State) Highlighted() bool {
	return s.highlight
}

// OnItemDeleted clears the selection when the deleted item is the one
// selected. Group selections survive individual item deletions.
func (s *State) OnItemDeleted(c *trw.Container, uid int64) {
	if !s.active || s.current.Container != c {
		return
	}
	switch s.current.Kind {
	case SelectedGroupOfTracks, SelectedGroupOfWaypoints:
		return
	}
	if s.current.UID == uid {
		s.Clear()
	}
}

// OnContainerRemoved clears the selection when its owning container
// leaves the tree.
func (s *State) OnContainerRemoved(c *trw.Container) {
	if s.active && s.current.Container == c {
		s.Clear()
	}
}

// OnItemMoved rebinds the selection after a cross-container move.
func (s *State) OnItemMoved(from *trw.Container, oldUID int64, to *trw.Container, newUID int64) {
	if !s.active || s.current.Container != from || s.current.UID != oldUID {
		return
	}
	s.current.Container = to
	s.current.UID = newUID
}
