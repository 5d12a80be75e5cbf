// Package aggregate implements the layer tree: nodes owning child
// containers (TRW layers or nested aggregates), cross-container
// queries and the global selection state.
package aggregate

import (
	"github.com/acerion/slavgps-core/pkg/geo"
	"github.com/acerion/slavgps-core/pkg/track"
	"github.com/acerion/slavgps-core/pkg/trw"
)

// LayerKind tags the variants a child slot can hold.
type LayerKind int

const (
	LayerTRW LayerKind = iota
	LayerAggregate
)

// Child is a tagged variant over the layer kinds.
type Child struct {
	Kind      LayerKind
	TRW       *trw.Container
	Aggregate *Node
}

// Name returns the child layer's display name.
func (c Child) Name() string {
	switch c.Kind {
	case LayerTRW:
		return c.TRW.Name
	case LayerAggregate:
		return c.Aggregate.Name
	default:
		return ""
	}
}

// Visible returns the child layer's visibility flag.
func (c Child) Visible() bool {
	switch c.Kind {
	case LayerTRW:
		return c.TRW.Visible
	case LayerAggregate:
		return c.Aggregate.Visible
	default:
		return false
	}
}

// Node is one aggregate layer: an ordered list of children, each a TRW
// container or another aggregate. Depth is unbounded.
type Node struct {
	Name     string
	Visible  bool
	children []Child
}

// New creates an empty aggregate.
func New(name string) *Node {
	return &Node{Name: name, Visible: true}
}

// AddChildTRW appends a TRW container.
func (n *Node) AddChildTRW(c *trw.Container) {
	n.children = append(n.children, Child{Kind: LayerTRW, TRW: c})
}

// AddChildAggregate appends a nested aggregate.
func (n *Node) AddChildAggregate(child *Node) {
	n.children = append(n.children, Child{Kind: LayerAggregate, Aggregate: child})
}

// Children returns the child list in order.
func (n *Node) Children() []Child {
	return n.children
}

// RemoveChild removes the child at index, destroying the subtree from
// the tree's point of view.
func (n *Node) RemoveChild(index int) bool {
	if index < 0 || index >= len(n.children) {
		return false
	}
	n.children = append(n.children[:index], n.children[index+1:]...)
	return true
}

// RemoveChildTRW removes the child slot holding the given container.
func (n *Node) RemoveChildTRW(c *trw.Container) bool {
	for i, child := range n.children {
		if child.Kind == LayerTRW && child.TRW == c {
			return n.RemoveChild(i)
		}
	}
	return false
}

// MoveChild swaps the child at index with its neighbor, up meaning
// towards the front of the list.
func (n *Node) MoveChild(index int, up bool) bool {
	target := index + 1
	if up {
		target = index - 1
	}
	if index < 0 || index >= len(n.children) || target < 0 || target >= len(n.children) {
		return false
	}
	n.children[index], n.children[target] = n.children[target], n.children[index]
	return true
}

// IterTree walks every TRW container in the subtree, depth-first in
// child order, until fn returns false.
func (n *Node) IterTree(fn func(*trw.Container) bool) {
	n.iter(fn)
}

func (n *Node) iter(fn func(*trw.Container) bool) bool {
	for _, child := range n.children {
		switch child.Kind {
		case LayerTRW:
			if !fn(child.TRW) {
				return false
			}
		case LayerAggregate:
			if !child.Aggregate.iter(fn) {
				return false
			}
		}
	}
	return true
}

// AllTRWLayers returns every TRW container in the subtree, optionally
// including invisible ones. Visibility of an aggregate hides its whole
// subtree.
func (n *Node) AllTRWLayers(includeInvisible bool) []*trw.Container {
	var out []*trw.Container
	n.collectTRW(includeInvisible, &out)
	return out
}

func (n *Node) collectTRW(includeInvisible bool, out *[]*trw.Container) {
	for _, child := range n.children {
		if !includeInvisible && !child.Visible() {
			continue
		}
		switch child.Kind {
		case LayerTRW:
			*out = append(*out, child.TRW)
		case LayerAggregate:
			child.Aggregate.collectTRW(includeInvisible, out)
		}
	}
}

// AllTracks flattens the tracks (or routes) of every TRW layer in the
// subtree, for the track list views.
func (n *Node) AllTracks(routes, includeInvisible bool) []*track.Track {
	var out []*track.Track
	for _, layer := range n.AllTRWLayers(includeInvisible) {
		if routes {
			out = append(out, layer.Routes(trw.SortInsertion)...)
		} else {
			out = append(out, layer.Tracks(trw.SortInsertion)...)
		}
	}
	return out
}

// AllTracksOfType flattens tracks of the given Type field value.
func (n *Node) AllTracksOfType(trackType string, routes, includeInvisible bool) []*track.Track {
	var out []*track.Track
	for _, layer := range n.AllTRWLayers(includeInvisible) {
		out = append(out, layer.AllTracksOfType(trackType, routes)...)
	}
	return out
}

// Timestamp returns the recursive minimum timestamp over the subtree.
func (n *Node) Timestamp() (int64, bool) {
	var best int64
	found := false
	n.IterTree(func(c *trw.Container) bool {
		if ts, ok := c.Timestamp(); ok && (!found || ts < best) {
			best = ts
			found = true
		}
		return true
	})
	return best, found
}

// BBox returns the recursive union envelope over the subtree.
func (n *Node) BBox() geo.LatLonBBox {
	bbox := geo.NewBBox()
	n.IterTree(func(c *trw.Container) bool {
		bbox.ExtendBBox(c.BBox())
		return true
	})
	return bbox
}

// FindByDate walks the subtree in child order and returns a selection
// for the first track or waypoint on the given yyyy-mm-dd day.
func (n *Node) FindByDate(date string) (Selection, bool) {
	var sel Selection
	found := false
	n.IterTree(func(c *trw.Container) bool {
		kind, uid, ok := c.FindByDate(date)
		if !ok {
			return true
		}
		sel = Selection{Container: c, UID: uid}
		switch kind {
		case trw.KindTrack:
			sel.Kind = SelectedTrack
		case trw.KindRoute:
			sel.Kind = SelectedRoute
		case trw.KindWaypoint:
			sel.Kind = SelectedWaypoint
		}
		found = true
		return false
	})
	return sel, found
}
