// Package trw implements the track/route/waypoint container: one
// identity owning three uid-keyed collections with visibility,
// metadata, sort preferences and the bulk-load construction API used
// by file loaders.
//
// Containers are owned by the single mutator thread; nothing here is
// safe for concurrent use.
package trw

import (
	"sort"

	"github.com/acerion/slavgps-core/pkg/geo"
	"github.com/acerion/slavgps-core/pkg/track"
	"github.com/acerion/slavgps-core/pkg/waypoint"
)

// ItemKind identifies which collection an item reference points into.
type ItemKind int

const (
	KindTrack ItemKind = iota
	KindRoute
	KindWaypoint
)

// String returns the kind name.
func (k ItemKind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindRoute:
		return "route"
	case KindWaypoint:
		return "waypoint"
	default:
		return "unknown"
	}
}

// SortOrder selects the iteration order for list views and exports.
type SortOrder int

const (
	SortInsertion SortOrder = iota
	SortNameAsc
	SortNameDesc
	SortDateAsc
	SortDateDesc
)

// Metadata is the file-level metadata carried by a container.
type Metadata struct {
	Author      string
	Description string
	Keywords    []string

	HasTimestamp bool
	Timestamp    int64
}

// Container owns tracks, routes and waypoints under one identity.
// Ownership is strictly tree-shaped: the aggregate owns containers, a
// container owns its items, a track owns its points.
type Container struct {
	Name    string
	Visible bool

	Metadata Metadata

	TracksVisible    bool
	RoutesVisible    bool
	WaypointsVisible bool

	TrackSort    SortOrder
	WaypointSort SortOrder

	coordMode geo.CoordMode

	tracks     map[int64]*track.Track
	routes     map[int64]*track.Track
	trackOrder []int64
	routeOrder []int64

	waypoints *waypoint.Store

	uidSeq  int64
	loading bool

	// Selection pointers are weak: uids, cleared on delete.
	SelectedTrackUID      int64
	SelectedWaypointUID   int64
	SelectedTrackpointIdx int
}

// New creates an empty container.
func New(name string) *Container {
	c := &Container{
		Name:             name,
		Visible:          true,
		TracksVisible:    true,
		RoutesVisible:    true,
		WaypointsVisible: true,
		tracks:           make(map[int64]*track.Track),
		routes:           make(map[int64]*track.Track),
	}
	c.waypoints = waypoint.NewStore(c.nextUID)
	c.SelectedTrackpointIdx = -1
	return c
}

// NewWithAutoNameDigits creates a container whose waypoint auto-name
// space uses the given digit count.
func NewWithAutoNameDigits(name string, digits int) *Container {
	c := New(name)
	c.waypoints = waypoint.NewStoreDigits(c.nextUID, digits)
	return c
}

func (c *Container) nextUID() int64 {
	c.uidSeq++
	return c.uidSeq
}

// CoordMode returns the coordinate mode applied to newly added items.
func (c *Container) CoordMode() geo.CoordMode {
	return c.coordMode
}

// SetCoordMode converts every contained coordinate in place and makes
// the mode apply to future additions.
func (c *Container) SetCoordMode(mode geo.CoordMode) {
	if mode == c.coordMode {
		return
	}
	c.coordMode = mode
	for _, t := range c.tracks {
		t.Convert(mode)
	}
	for _, r := range c.routes {
		r.Convert(mode)
	}
	c.waypoints.Each(func(w *waypoint.Waypoint) bool {
		w.Coord = w.Coord.Convert(mode)
		return true
	})
}

// Waypoints exposes the waypoint store.
func (c *Container) Waypoints() *waypoint.Store {
	return c.waypoints
}

// AddTrack inserts a track and returns its uid.
func (c *Container) AddTrack(t *track.Track) int64 {
	t.IsRoute = false
	t.UID = c.nextUID()
	t.Convert(c.coordMode)
	if !c.loading {
		t.RecalculateBBox()
	}
	c.tracks[t.UID] = t
	c.trackOrder = append(c.trackOrder, t.UID)
	return t.UID
}

// AddRoute inserts a route and returns its uid.
func (c *Container) AddRoute(t *track.Track) int64 {
	t.IsRoute = true
	t.UID = c.nextUID()
	t.Convert(c.coordMode)
	if !c.loading {
		t.RecalculateBBox()
	}
	c.routes[t.UID] = t
	c.routeOrder = append(c.routeOrder, t.UID)
	return t.UID
}

// AddWaypoint inserts a waypoint and returns its uid.
func (c *Container) AddWaypoint(w *waypoint.Waypoint) int64 {
	w.Coord = w.Coord.Convert(c.coordMode)
	return c.waypoints.Add(w)
}

// BeginLoad enters bulk-load mode: per-add bounding box work is
// deferred until EndLoad.
func (c *Container) BeginLoad() {
	c.loading = true
}

// AddTrackRaw inserts a track during bulk load without uniquifying its
// name or recomputing its bounding box.
func (c *Container) AddTrackRaw(t *track.Track) int64 {
	return c.AddTrack(t)
}

// AddRouteRaw inserts a route during bulk load.
func (c *Container) AddRouteRaw(t *track.Track) int64 {
	return c.AddRoute(t)
}

// AddWaypointRaw inserts a waypoint during bulk load.
func (c *Container) AddWaypointRaw(w *waypoint.Waypoint) int64 {
	return c.AddWaypoint(w)
}

// EndLoad leaves bulk-load mode and recomputes every cached bounding
// box exactly once.
func (c *Container) EndLoad() {
	c.loading = false
	for _, t := range c.tracks {
		t.RecalculateBBox()
	}
	for _, r := range c.routes {
		r.RecalculateBBox()
	}
}

// GetTrack returns a track by uid.
func (c *Container) GetTrack(uid int64) (*track.Track, bool) {
	t, ok := c.tracks[uid]
	return t, ok
}

// GetRoute returns a route by uid.
func (c *Container) GetRoute(uid int64) (*track.Track, bool) {
	t, ok := c.routes[uid]
	return t, ok
}

// GetTrackByName returns the first track with the given name in
// insertion order.
func (c *Container) GetTrackByName(name string) (*track.Track, bool) {
	for _, uid := range c.trackOrder {
		if c.tracks[uid].Name == name {
			return c.tracks[uid], true
		}
	}
	return nil, false
}

// GetRouteByName returns the first route with the given name.
func (c *Container) GetRouteByName(name string) (*track.Track, bool) {
	for _, uid := range c.routeOrder {
		if c.routes[uid].Name == name {
			return c.routes[uid], true
		}
	}
	return nil, false
}

// DeleteTrack removes a track by uid, clearing the selection if it
// pointed at it.
func (c *Container) DeleteTrack(uid int64) bool {
	if _, ok := c.tracks[uid]; !ok {
		return false
	}
	delete(c.tracks, uid)
	c.trackOrder = removeUID(c.trackOrder, uid)
	if c.SelectedTrackUID == uid {
		c.ClearSelection()
	}
	return true
}

// DeleteRoute removes a route by uid.
func (c *Container) DeleteRoute(uid int64) bool {
	if _, ok := c.routes[uid]; !ok {
		return false
	}
	delete(c.routes, uid)
	c.routeOrder = removeUID(c.routeOrder, uid)
	if c.SelectedTrackUID == uid {
		c.ClearSelection()
	}
	return true
}

// DeleteWaypoint removes a waypoint by uid.
func (c *Container) DeleteWaypoint(uid int64) bool {
	if !c.waypoints.Delete(uid) {
		return false
	}
	if c.SelectedWaypointUID == uid {
		c.ClearSelection()
	}
	return true
}

// ClearSelection drops all selection pointers.
func (c *Container) ClearSelection() {
	c.SelectedTrackUID = 0
	c.SelectedWaypointUID = 0
	c.SelectedTrackpointIdx = -1
}

func removeUID(order []int64, uid int64) []int64 {
	for i, u := range order {
		if u == uid {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

// TrackCount returns the number of tracks.
func (c *Container) TrackCount() int { return len(c.tracks) }

// RouteCount returns the number of routes.
func (c *Container) RouteCount() int { return len(c.routes) }

// WaypointCount returns the number of waypoints.
func (c *Container) WaypointCount() int { return c.waypoints.Len() }

// sortedTracks returns the tracks of the given collection ordered per
// the sort order. The returned slice is fresh; callers may keep it.
func (c *Container) sortedTracks(m map[int64]*track.Track, order []int64, so SortOrder) []*track.Track {
	out := make([]*track.Track, 0, len(order))
	for _, uid := range order {
		out = append(out, m[uid])
	}
	switch so {
	case SortNameAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case SortNameDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	case SortDateAsc, SortDateDesc:
		ts := func(t *track.Track) int64 {
			v, ok := t.Timestamp()
			if !ok {
				return int64(^uint64(0) >> 1) // undated last
			}
			return v
		}
		if so == SortDateAsc {
			sort.SliceStable(out, func(i, j int) bool { return ts(out[i]) < ts(out[j]) })
		} else {
			sort.SliceStable(out, func(i, j int) bool { return ts(out[i]) > ts(out[j]) })
		}
	}
	return out
}

// Tracks returns the tracks in the given order.
func (c *Container) Tracks(so SortOrder) []*track.Track {
	return c.sortedTracks(c.tracks, c.trackOrder, so)
}

// Routes returns the routes in the given order.
func (c *Container) Routes(so SortOrder) []*track.Track {
	return c.sortedTracks(c.routes, c.routeOrder, so)
}

// SortedWaypoints returns the waypoints in the given order.
func (c *Container) SortedWaypoints(so SortOrder) []*waypoint.Waypoint {
	out := c.waypoints.All()
	switch so {
	case SortNameAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case SortNameDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	case SortDateAsc, SortDateDesc:
		ts := func(w *waypoint.Waypoint) int64 {
			if !w.HasTimestamp {
				return int64(^uint64(0) >> 1)
			}
			return w.Timestamp
		}
		if so == SortDateAsc {
			sort.SliceStable(out, func(i, j int) bool { return ts(out[i]) < ts(out[j]) })
		} else {
			sort.SliceStable(out, func(i, j int) bool { return ts(out[i]) > ts(out[j]) })
		}
	}
	return out
}

// Timestamp returns the earliest of any track point timestamp, any
// waypoint timestamp, or the metadata timestamp.
func (c *Container) Timestamp() (int64, bool) {
	var best int64
	found := false
	note := func(ts int64) {
		if !found || ts < best {
			best = ts
			found = true
		}
	}
	for _, t := range c.tracks {
		if ts, ok := t.Timestamp(); ok {
			note(ts)
		}
	}
	c.waypoints.Each(func(w *waypoint.Waypoint) bool {
		if w.HasTimestamp {
			note(w.Timestamp)
		}
		return true
	})
	if c.Metadata.HasTimestamp {
		note(c.Metadata.Timestamp)
	}
	return best, found
}

// BBox returns the union envelope over tracks, routes and waypoints.
func (c *Container) BBox() geo.LatLonBBox {
	bbox := geo.NewBBox()
	for _, t := range c.tracks {
		bbox.ExtendBBox(t.BBox)
	}
	for _, r := range c.routes {
		bbox.ExtendBBox(r.BBox)
	}
	bbox.ExtendBBox(c.waypoints.BBox())
	return bbox
}

// WaypointsBBox returns the envelope over all waypoints.
func (c *Container) WaypointsBBox() geo.LatLonBBox {
	return c.waypoints.BBox()
}

// FindByDate returns the first item whose day matches yyyy-mm-dd,
// preferring tracks over waypoints.
func (c *Container) FindByDate(date string) (ItemKind, int64, bool) {
	for _, uid := range c.trackOrder {
		t := c.tracks[uid]
		if ts, ok := t.Timestamp(); ok && dayMatches(ts, date) {
			return KindTrack, uid, true
		}
	}
	if w, ok := c.waypoints.FindByDate(date); ok {
		return KindWaypoint, w.UID, true
	}
	return 0, 0, false
}
