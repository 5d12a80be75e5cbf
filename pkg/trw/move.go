package trw

import (
	"strconv"
	"time"

	"github.com/acerion/slavgps-core/pkg/track"
	"github.com/acerion/slavgps-core/pkg/waypoint"
)

func dayMatches(ts int64, date string) bool {
	return time.Unix(ts, 0).UTC().Format(time.DateOnly) == date
}

// MoveItem transfers one item to another container. If the name
// collides in the destination, the destination generates a fresh
// unique name before insertion. The item gets a destination uid; the
// source selection is cleared if it pointed at the item.
func (c *Container) MoveItem(dst *Container, kind ItemKind, uid int64) bool {
	if dst == c {
		return false
	}
	switch kind {
	case KindTrack:
		t, ok := c.tracks[uid]
		if !ok {
			return false
		}
		c.DeleteTrack(uid)
		t.Name = dst.uniqueTrackName(t.Name)
		dst.AddTrack(t)
		return true
	case KindRoute:
		r, ok := c.routes[uid]
		if !ok {
			return false
		}
		c.DeleteRoute(uid)
		r.Name = dst.uniqueRouteName(r.Name)
		dst.AddRoute(r)
		return true
	case KindWaypoint:
		w, ok := c.waypoints.Remove(uid)
		if !ok {
			return false
		}
		if c.SelectedWaypointUID == uid {
			c.ClearSelection()
		}
		w.Name = dst.waypoints.UniqueNameSuggestion(w.Name)
		dst.AddWaypoint(w)
		return true
	default:
		return false
	}
}

func (c *Container) uniqueTrackName(base string) string {
	return uniqueName(base, func(name string) bool {
		_, taken := c.GetTrackByName(name)
		return taken
	})
}

func (c *Container) uniqueRouteName(base string) string {
	return uniqueName(base, func(name string) bool {
		_, taken := c.GetRouteByName(name)
		return taken
	})
}

func uniqueName(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := base + "#" + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// Uniquify rewrites colliding names so every track, route and waypoint
// name is unique within its collection. Items earlier in the given
// order keep their names.
func (c *Container) Uniquify(so SortOrder) int {
	renamed := 0

	seenTracks := make(map[string]bool)
	for _, t := range c.Tracks(so) {
		if seenTracks[t.Name] {
			t.Name = uniqueName(t.Name, func(name string) bool {
				return seenTracks[name]
			})
			renamed++
		}
		seenTracks[t.Name] = true
	}

	seenRoutes := make(map[string]bool)
	for _, r := range c.Routes(so) {
		if seenRoutes[r.Name] {
			r.Name = uniqueName(r.Name, func(name string) bool {
				return seenRoutes[name]
			})
			renamed++
		}
		seenRoutes[r.Name] = true
	}

	seenWps := make(map[string]bool)
	for _, w := range c.SortedWaypoints(so) {
		if seenWps[w.Name] {
			w.Name = uniqueName(w.Name, func(name string) bool {
				return seenWps[name]
			})
			renamed++
		}
		seenWps[w.Name] = true
	}

	return renamed
}

// AllTracksOfType returns tracks (or routes) whose Type field matches.
func (c *Container) AllTracksOfType(trackType string, routes bool) []*track.Track {
	var src []*track.Track
	if routes {
		src = c.Routes(SortInsertion)
	} else {
		src = c.Tracks(SortInsertion)
	}
	var out []*track.Track
	for _, t := range src {
		if t.Type == trackType {
			out = append(out, t)
		}
	}
	return out
}

// ImagePaths returns the image path of every waypoint carrying one,
// the input to the thumbnail pipeline.
func (c *Container) ImagePaths() []string {
	var out []string
	c.waypoints.Each(func(w *waypoint.Waypoint) bool {
		if w.ImagePath != "" {
			out = append(out, w.ImagePath)
		}
		return true
	})
	return out
}
