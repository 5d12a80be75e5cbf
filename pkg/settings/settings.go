// Package settings gives the core a typed view over the external
// key/value store owned by the embedding application. Unknown or
// malformed values fall back to the documented defaults.
package settings

import (
	"runtime"
	"strconv"
)

// Recognized keys.
const (
	KeyCPUPoolSize     = "background.cpu_pool_size"
	KeyNetworkPoolSize = "background.network_pool_size"
	KeyThumbnailDir    = "thumbnails.directory"
	KeyDateFormat      = "listview.date_format"
	KeyAutoNameDigits  = "waypoints.autoname_digits"
)

// Defaults.
const (
	DefaultNetworkPoolSize = 8
	DefaultDateFormat      = "2006-01-02"
	DefaultAutoNameDigits  = 3
)

// Store is the external key/value store the settings are read from.
type Store interface {
	Get(key string) (string, bool)
}

// MapStore is a Store backed by a plain map, used by embedders without
// a persistent store and by tests.
type MapStore map[string]string

// Get implements Store.
func (m MapStore) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Settings is the typed accessor layer.
type Settings struct {
	store Store
}

// New wraps a store; a nil store yields all defaults.
func New(store Store) *Settings {
	if store == nil {
		store = MapStore(nil)
	}
	return &Settings{store: store}
}

func (s *Settings) intOr(key string, def int) int {
	v, ok := s.store.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// CPUPoolSize returns the CPU-bound worker count, defaulting to the
// number of cores.
func (s *Settings) CPUPoolSize() int {
	return s.intOr(KeyCPUPoolSize, runtime.NumCPU())
}

// NetworkPoolSize returns the network-bound worker count.
func (s *Settings) NetworkPoolSize() int {
	return s.intOr(KeyNetworkPoolSize, DefaultNetworkPoolSize)
}

// ThumbnailDir returns the thumbnail output directory; empty means
// alongside each source image.
func (s *Settings) ThumbnailDir() string {
	v, _ := s.store.Get(KeyThumbnailDir)
	return v
}

// DateFormat returns the Go layout string used by list views.
func (s *Settings) DateFormat() string {
	if v, ok := s.store.Get(KeyDateFormat); ok && v != "" {
		return v
	}
	return DefaultDateFormat
}

// AutoNameDigits returns the width of the waypoint auto-name space.
func (s *Settings) AutoNameDigits() int {
	n := s.intOr(KeyAutoNameDigits, DefaultAutoNameDigits)
	if n > 9 {
		return DefaultAutoNameDigits
	}
	return n
}
