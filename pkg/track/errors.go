package track

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyTrack is returned by edit operations that need at least one
// point.
var ErrEmptyTrack = errors.New("track has no points")

// ErrInvalidIndex is returned when a point index is out of range.
var ErrInvalidIndex = errors.New("trackpoint index out of range")

// ErrInvalidArgument is returned for out-of-domain operation arguments.
var ErrInvalidArgument = errors.New("invalid argument")

// OrderingError reports non-monotonic timestamps found by a time-based
// operation. It carries the offending point so the caller can navigate
// to it.
type OrderingError struct {
	Index     int   // index of the out-of-order point
	Timestamp int64 // its timestamp
	Previous  int64 // the timestamp it should not precede
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("trackpoint %d at %s precedes %s",
		e.Index,
		time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339),
		time.Unix(e.Previous, 0).UTC().Format(time.RFC3339))
}
