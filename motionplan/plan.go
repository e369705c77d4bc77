package motionplan

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/aerialnav/ltstar/spatialmath"
)

// Request asks for waypoints from Start to Goal keeping SafetyMargin of clearance. MaxTimeSecs is
// the search budget; zero or less fails without searching. Either may be left nil to take the
// planner's request defaults.
type Request struct {
	Start        r3.Vector `json:"start"`
	Goal         r3.Vector `json:"goal"`
	SafetyMargin *float64  `json:"safety_margin,omitempty"`
	MaxTimeSecs  *int      `json:"max_time_secs,omitempty"`
	RequestID    string    `json:"request_id"`
}

func (r Request) margin() float64 {
	if r.SafetyMargin == nil {
		return 0
	}
	return *r.SafetyMargin
}

func (r Request) maxTimeSecs() int {
	if r.MaxTimeSecs == nil {
		return 0
	}
	return *r.MaxTimeSecs
}

func (r Request) budget() time.Duration {
	if r.maxTimeSecs() <= 0 {
		return 0
	}
	return time.Duration(r.maxTimeSecs()) * time.Second
}

func (r Request) validate() error {
	if !finite(r.Start) || !finite(r.Goal) {
		return errors.Wrapf(ErrInvalidRequest, "non-finite endpoint, start %v goal %v", r.Start, r.Goal)
	}
	if r.SafetyMargin == nil {
		return errors.Wrap(ErrInvalidRequest, "safety margin is required")
	}
	if m := *r.SafetyMargin; !(m > 0) || math.IsInf(m, 1) {
		return errors.Wrapf(ErrInvalidRequest, "safety margin must be positive, got %v", m)
	}
	return nil
}

func finite(p r3.Vector) bool {
	for _, v := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Waypoint is a position to fly through and the heading to hold there.
type Waypoint struct {
	Position r3.Vector `json:"position"`
	Yaw      float64   `json:"yaw"`
}

// Reply answers a Request. WaypointAmount is zero and Waypoints empty when Success is false.
type Reply struct {
	Success        bool       `json:"success"`
	Waypoints      []Waypoint `json:"waypoints"`
	WaypointAmount int        `json:"waypoint_amount"`
	RequestID      string     `json:"request_id"`
}

// YawMode selects how waypoint headings are assigned.
type YawMode int

const (
	// YawHeading points every waypoint along the segment leaving it. The last waypoint keeps the
	// heading of the segment arriving at it.
	YawHeading YawMode = iota
	// YawZero gives every waypoint a yaw of 0.
	YawZero
)

func (m YawMode) String() string {
	switch m {
	case YawHeading:
		return "heading"
	case YawZero:
		return "zero"
	}
	return fmt.Sprintf("YawMode(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m YawMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *YawMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "heading", "":
		*m = YawHeading
	case "zero":
		*m = YawZero
	default:
		return errors.Errorf("unknown yaw mode %q", string(text))
	}
	return nil
}

func assignYaw(path []r3.Vector, mode YawMode) []Waypoint {
	waypoints := make([]Waypoint, len(path))
	for i, p := range path {
		waypoints[i].Position = p
		if mode != YawHeading || len(path) < 2 {
			continue
		}
		if i+1 < len(path) {
			waypoints[i].Yaw = spatialmath.Yaw(p, path[i+1])
		} else {
			waypoints[i].Yaw = spatialmath.Yaw(path[i-1], p)
		}
	}
	return waypoints
}
