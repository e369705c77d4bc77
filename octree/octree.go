// Package octree implements a sparse occupancy octree that answers the spatial queries a planner
// needs: exploration state, occupancy, ray casts, voxel sizes and neighbour enumeration. Space that
// was never inserted is unknown; leaves may sit at any depth so the tree has variable resolution.
package octree

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Occupancy is the state of a point in the map.
type Occupancy uint8

// A point is unknown until a leaf covering it has been inserted.
const (
	Unknown = Occupancy(iota)
	Free
	Occupied
)

func (o Occupancy) String() string {
	switch o {
	case Unknown:
		return "unknown"
	case Free:
		return "free"
	case Occupied:
		return "occupied"
	}
	return fmt.Sprintf("Occupancy(%d)", uint8(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Occupancy) MarshalText() ([]byte, error) {
	if o > Occupied {
		return nil, errors.Errorf("invalid occupancy %d", uint8(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Occupancy) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "unknown":
		*o = Unknown
	case "free":
		*o = Free
	case "occupied":
		*o = Occupied
	default:
		return errors.Errorf("unknown occupancy %q", string(text))
	}
	return nil
}

// maxTreeDepth bounds the key space so keys fit comfortably in an int64.
const maxTreeDepth = 30
