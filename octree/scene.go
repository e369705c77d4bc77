package octree

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/aerialnav/ltstar/logging"
)

// Scene describes an octree as a list of boxes applied in order, later boxes overriding earlier ones.
type Scene struct {
	Resolution float64    `json:"resolution"`
	Depth      int        `json:"depth"`
	Center     [3]float64 `json:"center"`
	Prune      bool       `json:"prune,omitempty"`
	Boxes      []Box      `json:"boxes"`
}

// Box is an axis aligned region of the scene set to a single state. MinDepth is the coarsest depth
// at which the box may be stored; omitted means cell by cell at the finest depth.
type Box struct {
	Min      [3]float64 `json:"min"`
	Max      [3]float64 `json:"max"`
	State    Occupancy  `json:"state"`
	MinDepth *int       `json:"min_depth,omitempty"`
}

// ReadScene reads a scene from a JSON file. Environment variables in the file are expanded.
func ReadScene(filePath string) (*Scene, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read scene %q", filePath)
	}
	scene, err := SceneFromReader(bytes.NewReader(buf))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid scene %q", filePath)
	}
	return scene, nil
}

// SceneFromReader decodes a scene from r.
func SceneFromReader(r io.Reader) (*Scene, error) {
	var scene Scene
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&scene); err != nil {
		return nil, errors.Wrap(err, "cannot parse scene")
	}
	return &scene, nil
}

// Build creates the octree described by the scene.
func (s *Scene) Build(logger logging.Logger) (*Octree, error) {
	tree, err := New(vec(s.Center), s.Resolution, s.Depth, logger)
	if err != nil {
		return nil, err
	}
	for i, b := range s.Boxes {
		minDepth := tree.TreeDepth()
		if b.MinDepth != nil {
			minDepth = *b.MinDepth
		}
		if err := tree.FillBox(vec(b.Min), vec(b.Max), b.State, minDepth); err != nil {
			return nil, errors.Wrapf(err, "box %d", i)
		}
	}
	if s.Prune {
		tree.Prune()
	}
	return tree, nil
}

func vec(a [3]float64) r3.Vector {
	return r3.Vector{X: a[0], Y: a[1], Z: a[2]}
}
