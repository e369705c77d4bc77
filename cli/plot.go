package cli

import (
	"image/color"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/aerialnav/ltstar/octree"
)

var (
	occupiedColor = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	pathColor     = color.RGBA{B: 200, A: 255}
)

// PlotAction writes a side view (X against Z) of the occupied voxels crossing a Y plane. When start
// and goal are given the planned path is drawn on top.
func PlotAction(c *cli.Context) (err error) {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, e.Close())
	}()

	var path []r3.Vector
	if c.IsSet(flagStart) || c.IsSet(flagGoal) {
		start, goal, err := endpoints(c.String(flagStart), c.String(flagGoal))
		if err != nil {
			return err
		}
		reply, err := e.planner.Plan(c.Context, requestFromFlags(c, start, goal))
		if err != nil {
			return errors.Wrap(err, "planning the path to plot")
		}
		for _, wp := range reply.Waypoints {
			path = append(path, wp.Position)
		}
	}

	out := c.Path(flagOutput)
	if err := renderSideView(e.tree, c.Float64(flagSliceY), path, out); err != nil {
		return err
	}
	printf(c.App.Writer, "wrote %s", out)
	return nil
}

// renderSideView draws one marker per occupied voxel whose extent crosses the plane y = sliceY,
// sized to the voxel, and the path projected onto the XZ plane.
func renderSideView(tree *octree.Octree, sliceY float64, path []r3.Vector, out string) error {
	p := plot.New()
	p.Title.Text = "occupied voxels and path"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "z (m)"

	width := 8 * vg.Inch
	var (
		cells plotter.XYs
		sides []float64
	)
	tree.Leaves(func(center r3.Vector, side float64, state octree.Occupancy) bool {
		if state == octree.Occupied && center.Y-side/2 <= sliceY && sliceY < center.Y+side/2 {
			cells = append(cells, plotter.XY{X: center.X, Y: center.Z})
			sides = append(sides, side)
		}
		return true
	})

	if len(cells) > 0 {
		// marker sizes follow the drawn x range, roughly what the axis will span
		minX, maxX := math.Inf(1), math.Inf(-1)
		for i, c := range cells {
			minX = math.Min(minX, c.X-sides[i]/2)
			maxX = math.Max(maxX, c.X+sides[i]/2)
		}
		for _, wp := range path {
			minX, maxX = math.Min(minX, wp.X), math.Max(maxX, wp.X)
		}
		scale := float64(width) / (maxX - minX)

		scatter, err := plotter.NewScatter(cells)
		if err != nil {
			return err
		}
		scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{
				Color:  occupiedColor,
				Radius: vg.Length(sides[i]*scale) / 2,
				Shape:  draw.BoxGlyph{},
			}
		}
		p.Add(scatter)
	}

	if len(path) > 0 {
		pts := make(plotter.XYs, len(path))
		for i, wp := range path {
			pts[i] = plotter.XY{X: wp.X, Y: wp.Z}
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return err
		}
		line.Color = pathColor
		line.Width = vg.Points(1.5)
		points.Color = pathColor
		points.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		p.Legend.Add("path", line)
	}

	if err := p.Save(width, 6*vg.Inch, out); err != nil {
		return errors.Wrapf(err, "saving plot to %q", out)
	}
	return nil
}
