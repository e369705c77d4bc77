package ltstar

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// extractPath walks parents from solution back to start and returns the centres in start to
// solution order. When the walk exceeds maxHops the part collected so far is returned, still in
// start to solution order, together with ErrPathExtractionCycle.
func (a *arena) extractPath(start, solution handle, maxHops int) ([]r3.Vector, error) {
	reversed := []r3.Vector{a.get(solution).center}
	cur := solution
	for hops := 0; cur != start; hops++ {
		if hops >= maxHops {
			return reverse(reversed), errors.Wrapf(ErrPathExtractionCycle, "gave up after %d hops", maxHops)
		}
		parent := a.get(cur).parent
		if parent == noParent {
			return nil, errors.Wrapf(ErrMissingParent, "node %v", a.get(cur).center)
		}
		reversed = append(reversed, a.get(parent).center)
		cur = parent
	}
	return reverse(reversed), nil
}

func reverse(path []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(path))
	for i, p := range path {
		out[len(path)-1-i] = p
	}
	return out
}
