package ltstar

import "github.com/pkg/errors"

var (
	// ErrInputUnexplored is returned when the start or the goal lies in unknown space.
	ErrInputUnexplored = errors.New("start or goal is in unexplored space")

	// ErrSearchTimeout is returned when the time budget runs out or the context is done before a
	// path is found.
	ErrSearchTimeout = errors.New("search timed out")

	// ErrNoPathFound is returned when the open set empties without reaching the goal.
	ErrNoPathFound = errors.New("no path found")

	// ErrRelaxationFailure is returned when a popped node has neither a visible parent nor a
	// visible closed neighbour and the relaxation policy is RelaxationAbort.
	ErrRelaxationFailure = errors.New("node has no visible parent or closed neighbour")

	// ErrPathExtractionCycle is returned when walking parents from the goal takes more hops than
	// allowed. The truncated path is still returned.
	ErrPathExtractionCycle = errors.New("path extraction exceeded the hop limit")

	// ErrMissingParent is returned when a node on the solution chain has no parent.
	ErrMissingParent = errors.New("node on the solution chain has no parent")

	// ErrDegeneratePath is returned when a search claims success with fewer than two waypoints.
	ErrDegeneratePath = errors.New("degenerate path")
)
