package motionplan

import (
	"github.com/pkg/errors"

	"github.com/aerialnav/ltstar/motionplan/ltstar"
)

// ErrInvalidRequest is returned for requests that cannot be planned at all.
var ErrInvalidRequest = errors.New("invalid planning request")

// ErrorKind names the failure behind err for diagnostics. It is empty for a nil error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ltstar.ErrInputUnexplored):
		return "input_unexplored"
	case errors.Is(err, ltstar.ErrSearchTimeout):
		return "timeout"
	case errors.Is(err, ltstar.ErrNoPathFound):
		return "no_path"
	case errors.Is(err, ltstar.ErrRelaxationFailure):
		return "relaxation_failure"
	case errors.Is(err, ltstar.ErrPathExtractionCycle):
		return "path_extraction_cycle"
	case errors.Is(err, ltstar.ErrMissingParent):
		return "missing_parent"
	case errors.Is(err, ltstar.ErrDegeneratePath):
		return "degenerate_path"
	default:
		return "internal"
	}
}
