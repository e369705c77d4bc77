package ltstar

import (
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/aerialnav/ltstar/logging"
)

// Default values for search options.
const (
	// DefaultRingPoints is the number of points on the ring of radius margin/2 tested around
	// every corridor.
	DefaultRingPoints = 8

	// DefaultMaxPathHops is the number of parent hops allowed when walking back from the goal.
	DefaultMaxPathHops = 50
)

// RelaxationPolicy decides what happens to a popped node that can be attached to neither its
// parent nor any closed neighbour.
type RelaxationPolicy int

const (
	// RelaxationSkip drops the node without closing or expanding it. It keeps no parent and an
	// infinite cost, so a later expansion may open it again.
	RelaxationSkip RelaxationPolicy = iota
	// RelaxationAbort fails the whole search with ErrRelaxationFailure.
	RelaxationAbort
)

func (p RelaxationPolicy) String() string {
	switch p {
	case RelaxationSkip:
		return "skip"
	case RelaxationAbort:
		return "abort"
	}
	return fmt.Sprintf("RelaxationPolicy(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p RelaxationPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *RelaxationPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "skip", "":
		*p = RelaxationSkip
	case "abort":
		*p = RelaxationAbort
	default:
		return errors.Errorf("unknown relaxation policy %q", string(text))
	}
	return nil
}

type options struct {
	logger            logging.Logger
	clock             clock.Clock
	ringPoints        int
	maxPathHops       int
	relaxation        RelaxationPolicy
	unknownGoalRadius float64
	iterationHook     func(iteration int)
}

// Option configures a search.
type Option func(*options)

func newOptions(opts ...Option) *options {
	o := &options{
		clock:             clock.New(),
		ringPoints:        DefaultRingPoints,
		maxPathHops:       DefaultMaxPathHops,
		relaxation:        RelaxationSkip,
		unknownGoalRadius: -1,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewBlankLogger("ltstar")
	}
	return o
}

// WithLogger sets the logger used for search diagnostics.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock sets the clock the time budget is measured against.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithRingPoints sets how many points are placed on the corridor ring. Must be even and at least 4.
func WithRingPoints(n int) Option {
	return func(o *options) { o.ringPoints = n }
}

// WithMaxPathHops bounds the parent walk during path extraction.
func WithMaxPathHops(n int) Option {
	return func(o *options) { o.maxPathHops = n }
}

// WithRelaxationPolicy selects how relaxation failures are handled.
func WithRelaxationPolicy(p RelaxationPolicy) Option {
	return func(o *options) { o.relaxation = p }
}

// WithUnknownGoalRadius sets the distance from the goal centre within which unknown space does not
// block line of sight. A negative radius means half the safety margin.
func WithUnknownGoalRadius(r float64) Option {
	return func(o *options) { o.unknownGoalRadius = r }
}

// withIterationHook is called at the end of every search iteration.
func withIterationHook(fn func(iteration int)) Option {
	return func(o *options) { o.iterationHook = fn }
}
