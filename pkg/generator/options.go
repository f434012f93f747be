package generator

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
)

const (
	// DefaultMaxRebases is how many times the layout at chain index 0 may be
	// copied and extended before the search gives up on it.
	DefaultMaxRebases = 100

	// DefaultRebaseDecayRate shrinks the rebase allowance of later chains.
	DefaultRebaseDecayRate = 0.2

	// DefaultMaxRestarts bounds full restarts after a completion check fails.
	DefaultMaxRestarts = 10
)

// Options tunes the backtracking search.
type Options struct {
	// Name labels generated layouts and seeds their IDs.
	Name string `json:"name,omitempty" toml:"name" yaml:"name"`

	// MaxRebases is the rebase allowance at chain index 0. Must be >= 1.
	MaxRebases int `json:"max_rebases,omitempty" toml:"max_rebases" yaml:"max_rebases"`

	// RebaseDecayRate controls how fast the allowance decays with the chain
	// index. Zero keeps it constant.
	RebaseDecayRate float64 `json:"rebase_decay_rate,omitempty" toml:"rebase_decay_rate" yaml:"rebase_decay_rate"`

	// MaxBranchLength splits longer non-cyclic chains. Zero disables it.
	MaxBranchLength int `json:"max_branch_length,omitempty" toml:"max_branch_length" yaml:"max_branch_length"`

	// MaxRestarts bounds full restarts. Zero selects DefaultMaxRestarts.
	MaxRestarts int `json:"max_restarts,omitempty" toml:"max_restarts" yaml:"max_restarts"`

	// Logger receives search progress. Nil discards it.
	Logger *log.Logger `json:"-" toml:"-" yaml:"-"`
}

// DefaultOptions returns the recommended tunables.
func DefaultOptions() Options {
	return Options{
		MaxRebases:      DefaultMaxRebases,
		RebaseDecayRate: DefaultRebaseDecayRate,
		MaxRestarts:     DefaultMaxRestarts,
	}
}

// SetDefaults fills zero-valued fields. RebaseDecayRate is left alone
// because zero is a meaningful rate.
func (o *Options) SetDefaults() {
	if o.MaxRebases == 0 {
		o.MaxRebases = DefaultMaxRebases
	}
	if o.MaxRestarts == 0 {
		o.MaxRestarts = DefaultMaxRestarts
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Validate checks the tunables.
func (o *Options) Validate() error {
	if o.MaxRebases < 1 {
		return rwerrors.New(rwerrors.ErrCodeInvalidOptions, "max rebases must be at least 1, got %d", o.MaxRebases)
	}
	if o.RebaseDecayRate < 0 || math.IsNaN(o.RebaseDecayRate) || math.IsInf(o.RebaseDecayRate, 0) {
		return rwerrors.New(rwerrors.ErrCodeInvalidOptions, "rebase decay rate must be a finite value >= 0, got %v", o.RebaseDecayRate)
	}
	if o.MaxRestarts < 0 {
		return rwerrors.New(rwerrors.ErrCodeInvalidOptions, "max restarts must not be negative, got %d", o.MaxRestarts)
	}
	return nil
}

// Allowance returns how many times the partial layout at chain index i may
// be rebased: max(1, ceil(MaxRebases * exp(-i * RebaseDecayRate))).
func (o *Options) Allowance(i int) int {
	n := math.Ceil(float64(o.MaxRebases) * math.Exp(-float64(i)*o.RebaseDecayRate))
	return max(1, int(n))
}
