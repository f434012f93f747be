package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey keys a generated layout by blueprint hash and search inputs.
	LayoutKey(blueprintHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendering of a stored layout.
	ArtifactKey(layoutID string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs besides the blueprint that change a
// generated layout.
type LayoutKeyOpts struct {
	Seed            int64   `json:"seed"`
	MaxRebases      int     `json:"max_rebases"`
	RebaseDecayRate float64 `json:"rebase_decay_rate"`
	MaxBranchLength int     `json:"max_branch_length"`
	MaxRestarts     int     `json:"max_restarts"`
	Collectables    bool    `json:"collectables"`
}

// ArtifactKeyOpts identify one rendering of a layout.
type ArtifactKeyOpts struct {
	Kind     string `json:"kind"` // "floor", "graph" or "chains"
	Floor    int    `json:"floor,omitempty"`
	Format   string `json:"format"`
	CellSize int    `json:"cell_size,omitempty"`
	Labels   bool   `json:"labels,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(blueprintHash string, opts LayoutKeyOpts) string {
	return "layout:" + digest(blueprintHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(layoutID string, opts ArtifactKeyOpts) string {
	return "artifact:" + digest(layoutID, opts)
}

// keyInput is what a key hashes: the blueprint hash or layout ID the key is
// about, and the options that vary its result.
type keyInput[O LayoutKeyOpts | ArtifactKeyOpts] struct {
	Subject string `json:"subject"`
	Opts    O      `json:"opts"`
}

// digest hashes subject and opts. Both option types are flat structs of
// scalars, so encoding cannot fail and field order is fixed.
func digest[O LayoutKeyOpts | ArtifactKeyOpts](subject string, opts O) string {
	data, _ := json.Marshal(keyInput[O]{Subject: subject, Opts: opts})
	return Hash(data)
}

// Hash returns the hex SHA-256 of data. Blueprint hashes and file cache
// paths use it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
