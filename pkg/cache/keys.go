package cache

import "fmt"

// Keyer derives cache keys. Implementations must return equal keys for
// inputs that produce equal outputs.
type Keyer interface {
	// ResultKey identifies a reconstruction of the set hashed as setHash.
	ResultKey(setHash string, opts ResultKeyOpts) string
	// ArtifactKey identifies a diagram rendered from a cached result.
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string
}

// ResultKeyOpts holds the options that change a reconstruction.
type ResultKeyOpts struct {
	ErrorMargin   float64 `json:"error_margin"`
	RootAAF       float64 `json:"root_aaf"`
	KeepShortcuts bool    `json:"keep_shortcuts,omitempty"`
	AllLevels     bool    `json:"all_levels,omitempty"`
	MaxTrees      int     `json:"max_trees,omitempty"`
	NoRebuild     bool    `json:"no_rebuild,omitempty"`
	Top           int     `json:"top"` // stored reports hold only the top trees
}

// ArtifactKeyOpts holds the options that change a rendered diagram.
type ArtifactKeyOpts struct {
	Kind     string `json:"kind"` // "graph" or "tree"
	Tree     int    `json:"tree,omitempty"`
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	Samples  bool   `json:"samples,omitempty"`
}

// DefaultKeyer hashes key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey returns "result:<hash>".
func (DefaultKeyer) ResultKey(setHash string, opts ResultKeyOpts) string {
	return hashKey("result", setHash, opts)
}

// ArtifactKey returns "artifact:<kind>:<format>:<hash>".
func (DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s:%s", opts.Kind, opts.Format), resultHash, opts)
}
