package cache

// Keyer builds cache keys. Implementations must return equal keys exactly
// when the inputs would produce identical artifacts.
type Keyer interface {
	// ArtifactKey generates a key for one encoded artifact of an input image.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts lists every parameter that changes an artifact's bytes.
type ArtifactKeyOpts struct {
	Stage        string  `json:"stage"`
	Format       string  `json:"format"`
	Step         int     `json:"step"`
	Remainder    string  `json:"remainder"`
	MaxStepRatio float64 `json:"max_step_ratio"`
	Labels       bool    `json:"labels"`
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey generates "artifact:<sha256>" from the input hash and options.
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}
