// Package pipeline runs the decode → recompose → render pipeline behind the
// stripweave CLI.
//
// Centralizing the stages here keeps caching, hooks and logging identical
// for every caller, whether it hands over a file path or bytes already in
// memory.
//
// # Architecture
//
// A run has four stages:
//
//  1. Decode: turn the input bytes into an image
//  2. Recompose: build the vertical and horizontal stages and the composite
//  3. Label: optionally caption each panel
//  4. Encode: write the requested artifacts in the output format
//
// Encoded artifacts are cached under the SHA-256 of the input bytes and the
// options that affect them. When every requested artifact is cached the
// image is never decoded.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.ExecuteFile(ctx, "photo.png", pipeline.Options{Step: 8})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts[pipeline.ArtifactComposite]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stripweave/pkg/cache"
	imageio "github.com/matzehuels/stripweave/pkg/io"
	"github.com/matzehuels/stripweave/pkg/recompose"
)

// =============================================================================
// Artifacts
// =============================================================================

// Artifact names, used as keys of Result.Artifacts.
const (
	ArtifactComposite  = "composite"
	ArtifactVertical   = "vertical"
	ArtifactHorizontal = "horizontal"
)

// DefaultFormat is the default output format.
const DefaultFormat = imageio.DefaultFormat

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Recomposition
	Step         int     `json:"step"`
	Remainder    string  `json:"remainder,omitempty"`
	MaxStepRatio float64 `json:"max_step_ratio,omitempty"`
	Workers      int     `json:"workers,omitempty"`

	// Output
	Format string `json:"format,omitempty"`
	Labels bool   `json:"labels,omitempty"` // caption each panel
	Stages bool   `json:"stages,omitempty"` // also return the vertical and horizontal stages

	// Refresh skips cache lookups; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and hooks.
	RunID string

	// InputHash is the SHA-256 of the input bytes.
	InputHash string

	// Width and Height are the composite dimensions.
	Width  int
	Height int

	// Artifacts contains encoded images keyed by artifact name.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks whether the run was served from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	DecodeTime    time.Duration
	RecomposeTime time.Duration
	RenderTime    time.Duration
	Total         time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	Hit bool // Whether every artifact came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Remainder == "" {
		o.Remainder = recompose.DefaultRemainder
	}
	if o.Format == "" {
		o.Format = string(DefaultFormat)
	}
	format, err := imageio.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.Format = string(format)
	if err := o.Params().Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Params returns the recomposition parameters.
func (o *Options) Params() recompose.Params {
	return recompose.Params{
		Step:         o.Step,
		Remainder:    o.Remainder,
		MaxStepRatio: o.MaxStepRatio,
		Workers:      o.Workers,
	}
}

// Artifacts returns the artifact names a run produces, composite first.
func (o *Options) Artifacts() []string {
	if o.Stages {
		return []string{ArtifactComposite, ArtifactVertical, ArtifactHorizontal}
	}
	return []string{ArtifactComposite}
}

// ArtifactKeyOpts returns cache key options for one artifact.
// Workers is left out: it changes scheduling, not pixels.
func (o *Options) ArtifactKeyOpts(artifact string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Stage:        artifact,
		Format:       o.Format,
		Step:         o.Step,
		Remainder:    o.Remainder,
		MaxStepRatio: o.MaxStepRatio,
		Labels:       o.Labels,
	}
}
