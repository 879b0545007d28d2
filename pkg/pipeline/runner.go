package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stripweave/pkg/cache"
	imageio "github.com/matzehuels/stripweave/pkg/io"
	"github.com/matzehuels/stripweave/pkg/observability"
	"github.com/matzehuels/stripweave/pkg/recompose"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// ExecuteFile reads the image at path and runs the pipeline on it.
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := imageio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, data, opts)
}

// Execute runs the complete decode → recompose → render pipeline on the
// encoded image in input.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (res *Result, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := r.Logger.With("run", runID[:8])
	hooks := observability.Pipeline()

	hooks.OnRunStart(ctx, runID, opts.Step)
	defer func() { hooks.OnRunComplete(ctx, runID, time.Since(start), err) }()

	result := &Result{
		RunID:     runID,
		InputHash: cache.Hash(input),
	}

	// Cache
	if !opts.Refresh {
		if artifacts, ok := r.lookup(ctx, result.InputHash, &opts); ok {
			info, perr := imageio.Probe(artifacts[ArtifactComposite])
			if perr == nil {
				result.Artifacts = artifacts
				result.Width, result.Height = info.Width, info.Height
				result.CacheInfo.Hit = true
				result.Stats.Total = time.Since(start)
				logger.Debug("artifacts served from cache", "hash", result.InputHash[:12])
				return result, nil
			}
			logger.Debug("ignoring unreadable cached composite", "error", perr)
		}
	}

	// Stage 1: Decode
	var img image.Image
	result.Stats.DecodeTime, err = runStage(ctx, observability.StageDecode, func() error {
		var err error
		img, err = imageio.DecodeBytes(input)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	b := img.Bounds()
	logger.Debug("decoded image",
		"width", b.Dx(),
		"height", b.Dy(),
		"duration", result.Stats.DecodeTime)

	// Stage 2: Recompose
	var rec *recompose.Result
	result.Stats.RecomposeTime, err = runStage(ctx, observability.StageRecompose, func() error {
		var err error
		rec, err = recompose.Recompose(img, opts.Params())
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Width = rec.Composite.Bounds().Dx()
	result.Height = rec.Composite.Bounds().Dy()
	logger.Debug("recomposed image",
		"step", opts.Step,
		"remainder", opts.Remainder,
		"duration", result.Stats.RecomposeTime)

	// Stage 3: Render
	result.Stats.RenderTime, err = runStage(ctx, observability.StageRender, func() error {
		var err error
		result.Artifacts, err = Render(rec, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	logger.Debug("rendered artifacts",
		"format", opts.Format,
		"artifacts", len(result.Artifacts),
		"duration", result.Stats.RenderTime)

	r.store(ctx, logger, result.InputHash, &opts, result.Artifacts)

	result.Stats.Total = time.Since(start)
	return result, nil
}

// runStage runs fn between stage hooks and returns its duration. It fails
// fast if ctx is already done.
func runStage(ctx context.Context, stage string, fn func() error) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, stage)
	start := time.Now()
	err := fn()
	d := time.Since(start)
	hooks.OnStageComplete(ctx, stage, d, err)
	return d, err
}

// lookup returns every requested artifact from the cache, or false if any
// is missing.
func (r *Runner) lookup(ctx context.Context, inputHash string, opts *Options) (map[string][]byte, bool) {
	hooks := observability.Cache()
	artifacts := make(map[string][]byte)
	for _, name := range opts.Artifacts() {
		key := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(name))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			hooks.OnCacheMiss(ctx, observability.KeyTypeArtifact)
			return nil, false
		}
		hooks.OnCacheHit(ctx, observability.KeyTypeArtifact)
		artifacts[name] = data
	}
	return artifacts, true
}

// store writes artifacts to the cache. Failures are logged and otherwise
// ignored.
func (r *Runner) store(ctx context.Context, logger *log.Logger, inputHash string, opts *Options, artifacts map[string][]byte) {
	hooks := observability.Cache()
	for name, data := range artifacts {
		key := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(name))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			logger.Debug("cache write failed", "artifact", name, "error", err)
			continue
		}
		hooks.OnCacheSet(ctx, observability.KeyTypeArtifact, len(data))
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
