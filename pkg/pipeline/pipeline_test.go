package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/stripweave/pkg/cache"
	"github.com/matzehuels/stripweave/pkg/errors"
	"github.com/matzehuels/stripweave/pkg/observability"
)

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

// pngBytes encodes a w×h image whose pixel (x, y) has R=x and G=y.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return img
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Step: 4}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Format != "png" {
		t.Errorf("Format = %q, want png", opts.Format)
	}
	if opts.Remainder != "keep" {
		t.Errorf("Remainder = %q, want keep", opts.Remainder)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call error = %v", err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"zero step", Options{}, errors.ErrCodeInvalidConfiguration},
		{"negative step", Options{Step: -2}, errors.ErrCodeInvalidConfiguration},
		{"bad remainder", Options{Step: 1, Remainder: "wrap"}, errors.ErrCodeInvalidConfiguration},
		{"bad format", Options{Step: 1, Format: "svg"}, errors.ErrCodeInvalidFormat},
		{"negative workers", Options{Step: 1, Workers: -1}, errors.ErrCodeInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFormatAliasNormalized(t *testing.T) {
	opts := Options{Step: 1, Format: "JPG"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Format != "jpeg" {
		t.Errorf("Format = %q, want jpeg", opts.Format)
	}
}

func TestArtifacts(t *testing.T) {
	if got := (&Options{}).Artifacts(); len(got) != 1 || got[0] != ArtifactComposite {
		t.Errorf("Artifacts() = %v, want [composite]", got)
	}
	got := (&Options{Stages: true}).Artifacts()
	want := []string{ArtifactComposite, ArtifactVertical, ArtifactHorizontal}
	if len(got) != len(want) {
		t.Fatalf("Artifacts() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Artifacts()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	k := cache.NewDefaultKeyer()
	base := Options{Step: 4, Format: "png", Remainder: "keep"}

	serial, parallel := base, base
	serial.Workers, parallel.Workers = 1, 8
	if k.ArtifactKey("h", serial.ArtifactKeyOpts(ArtifactComposite)) !=
		k.ArtifactKey("h", parallel.ArtifactKeyOpts(ArtifactComposite)) {
		t.Error("worker count should not change the cache key")
	}

	other := base
	other.Step = 5
	if k.ArtifactKey("h", base.ArtifactKeyOpts(ArtifactComposite)) ==
		k.ArtifactKey("h", other.ArtifactKeyOpts(ArtifactComposite)) {
		t.Error("step should change the cache key")
	}
	if k.ArtifactKey("h", base.ArtifactKeyOpts(ArtifactComposite)) ==
		k.ArtifactKey("h", base.ArtifactKeyOpts(ArtifactVertical)) {
		t.Error("artifact name should change the cache key")
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	input := pngBytes(t, 6, 4)

	result, err := r.Execute(context.Background(), input, Options{Step: 2})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if result.Width != 6 || result.Height != 12 {
		t.Errorf("size = %dx%d, want 6x12", result.Width, result.Height)
	}
	if len(result.Artifacts) != 1 {
		t.Errorf("artifacts = %d, want 1", len(result.Artifacts))
	}

	composite := decodePNG(t, result.Artifacts[ArtifactComposite])
	if b := composite.Bounds(); b.Dx() != 6 || b.Dy() != 12 {
		t.Fatalf("composite bounds = %v", b)
	}
	// Top panel is the original.
	r0, g0, _, _ := composite.At(5, 3).RGBA()
	if r0>>8 != 5 || g0>>8 != 3 {
		t.Errorf("composite(5,3) = (%d,%d), want (5,3)", r0>>8, g0>>8)
	}
	// Vertical panel starts with odd strip 0 then odd strip 2: column 2 holds x=4.
	r1, _, _, _ := composite.At(2, 4).RGBA()
	if r1>>8 != 4 {
		t.Errorf("vertical panel column 2 R = %d, want 4", r1>>8)
	}
}

func TestExecuteStages(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	result, err := r.Execute(context.Background(), pngBytes(t, 5, 3), Options{Step: 2, Stages: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, name := range []string{ArtifactVertical, ArtifactHorizontal} {
		img := decodePNG(t, result.Artifacts[name])
		if b := img.Bounds(); b.Dx() != 5 || b.Dy() != 3 {
			t.Errorf("%s bounds = %v, want 5x3", name, b)
		}
	}
}

func TestExecuteLabels(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	input := pngBytes(t, 64, 48)

	plain, err := r.Execute(context.Background(), input, Options{Step: 4})
	if err != nil {
		t.Fatal(err)
	}
	labeled, err := r.Execute(context.Background(), input, Options{Step: 4, Labels: true})
	if err != nil {
		t.Fatal(err)
	}
	if labeled.Width != plain.Width || labeled.Height != plain.Height {
		t.Errorf("labels changed size: %dx%d vs %dx%d", labeled.Width, labeled.Height, plain.Width, plain.Height)
	}
	if bytes.Equal(plain.Artifacts[ArtifactComposite], labeled.Artifacts[ArtifactComposite]) {
		t.Error("labeled composite should differ from plain composite")
	}
}

func TestExecuteDeterministic(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	input := pngBytes(t, 9, 7)

	a, err := r.Execute(context.Background(), input, Options{Step: 3})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(context.Background(), input, Options{Step: 3, Workers: 4})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Artifacts[ArtifactComposite], b.Artifacts[ArtifactComposite]) {
		t.Error("runs with the same input and step should produce identical bytes")
	}
}

func TestExecuteCache(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	input := pngBytes(t, 8, 8)
	ctx := context.Background()

	first, err := r.Execute(ctx, input, Options{Step: 2})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.Hit {
		t.Error("first run should miss")
	}
	if c.sets != 1 {
		t.Errorf("cache sets = %d, want 1", c.sets)
	}

	second, err := r.Execute(ctx, input, Options{Step: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.Hit {
		t.Error("second run should hit")
	}
	if second.Width != 8 || second.Height != 24 {
		t.Errorf("cached size = %dx%d, want 8x24", second.Width, second.Height)
	}
	if !bytes.Equal(first.Artifacts[ArtifactComposite], second.Artifacts[ArtifactComposite]) {
		t.Error("cached composite should equal the fresh one")
	}

	refreshed, err := r.Execute(ctx, input, Options{Step: 2, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.Hit {
		t.Error("refresh should bypass the cache")
	}

	// Stages need artifacts that are not cached yet.
	staged, err := r.Execute(ctx, input, Options{Step: 2, Stages: true})
	if err != nil {
		t.Fatal(err)
	}
	if staged.CacheInfo.Hit {
		t.Error("stage artifacts were never cached; run should miss")
	}
}

func TestExecuteCorruptCacheEntry(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	input := pngBytes(t, 4, 4)

	opts := Options{Step: 1}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	key := r.Keyer.ArtifactKey(cache.Hash(input), opts.ArtifactKeyOpts(ArtifactComposite))
	_ = c.Set(context.Background(), key, []byte("not an image"), 0)

	result, err := r.Execute(context.Background(), input, Options{Step: 1})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.CacheInfo.Hit {
		t.Error("unreadable cache entry should be recomputed")
	}
	decodePNG(t, result.Artifacts[ArtifactComposite])
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, []byte("garbage"), Options{Step: 1}); !errors.IsInvalidImage(err) {
		t.Errorf("garbage input error = %v, want INVALID_IMAGE", err)
	}
	if _, err := r.Execute(ctx, pngBytes(t, 4, 4), Options{Step: 0}); !errors.IsInvalidConfiguration(err) {
		t.Errorf("step 0 error = %v, want INVALID_CONFIGURATION", err)
	}
	if _, err := r.Execute(ctx, pngBytes(t, 100, 50), Options{Step: 3, MaxStepRatio: 0.02}); !errors.IsInvalidConfiguration(err) {
		t.Errorf("step above ceiling error = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestExecuteFileMissing(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.ExecuteFile(context.Background(), filepath.Join(t.TempDir(), "nope.png"), Options{Step: 1})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecuteCanceled(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Execute(ctx, pngBytes(t, 4, 4), Options{Step: 1})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

type stageRecorder struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	stages []string
	runErr error
	runs   int
}

func (h *stageRecorder) OnStageStart(_ context.Context, stage string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages = append(h.stages, stage)
}

func (h *stageRecorder) OnRunComplete(_ context.Context, _ string, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs++
	h.runErr = err
}

func TestExecuteHooks(t *testing.T) {
	defer observability.Reset()
	h := &stageRecorder{}
	observability.SetPipelineHooks(h)

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), pngBytes(t, 4, 4), Options{Step: 2}); err != nil {
		t.Fatal(err)
	}

	want := []string{observability.StageDecode, observability.StageRecompose, observability.StageRender}
	if len(h.stages) != len(want) {
		t.Fatalf("stages = %v, want %v", h.stages, want)
	}
	for i := range want {
		if h.stages[i] != want[i] {
			t.Errorf("stage %d = %q, want %q", i, h.stages[i], want[i])
		}
	}
	if h.runs != 1 || h.runErr != nil {
		t.Errorf("runs = %d err = %v, want 1 run without error", h.runs, h.runErr)
	}

	_, _ = r.Execute(context.Background(), []byte("garbage"), Options{Step: 2})
	if h.runErr == nil {
		t.Error("failed run should report its error to hooks")
	}
}
