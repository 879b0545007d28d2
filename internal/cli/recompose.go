package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stripweave/pkg/config"
	imageio "github.com/matzehuels/stripweave/pkg/io"
	"github.com/matzehuels/stripweave/pkg/observability"
	"github.com/matzehuels/stripweave/pkg/observability/prom"
	"github.com/matzehuels/stripweave/pkg/pipeline"
	"github.com/matzehuels/stripweave/pkg/recompose"
)

// recomposeFlags holds the command-line flags for the recompose command.
// Flags that the user set override the config file and environment.
type recomposeFlags struct {
	configPath   string  // explicit config file
	step         int     // strip size in pixels
	output       string  // composite output path
	format       string  // output format
	remainder    string  // "keep" or "crop"
	maxStepRatio float64 // step ceiling as a fraction of the longer side
	labels       bool    // caption each panel
	stages       bool    // also write the vertical and horizontal stages
	workers      int     // parallel row copies per stage
	noCache      bool    // bypass the artifact cache
	refresh      bool    // recompute and overwrite cached artifacts
	metricsFile  string  // Prometheus textfile to write after the run
}

// recomposeCommand creates the recompose command.
func (c *CLI) recomposeCommand() *cobra.Command {
	var f recomposeFlags

	cmd := &cobra.Command{
		Use:   "recompose [image]",
		Short: "Interleave image strips into a three-panel composite",
		Long: `Recompose slices the image into vertical strips of --step pixels and places
the 1st, 3rd, 5th, ... strips before the 2nd, 4th, 6th, ... strips. The result
is sliced again into horizontal strips and reordered the same way. The
original, vertical and horizontal results are written stacked top to bottom.

Settings are read from stripweave.yaml, stripweave.yml, stripweave.toml or
config.yaml in the working directory (or --config), then from STRIPWEAVE_*
environment variables, then from flags.`,
		Example: `  stripweave recompose photo.jpg --step 16
  stripweave recompose -c config.yaml --stages --labels`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd, args, f)
			if err != nil {
				return err
			}
			return c.runRecompose(cmd.Context(), cfg, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "config file (yaml or toml)")
	flags.IntVarP(&f.step, "step", "s", 0, "strip size in pixels")
	flags.StringVarP(&f.output, "output", "o", "", "output file (default <image>_recomposed.<format>)")
	flags.StringVarP(&f.format, "format", "f", "", "output format: png (default), jpeg, gif, tiff, bmp")
	flags.StringVar(&f.remainder, "remainder", "", "trailing partial strip: keep (default) or crop")
	flags.Float64Var(&f.maxStepRatio, "max-step-ratio", 0, "reject steps above this fraction of the longer side (0 disables)")
	flags.BoolVar(&f.labels, "labels", false, "caption each panel")
	flags.BoolVar(&f.stages, "stages", false, "also write the vertical and horizontal stages")
	flags.IntVar(&f.workers, "workers", 0, "parallel row copies per stage (0 or 1 runs serially)")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	flags.BoolVar(&f.refresh, "refresh", false, "recompute even if cached")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	_ = cmd.RegisterFlagCompletionFunc("remainder", cobra.FixedCompletions(
		[]string{recompose.RemainderKeep, recompose.RemainderCrop}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"png", "jpeg", "gif", "tiff", "bmp"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// resolveConfig layers the config file, environment and flags, and validates
// the result.
func (c *CLI) resolveConfig(cmd *cobra.Command, args []string, f recomposeFlags) (config.Config, error) {
	cfg, path, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}

	changed := cmd.Flags().Changed
	if len(args) == 1 {
		cfg.ImagePath = args[0]
	}
	if changed("step") {
		cfg.Step = config.Step(f.step)
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("format") {
		cfg.Format = f.format
	}
	if changed("remainder") {
		cfg.Remainder = f.remainder
	}
	if changed("max-step-ratio") {
		cfg.MaxStepRatio = f.maxStepRatio
	}
	if changed("labels") {
		cfg.Labels = f.labels
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if f.noCache {
		cfg.Cache.Disabled = true
	}

	return cfg, cfg.Validate()
}

// runRecompose executes the pipeline and writes its artifacts.
func (c *CLI) runRecompose(ctx context.Context, cfg config.Config, f recomposeFlags) (err error) {
	format, err := resolveFormat(cfg.Format, cfg.Output)
	if err != nil {
		return err
	}
	output := cfg.Output
	if output == "" {
		output = defaultOutput(cfg.ImagePath, format)
	}

	if f.metricsFile != "" {
		flush, merr := setupMetrics(f.metricsFile)
		if merr != nil {
			return merr
		}
		defer func() {
			if ferr := flush(); ferr != nil && err == nil {
				err = ferr
			}
		}()
	}

	runner := c.newRunner(ctx, cfg.Cache)
	defer runner.Close()

	params := cfg.Params()
	opts := pipeline.Options{
		Step:         params.Step,
		Remainder:    params.Remainder,
		MaxStepRatio: params.MaxStepRatio,
		Workers:      params.Workers,
		Format:       string(format),
		Labels:       cfg.Labels,
		Stages:       f.stages,
		Refresh:      f.refresh,
		Logger:       c.Logger,
	}

	var spinner *Spinner
	if !c.verbose() {
		spinner = newSpinnerWithContext(ctx, "Recomposing "+filepath.Base(cfg.ImagePath)+"...")
		spinner.Start()
	}
	result, err := runner.ExecuteFile(ctx, cfg.ImagePath, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	paths := outputPaths(output, opts.Artifacts())
	for _, name := range opts.Artifacts() {
		if err := imageio.WriteFile(paths[name], result.Artifacts[name]); err != nil {
			return err
		}
	}
	prog.done("wrote outputs", "files", len(paths), "run", result.RunID)

	printSuccess("Recomposed %s", cfg.ImagePath)
	printStats(result.Width, result.Height, opts.Step, result.Stats.Total, result.CacheInfo.Hit)
	for _, name := range opts.Artifacts() {
		printFile(paths[name])
	}
	return nil
}

// resolveFormat picks the output format from an explicit name, then the
// output extension, then the default.
func resolveFormat(name, output string) (imageio.Format, error) {
	if name != "" {
		return imageio.ParseFormat(name)
	}
	if output != "" && filepath.Ext(output) != "" {
		return imageio.FormatFromPath(output)
	}
	return imageio.DefaultFormat, nil
}

// defaultOutput derives "<dir>/<name>_recomposed.<ext>" from the input path.
func defaultOutput(input string, format imageio.Format) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "_recomposed" + format.Ext()
}

// outputPaths maps each artifact to its file. The composite goes to output;
// stages get the artifact name appended to output's base name.
func outputPaths(output string, artifacts []string) map[string]string {
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(output, ext)
	paths := make(map[string]string, len(artifacts))
	for _, name := range artifacts {
		if name == pipeline.ArtifactComposite {
			paths[name] = output
			continue
		}
		paths[name] = base + "_" + name + ext
	}
	return paths
}

// setupMetrics installs Prometheus hooks for the run and returns a function
// that writes the collected metrics to path and restores the default hooks.
func setupMetrics(path string) (func() error, error) {
	reg := prometheus.NewRegistry()
	hooks, err := prom.New(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)

	return func() error {
		defer observability.Reset()
		if err := prom.WriteTextfile(path, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		return nil
	}, nil
}
