package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgebuild/forged/internal/errwrap"
	"github.com/forgebuild/forged/internal/manifest"
	"github.com/forgebuild/forged/internal/paths"
	"github.com/forgebuild/forged/internal/runtime"
)

// Holds shared state while building all stages of a pipeline.
type runner struct {
	rt         *runtime.Runtime             // Container runtime for image and container operations.
	resource   string                       // Container ID prefix.
	output     string                       // Output directory for the exported image.
	context    string                       // Build context root for resolving copy sources.
	platforms  []string                     // Target platforms to build for.
	bindings   map[string]map[string]string // Resolved parameter values per stage name.
	containers []*runtime.Container         // All stage containers, destroyed when the run completes.
}

// Creates a runner from the given options and resolved bindings.
func newRunner(rt *runtime.Runtime, opts Options, bindings map[string]map[string]string) *runner {
	return &runner{
		rt:        rt,
		resource:  opts.Resource,
		output:    opts.Output,
		context:   opts.Root,
		platforms: opts.Platforms,
		bindings:  bindings,
	}
}

// Builds the pipeline end-to-end.
//
// Each target platform builds independently, stages in declaration
// order. All stage containers are destroyed when the run completes,
// whatever the outcome.
func (r *runner) run(ctx context.Context, stages []manifest.Stage) (*Result, error) {
	defer r.destroyContainers(ctx)

	for _, platform := range r.platforms {
		if err := r.buildPlatform(ctx, stages, platform); err != nil {
			return nil, err
		}
	}

	return &Result{Output: r.output}, nil
}

// Builds all stages of the pipeline for a single platform.
//
// Each platform keeps its own set of named stage containers for
// cross-stage copy lookups. With multiple platforms the output moves to
// a platform-specific subdirectory.
func (r *runner) buildPlatform(ctx context.Context, stages []manifest.Stage, platform string) error {
	slog.Info("building platform", "platform", platform)

	output := r.platformOutput(platform)
	if err := os.MkdirAll(output, paths.DefaultDirMode); err != nil {
		return errwrap.Wrap(ErrFileSystemOperation, err)
	}

	completed := make(map[string]*runtime.Container)

	for _, stage := range stages {
		if err := r.buildStage(ctx, stage, platform, output, completed); err != nil {
			return errwrap.Wrapf(ErrBuild, "platform %s, stage %q: %w", platform, stage.Name, err)
		}
	}

	return nil
}

// Builds a single stage for a specific platform.
//
// Starts a container from the stage's base environment, seeds the step
// state with the stage's parameter bindings, and executes the steps.
// The release stage is then stopped and exported with the manifest
// entrypoint and the bindings applied. The context is checked
// first so that cancellation, like any earlier stage failure, prevents
// this stage from ever starting.
func (r *runner) buildStage(ctx context.Context, stage manifest.Stage, platform, output string, completed map[string]*runtime.Container) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	slog.Info(fmt.Sprintf("building stage %q", stage.Name), "platform", platform)

	ctr, err := r.startStage(ctx, stage, platform)
	if err != nil {
		return err
	}

	r.containers = append(r.containers, ctr)
	completed[stage.Name] = ctr

	state := newStepState()
	maps.Copy(state.env, r.bindings[stage.Name])

	if err := executeSteps(ctx, ctr, stage.Steps, state, r.context, completed); err != nil {
		return err
	}

	if !stage.Transient {
		if err := ctr.Stop(ctx); err != nil {
			return errwrap.Wrap(runtime.ErrRuntime, err)
		}

		if err := ctr.Export(ctx, output, stage.Entrypoint, envList(r.bindings[stage.Name])); err != nil {
			return errwrap.Wrap(runtime.ErrRuntime, err)
		}
	}

	return nil
}

// Starts the stage's container from its parsed base environment.
func (r *runner) startStage(ctx context.Context, stage manifest.Stage, platform string) (*runtime.Container, error) {
	src, err := stage.ParseFrom()
	if err != nil {
		return nil, err
	}

	id := r.containerID(stage.Name, platform)

	var ctr *runtime.Container
	switch src.Kind {
	case manifest.SourceImage:
		ctr, err = r.rt.StartFromImage(ctx, src.Value, id, platform)
	default:
		ctr, err = r.rt.StartFromArchive(ctx, src.Value, id, platform)
	}
	if err != nil {
		return nil, errwrap.Wrap(runtime.ErrRuntime, err)
	}

	return ctr, nil
}

// Destroys all stage containers.
func (r *runner) destroyContainers(ctx context.Context) {
	for _, ctr := range r.containers {
		ctr.Destroy(ctx)
	}
}

// Returns a container ID for a stage, scoped to this resource and
// platform.
func (r *runner) containerID(name, platform string) string {
	return fmt.Sprintf("%s-%s-stage-%s", r.resource, platformSlug(platform), name)
}

// Returns the output directory for a specific platform.
//
// A single-platform build writes straight to the output directory,
// preserving the {output}/image.tar convention. Multi-platform builds
// get a subdirectory per platform (e.g., {output}/linux-amd64).
func (r *runner) platformOutput(platform string) string {
	if len(r.platforms) == 1 {
		return r.output
	}
	return filepath.Join(r.output, platformSlug(platform))
}

// Converts a platform string to a filesystem-safe slug
// ("linux/amd64" becomes "linux-amd64").
func platformSlug(platform string) string {
	return strings.ReplaceAll(platform, "/", "-")
}
