package pipeline

import (
	"context"
	"log/slog"
	"os"
	goruntime "runtime"

	"github.com/forgebuild/forged/internal/errwrap"
	"github.com/forgebuild/forged/internal/manifest"
	"github.com/forgebuild/forged/internal/paths"
	"github.com/forgebuild/forged/internal/runtime"
)

// Controls pipeline execution.
type Options struct {
	Pipeline  *manifest.Pipeline // Validated pipeline to execute.
	Resource  string             // Name used as a prefix for container IDs. Defaults to the pipeline name.
	Output    string             // Directory for the exported image.
	Root      string             // Build context root, for resolving copy sources.
	Params    map[string]string  // Build parameter values, keyed by declared name.
	Platforms []string           // Target platforms (e.g., ["linux/amd64"]). Defaults to host.
}

// Returned after successful pipeline execution.
type Result struct {
	Output string // Directory containing the exported image.
}

// Executes a pipeline against the container runtime.
//
// Parameter values are resolved against every stage's declarations
// before any container starts: a stage requesting a value that was not
// supplied aborts the run with [ErrParameter] and no stage is ever
// started. Stages then build in declaration order; the release stage is
// exported to the output directory with its entrypoint and its declared
// parameter values applied. Any stage failure aborts the run before
// later stages begin.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Result, error) {
	if opts.Resource == "" {
		opts.Resource = opts.Pipeline.Name
	}
	if len(opts.Platforms) == 0 {
		opts.Platforms = []string{"linux/" + goruntime.GOARCH}
	}

	bindings, err := resolveParams(opts.Pipeline, opts.Params)
	if err != nil {
		return nil, err
	}

	slog.Info("executing pipeline",
		"resource", opts.Resource,
		"output", opts.Output,
		"stages", len(opts.Pipeline.Stages),
		"platforms", opts.Platforms,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, errwrap.Wrap(ErrFileSystemOperation, err)
	}

	return newRunner(rt, opts, bindings).run(ctx, opts.Pipeline.Stages)
}
