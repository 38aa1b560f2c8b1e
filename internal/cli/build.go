package cli

import (
	"context"
	"log/slog"

	"github.com/forgebuild/forged/internal/manifest"
	"github.com/forgebuild/forged/internal/pipeline"
	"github.com/forgebuild/forged/internal/runtime"
)

// Represents the 'forged build' command.
//
// Executes a pipeline manifest directly against containerd, without going
// through a running daemon.
type BuildCmd struct {
	Manifest string `arg:"" help:"Path to the pipeline manifest." type:"existingfile"`

	Output              string            `short:"o" default:"." help:"Directory for the exported image." placeholder:"DIR"`
	Root                string            `short:"r" default:"." help:"Build context root for resolving copy sources." placeholder:"DIR"`
	Param               map[string]string `short:"p" help:"Build parameter value (NAME=VALUE). Repeatable." placeholder:"NAME=VALUE"`
	Platform            []string          `help:"Target platform (e.g. linux/amd64). Repeatable." placeholder:"PLATFORM"`
	ContainerdAddress   string            `default:"${containerd_address}" help:"Containerd socket address." placeholder:"PATH"`
	ContainerdNamespace string            `default:"${containerd_namespace}" help:"Containerd namespace for images and containers." placeholder:"NAME"`
}

// Executes the build command.
func (c *BuildCmd) Run(ctx context.Context) error {
	p, err := manifest.Load(c.Manifest)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	rt, err := runtime.New(c.ContainerdAddress, c.ContainerdNamespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := pipeline.Run(ctx, rt, pipeline.Options{
		Pipeline:  p,
		Output:    c.Output,
		Root:      c.Root,
		Params:    c.Param,
		Platforms: c.Platform,
	})
	if err != nil {
		return err
	}

	slog.Info("build complete", "pipeline", p.Name, "output", result.Output)
	return nil
}
