package manifest

import (
	"strings"

	"github.com/forgebuild/forged/internal/errwrap"
)

// A declarative build pipeline.
//
// Stages run in declaration order. Every stage except the last is a
// transient build environment; the last stage is the release environment
// and is exported as the final image.
type Pipeline struct {
	Name   string   `yaml:"name,omitempty"`   // Pipeline name, used for container ID prefixes when set.
	Params []string `yaml:"params,omitempty"` // Parameters the pipeline accepts. Empty means stages declare freely.
	Stages []Stage  `yaml:"stages"`           // Ordered stages.
}

// A single stage of a pipeline.
type Stage struct {
	Name       string   `yaml:"name"`                 // Stage name, referenced by cross-stage copies.
	From       string   `yaml:"from"`                 // Base environment source (see [Stage.ParseFrom]).
	Transient  bool     `yaml:"transient,omitempty"`  // Whether the stage is discarded instead of exported.
	Params     []string `yaml:"params,omitempty"`     // Parameters this stage requires as environment bindings.
	Entrypoint []string `yaml:"entrypoint,omitempty"` // OCI entrypoint, release stage only.
	Steps      []Step   `yaml:"steps,omitempty"`      // Instructions executed in order.
}

// A single instruction within a stage.
//
// A step is either an operation (run or copy), a group of nested steps
// with group-level modifiers, or a standalone modifier that persists for
// the rest of the stage.
type Step struct {
	Run     string            `yaml:"run,omitempty"`     // Shell command to execute.
	Copy    string            `yaml:"copy,omitempty"`    // "src dest" host copy or "stage:src dest" cross-stage copy.
	Shell   string            `yaml:"shell,omitempty"`   // Shell override.
	Workdir string            `yaml:"workdir,omitempty"` // Working directory override.
	Env     map[string]string `yaml:"env,omitempty"`     // Environment variable overrides.
	Steps   []Step            `yaml:"steps,omitempty"`   // Nested steps (group).
}

// Kind of base environment a stage starts from.
type SourceKind string

const (
	// An OCI archive on the daemon host.
	SourceArchive SourceKind = "archive"

	// An image tag already present in the containerd image store.
	SourceImage SourceKind = "image"
)

// A parsed stage source.
type Source struct {
	Kind  SourceKind // How to obtain the base environment.
	Value string     // Archive path or image tag.
}

// Parses the stage's from field.
//
// Sources take one of three forms:
//
//	oci:path/to/image.tar    an OCI archive (explicit)
//	image:registry/name:tag  a tag in the containerd image store
//	path/to/image.tar        an OCI archive (default)
func (s Stage) ParseFrom() (Source, error) {
	from := strings.TrimSpace(s.From)

	switch {
	case from == "":
		return Source{}, errwrap.Wrapf(ErrInvalid, "stage %q has no from", s.Name)
	case strings.HasPrefix(from, "oci:"):
		return Source{Kind: SourceArchive, Value: from[len("oci:"):]}, nil
	case strings.HasPrefix(from, "image:"):
		return Source{Kind: SourceImage, Value: from[len("image:"):]}, nil
	default:
		return Source{Kind: SourceArchive, Value: from}, nil
	}
}

// Returns the release stage: the final, non-transient stage.
//
// Only meaningful on a validated pipeline.
func (p *Pipeline) Release() Stage {
	return p.Stages[len(p.Stages)-1]
}
