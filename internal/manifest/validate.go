package manifest

import (
	"slices"

	"github.com/forgebuild/forged/internal/errwrap"
)

// Checks the pipeline's structural rules.
//
// A valid pipeline has at least one stage, every stage before the last
// is transient, and only the last stage is exported. The release stage
// must declare an entrypoint; build stages must not. Stage names are
// required and unique. When the pipeline declares a parameter list,
// stages may only request parameters from that list.
func (p *Pipeline) Validate() error {
	if len(p.Stages) == 0 {
		return errwrap.Wrapf(ErrInvalid, "pipeline has no stages")
	}

	if err := uniqueNonEmpty(p.Params, "pipeline parameter"); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(p.Stages))
	last := len(p.Stages) - 1

	for i, stage := range p.Stages {
		if stage.Name == "" {
			return errwrap.Wrapf(ErrInvalid, "stage %d has no name", i+1)
		}
		if _, dup := seen[stage.Name]; dup {
			return errwrap.Wrapf(ErrInvalid, "duplicate stage name %q", stage.Name)
		}
		seen[stage.Name] = struct{}{}

		if _, err := stage.ParseFrom(); err != nil {
			return err
		}

		if err := p.validateStageRole(stage, i == last); err != nil {
			return err
		}

		if err := p.validateStageParams(stage); err != nil {
			return err
		}

		if err := validateSteps(stage.Name, stage.Steps); err != nil {
			return err
		}
	}

	return nil
}

// Checks transience and entrypoint rules for a stage's position.
//
// The final stage is the release environment: it is exported, so it must
// not be transient and must declare the entrypoint. Earlier stages exist
// only to produce artifacts and must be transient with no entrypoint.
func (p *Pipeline) validateStageRole(stage Stage, isRelease bool) error {
	if isRelease {
		if stage.Transient {
			return errwrap.Wrapf(ErrInvalid, "release stage %q must not be transient", stage.Name)
		}
		if len(stage.Entrypoint) == 0 {
			return errwrap.Wrapf(ErrInvalid, "release stage %q declares no entrypoint", stage.Name)
		}
		return nil
	}

	if !stage.Transient {
		return errwrap.Wrapf(ErrInvalid, "build stage %q must be transient", stage.Name)
	}
	if len(stage.Entrypoint) > 0 {
		return errwrap.Wrapf(ErrInvalid, "build stage %q must not declare an entrypoint", stage.Name)
	}
	return nil
}

// Checks a stage's parameter declarations.
func (p *Pipeline) validateStageParams(stage Stage) error {
	if err := uniqueNonEmpty(stage.Params, "stage "+stage.Name+" parameter"); err != nil {
		return err
	}

	if len(p.Params) == 0 {
		return nil
	}
	for _, name := range stage.Params {
		if !slices.Contains(p.Params, name) {
			return errwrap.Wrapf(ErrInvalid, "stage %q requests undeclared parameter %q", stage.Name, name)
		}
	}
	return nil
}

// Checks step rules recursively.
//
// A step is exactly one of: an operation (run or copy, not both), a
// group (nested steps without an operation), or a standalone modifier.
func validateSteps(stageName string, steps []Step) error {
	for i, step := range steps {
		if step.Run != "" && step.Copy != "" {
			return errwrap.Wrapf(ErrInvalid, "stage %q step %d sets both run and copy", stageName, i+1)
		}
		if len(step.Steps) > 0 {
			if step.Run != "" || step.Copy != "" {
				return errwrap.Wrapf(ErrInvalid, "stage %q step %d mixes an operation with nested steps", stageName, i+1)
			}
			if err := validateSteps(stageName, step.Steps); err != nil {
				return err
			}
		}
	}
	return nil
}

// Checks that all names in the list are non-empty and unique.
func uniqueNonEmpty(names []string, what string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return errwrap.Wrapf(ErrInvalid, "empty %s name", what)
		}
		if _, dup := seen[name]; dup {
			return errwrap.Wrapf(ErrInvalid, "duplicate %s %q", what, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
