package pipeline

import (
	"sort"

	"github.com/forgebuild/forged/internal/errwrap"
	"github.com/forgebuild/forged/internal/manifest"
)

// Resolves supplied parameter values against every stage's declarations.
//
// Each stage that needs a value must declare it; a value flows to a
// stage only through that declaration, never by inheritance from an
// earlier stage. Resolution happens up front so a missing or empty value
// aborts the run before any container is started. Values the pipeline
// never declared are ignored.
func resolveParams(p *manifest.Pipeline, supplied map[string]string) (map[string]map[string]string, error) {
	bindings := make(map[string]map[string]string, len(p.Stages))

	for _, stage := range p.Stages {
		if len(stage.Params) == 0 {
			continue
		}

		values := make(map[string]string, len(stage.Params))
		for _, name := range stage.Params {
			value, ok := supplied[name]
			if !ok {
				return nil, errwrap.Wrapf(ErrParameter, "stage %q requires %q", stage.Name, name)
			}
			if value == "" {
				return nil, errwrap.Wrapf(ErrParameter, "stage %q requires %q, got an empty value", stage.Name, name)
			}
			values[name] = value
		}
		bindings[stage.Name] = values
	}

	return bindings, nil
}

// Formats a parameter binding as a sorted "key=value" list.
//
// Sorted so repeated runs with identical inputs produce identical
// environment ordering in the exported image config.
func envList(values map[string]string) []string {
	env := make([]string, 0, len(values))
	for k, v := range values {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}
