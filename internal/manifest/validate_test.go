package manifest

import (
	"errors"
	"testing"
)

// Returns a minimal valid two-stage pipeline for tests to mutate.
func validPipeline() *Pipeline {
	return &Pipeline{
		Name:   "rust-api",
		Params: []string{"DATABASE_URL"},
		Stages: []Stage{
			{
				Name:      "build",
				From:      "images/rust.tar",
				Transient: true,
				Params:    []string{"DATABASE_URL"},
				Steps: []Step{
					{Copy: ". /app"},
					{Workdir: "/app"},
					{Run: "cargo build --release"},
				},
			},
			{
				Name:       "release",
				From:       "images/debian-slim.tar",
				Params:     []string{"DATABASE_URL"},
				Entrypoint: []string{"/usr/local/bin/rust_api"},
				Steps: []Step{
					{Copy: "build:/app/target/release/rust_api /usr/local/bin/rust_api"},
				},
			},
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := validPipeline().Validate(); err != nil {
		t.Fatalf("valid pipeline rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Pipeline)
	}{
		{
			name:   "no stages",
			mutate: func(p *Pipeline) { p.Stages = nil },
		},
		{
			name:   "unnamed stage",
			mutate: func(p *Pipeline) { p.Stages[0].Name = "" },
		},
		{
			name:   "duplicate stage name",
			mutate: func(p *Pipeline) { p.Stages[1].Name = "build" },
		},
		{
			name:   "stage without from",
			mutate: func(p *Pipeline) { p.Stages[0].From = "" },
		},
		{
			name:   "transient release stage",
			mutate: func(p *Pipeline) { p.Stages[1].Transient = true },
		},
		{
			name:   "non-transient build stage",
			mutate: func(p *Pipeline) { p.Stages[0].Transient = false },
		},
		{
			name:   "release without entrypoint",
			mutate: func(p *Pipeline) { p.Stages[1].Entrypoint = nil },
		},
		{
			name:   "entrypoint on build stage",
			mutate: func(p *Pipeline) { p.Stages[0].Entrypoint = []string{"/bin/sh"} },
		},
		{
			name:   "undeclared stage parameter",
			mutate: func(p *Pipeline) { p.Stages[0].Params = []string{"API_KEY"} },
		},
		{
			name:   "duplicate stage parameter",
			mutate: func(p *Pipeline) { p.Stages[0].Params = []string{"DATABASE_URL", "DATABASE_URL"} },
		},
		{
			name:   "duplicate pipeline parameter",
			mutate: func(p *Pipeline) { p.Params = []string{"DATABASE_URL", "DATABASE_URL"} },
		},
		{
			name:   "empty pipeline parameter",
			mutate: func(p *Pipeline) { p.Params = []string{""} },
		},
		{
			name: "step with run and copy",
			mutate: func(p *Pipeline) {
				p.Stages[0].Steps = []Step{{Run: "ls", Copy: "a b"}}
			},
		},
		{
			name: "group step with operation",
			mutate: func(p *Pipeline) {
				p.Stages[0].Steps = []Step{{Run: "ls", Steps: []Step{{Run: "pwd"}}}}
			},
		},
		{
			name: "invalid nested step",
			mutate: func(p *Pipeline) {
				p.Stages[0].Steps = []Step{{
					Env:   map[string]string{"A": "1"},
					Steps: []Step{{Run: "ls", Copy: "a b"}},
				}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPipeline()
			tt.mutate(p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidateNoPipelineParams(t *testing.T) {
	p := validPipeline()
	p.Params = nil // stages may declare freely

	if err := p.Validate(); err != nil {
		t.Fatalf("pipeline without declared params rejected: %v", err)
	}
}
