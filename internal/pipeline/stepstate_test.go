package pipeline

import (
	"slices"
	"testing"

	"github.com/forgebuild/forged/internal/manifest"
)

func TestNewStepState(t *testing.T) {
	s := newStepState()
	if s.shell != defaultShell {
		t.Fatalf("shell = %q, want %q", s.shell, defaultShell)
	}
	if s.workdir != "" {
		t.Fatalf("workdir = %q, want empty", s.workdir)
	}
	if len(s.env) != 0 {
		t.Fatalf("env = %v, want empty", s.env)
	}
}

func TestApply(t *testing.T) {
	s := newStepState()

	s.apply(manifest.Step{Shell: "/bin/bash"})
	if s.shell != "/bin/bash" {
		t.Fatalf("shell = %q, want /bin/bash", s.shell)
	}

	s.apply(manifest.Step{Workdir: "/app"})
	if s.workdir != "/app" {
		t.Fatalf("workdir = %q, want /app", s.workdir)
	}
	if s.shell != "/bin/bash" {
		t.Fatalf("shell changed to %q after workdir apply", s.shell)
	}

	s.apply(manifest.Step{Env: map[string]string{"A": "1", "B": "2"}})
	if s.env["A"] != "1" || s.env["B"] != "2" {
		t.Fatalf("env = %v, want A=1 B=2", s.env)
	}

	s.apply(manifest.Step{Env: map[string]string{"A": "override"}})
	if s.env["A"] != "override" {
		t.Fatalf("env[A] = %q, want override", s.env["A"])
	}
	if s.env["B"] != "2" {
		t.Fatalf("env[B] = %q, want 2 (preserved)", s.env["B"])
	}
}

func TestApplyEmptyFieldsNoOp(t *testing.T) {
	s := newStepState()
	s.apply(manifest.Step{Shell: "/bin/zsh", Workdir: "/opt"})
	s.apply(manifest.Step{})
	if s.shell != "/bin/zsh" {
		t.Fatalf("shell = %q, want /bin/zsh", s.shell)
	}
	if s.workdir != "/opt" {
		t.Fatalf("workdir = %q, want /opt", s.workdir)
	}
}

func TestResolve(t *testing.T) {
	s := newStepState()
	s.apply(manifest.Step{
		Shell:   "/bin/bash",
		Workdir: "/app",
		Env:     map[string]string{"A": "1"},
	})

	resolved := s.resolve(manifest.Step{
		Workdir: "/tmp",
		Env:     map[string]string{"B": "2"},
	})

	if resolved.shell != "/bin/bash" {
		t.Fatalf("resolved shell = %q, want /bin/bash", resolved.shell)
	}
	if resolved.workdir != "/tmp" {
		t.Fatalf("resolved workdir = %q, want /tmp", resolved.workdir)
	}
	if resolved.env["A"] != "1" || resolved.env["B"] != "2" {
		t.Fatalf("resolved env = %v, want A=1 B=2", resolved.env)
	}

	// The persistent state must be unchanged.
	if s.workdir != "/app" {
		t.Fatalf("persistent workdir = %q, want /app", s.workdir)
	}
	if _, ok := s.env["B"]; ok {
		t.Fatal("scoped env leaked into persistent state")
	}
}

func TestEnviron(t *testing.T) {
	s := newStepState()
	s.apply(manifest.Step{Env: map[string]string{
		"DATABASE_URL": "postgres://host/db",
		"RUST_LOG":     "info",
	}})

	env := s.environ()
	slices.Sort(env)

	want := []string{"DATABASE_URL=postgres://host/db", "RUST_LOG=info"}
	if !slices.Equal(env, want) {
		t.Fatalf("environ = %v, want %v", env, want)
	}
}
