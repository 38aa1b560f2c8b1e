package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleManifest = `
name: rust-api
params: [DATABASE_URL]
stages:
  - name: build
    from: images/rust.tar
    transient: true
    params: [DATABASE_URL]
    steps:
      - copy: ". /app"
      - workdir: /app
      - run: cargo build --release
  - name: release
    from: images/debian-slim.tar
    params: [DATABASE_URL]
    entrypoint: ["/usr/local/bin/rust_api"]
    steps:
      - copy: "build:/app/target/release/rust_api /usr/local/bin/rust_api"
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Name != "rust-api" {
		t.Errorf("name = %q, want %q", p.Name, "rust-api")
	}
	if len(p.Stages) != 2 {
		t.Fatalf("len(stages) = %d, want 2", len(p.Stages))
	}
	if !p.Stages[0].Transient {
		t.Error("build stage not transient")
	}
	if got := p.Stages[1].Entrypoint; len(got) != 1 || got[0] != "/usr/local/bin/rust_api" {
		t.Errorf("entrypoint = %v", got)
	}
	if got := p.Stages[0].Steps[1].Workdir; got != "/app" {
		t.Errorf("workdir step = %q, want /app", got)
	}

	if err := p.Validate(); err != nil {
		t.Fatalf("sample manifest invalid: %v", err)
	}
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse([]byte("stages:\n  - name: build\n    fron: images/rust.tar\n"))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(nil)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("stages: [unclosed"))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Stages) != 2 {
		t.Fatalf("len(stages) = %d, want 2", len(p.Stages))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}
}
