package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestParseCopy(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		workdir string
		src     string
		dest    string
		wantErr bool
	}{
		{
			name:  "absolute dest",
			input: "file.txt /opt/file.txt",
			src:   "file.txt",
			dest:  "/opt/file.txt",
		},
		{
			name:    "relative dest with workdir",
			input:   "file.txt out/",
			workdir: "/app",
			src:     "file.txt",
			dest:    "/app/out",
		},
		{
			name:    "relative dest without workdir",
			input:   "file.txt out/",
			wantErr: true,
		},
		{
			name:    "missing destination",
			input:   "file.txt",
			wantErr: true,
		},
		{
			name:    "too many tokens",
			input:   "a b c",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dest, err := parseCopy(tt.input, tt.workdir)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src != tt.src {
				t.Errorf("src = %q, want %q", src, tt.src)
			}
			if dest != tt.dest {
				t.Errorf("dest = %q, want %q", dest, tt.dest)
			}
		})
	}
}

// Scripted artifact source for handoff tests. done is closed when
// CopyFrom returns.
type fakeSource struct {
	exists  bool
	statErr error
	data    []byte
	done    chan struct{}
}

func (f *fakeSource) StatPath(ctx context.Context, path string) (bool, error) {
	return f.exists, f.statErr
}

func (f *fakeSource) CopyFrom(ctx context.Context, w io.Writer, path string) error {
	defer close(f.done)
	_, err := w.Write(f.data)
	return err
}

// Artifact destination that collects the stream, or fails mid-stream
// when err is set.
type fakeDest struct {
	buf bytes.Buffer
	err error
}

func (f *fakeDest) CopyTo(ctx context.Context, r io.Reader, destDir string) error {
	if f.err != nil {
		io.CopyN(io.Discard, r, 1)
		return f.err
	}
	_, err := io.Copy(&f.buf, r)
	return err
}

func TestStageCopyMissingArtifact(t *testing.T) {
	src := &fakeSource{done: make(chan struct{})}

	err := executeStageCopy(context.Background(), &fakeDest{}, src, "build", "/app/target/release/rust_api", "/usr/local/bin/rust_api")
	if !errors.Is(err, ErrArtifact) {
		t.Fatalf("error = %v, want ErrArtifact", err)
	}
}

func TestStageCopyStatError(t *testing.T) {
	src := &fakeSource{statErr: errors.New("exec failed"), done: make(chan struct{})}

	err := executeStageCopy(context.Background(), &fakeDest{}, src, "build", "/app/bin", "/usr/local/bin")
	if !errors.Is(err, ErrCopy) {
		t.Fatalf("error = %v, want ErrCopy", err)
	}
	if errors.Is(err, ErrArtifact) {
		t.Fatal("probe failure misreported as a missing artifact")
	}
}

func TestStageCopyStreams(t *testing.T) {
	payload := []byte("compiled binary")
	src := &fakeSource{exists: true, data: payload, done: make(chan struct{})}
	dst := &fakeDest{}

	err := executeStageCopy(context.Background(), dst, src, "build", "/app/bin", "/usr/local/bin/app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(dst.buf.Bytes(), payload) {
		t.Errorf("destination received %q, want %q", dst.buf.Bytes(), payload)
	}
}

func TestStageCopyDestFailureUnblocksSource(t *testing.T) {
	src := &fakeSource{
		exists: true,
		data:   bytes.Repeat([]byte("x"), 1<<20),
		done:   make(chan struct{}),
	}
	dst := &fakeDest{err: errors.New("no space left on device")}

	err := executeStageCopy(context.Background(), dst, src, "build", "/app/bin", "/usr/local/bin")
	if !errors.Is(err, ErrCopy) {
		t.Fatalf("error = %v, want ErrCopy", err)
	}

	select {
	case <-src.done:
	case <-time.After(time.Second):
		t.Fatal("source copy still blocked after destination failure")
	}
}

func TestParseStageCopy(t *testing.T) {
	tests := []struct {
		name  string
		input string
		stage string
		path  string
		ok    bool
	}{
		{
			name:  "valid stage copy",
			input: "build:/app/target/release/rust_api",
			stage: "build",
			path:  "/app/target/release/rust_api",
			ok:    true,
		},
		{
			name:  "no colon",
			input: "/usr/local/bin",
		},
		{
			name:  "colon at start",
			input: ":/some/path",
		},
		{
			name:  "colon after slash",
			input: "/foo:bar",
		},
		{
			name:  "slash in prefix",
			input: "some/stage:path",
		},
		{
			name:  "simple host path",
			input: "file.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, path, ok := parseStageCopy(tt.input)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			if stage != tt.stage {
				t.Errorf("stage = %q, want %q", stage, tt.stage)
			}
			if path != tt.path {
				t.Errorf("path = %q, want %q", path, tt.path)
			}
		})
	}
}
