package manifest

import (
	"errors"
	"testing"
)

func TestParseFrom(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		kind    SourceKind
		value   string
		wantErr bool
	}{
		{
			name:  "bare path defaults to archive",
			from:  "images/rust.tar",
			kind:  SourceArchive,
			value: "images/rust.tar",
		},
		{
			name:  "explicit oci prefix",
			from:  "oci:/var/lib/forged/debian.tar",
			kind:  SourceArchive,
			value: "/var/lib/forged/debian.tar",
		},
		{
			name:  "image tag",
			from:  "image:docker.io/library/alpine:3.20",
			kind:  SourceImage,
			value: "docker.io/library/alpine:3.20",
		},
		{
			name:  "surrounding whitespace trimmed",
			from:  "  images/rust.tar  ",
			kind:  SourceArchive,
			value: "images/rust.tar",
		},
		{
			name:    "empty from",
			from:    "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			from:    "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Stage{Name: "build", From: tt.from}.ParseFrom()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("error = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", src.Kind, tt.kind)
			}
			if src.Value != tt.value {
				t.Errorf("value = %q, want %q", src.Value, tt.value)
			}
		})
	}
}

func TestRelease(t *testing.T) {
	p := validPipeline()
	if got := p.Release().Name; got != "release" {
		t.Fatalf("Release().Name = %q, want %q", got, "release")
	}
}
