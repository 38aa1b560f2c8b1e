package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// A nil runtime proves parameter resolution happens before any runtime
// use: a dereference would panic the test.
func TestRunMissingParamFailsBeforeAnyStage(t *testing.T) {
	output := filepath.Join(t.TempDir(), "dist")

	_, err := Run(context.Background(), nil, Options{
		Pipeline: paramPipeline(),
		Output:   output,
	})
	if !errors.Is(err, ErrParameter) {
		t.Fatalf("error = %v, want ErrParameter", err)
	}

	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("output directory created despite configuration failure")
	}
}

func TestRunEmptyParamFailsBeforeAnyStage(t *testing.T) {
	_, err := Run(context.Background(), nil, Options{
		Pipeline: paramPipeline(),
		Output:   t.TempDir(),
		Params:   map[string]string{"DATABASE_URL": ""},
	})
	if !errors.Is(err, ErrParameter) {
		t.Fatalf("error = %v, want ErrParameter", err)
	}
}
