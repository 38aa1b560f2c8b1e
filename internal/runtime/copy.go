package runtime

import (
	"context"
	"io"
	"path/filepath"

	"github.com/forgebuild/forged/internal/errwrap"
)

// Creates a directory inside the container, including parents.
func (c *Container) MkdirAll(ctx context.Context, path string) error {
	return c.mustExec(ctx, "mkdir", nil, nil, "mkdir", "-p", path)
}

// Extracts a tar stream into the container's filesystem.
//
// The contents of r are piped to "tar xf - -C destDir" inside the
// container.
func (c *Container) CopyTo(ctx context.Context, r io.Reader, destDir string) error {
	return c.mustExec(ctx, "tar extract", r, nil, "tar", "xf", "-", "-C", destDir)
}

// Archives a path from the container's filesystem as a tar stream.
//
// The file or directory at path is written to w by running
// "tar cf - -C <dir> <base>" inside the container.
func (c *Container) CopyFrom(ctx context.Context, w io.Writer, path string) error {
	return c.mustExec(ctx, "tar archive", nil, w, "tar", "cf", "-", "-C", filepath.Dir(path), filepath.Base(path))
}

// Reports whether a path exists in the container's filesystem.
//
// Used to distinguish a missing build artifact from a transfer failure
// before attempting an extraction.
func (c *Container) StatPath(ctx context.Context, path string) (bool, error) {
	exitCode, _, err := c.execCommand(ctx, nil, nil, nil, "", "test", "-e", path)
	if err != nil {
		return false, err
	}
	return exitCode == 0, nil
}

// Runs a command inside the container, treating a non-zero exit code as
// an error that includes desc.
func (c *Container) mustExec(ctx context.Context, desc string, stdin io.Reader, stdout io.Writer, args ...string) error {
	exitCode, stderr, err := c.execCommand(ctx, stdin, stdout, nil, "", args...)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return errwrap.Wrapf(ErrRuntime, "%s failed with exit code %d (%s)", desc, exitCode, stderr)
	}
	return nil
}
