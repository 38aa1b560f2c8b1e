package pipeline

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgebuild/forged/internal/errwrap"
	"github.com/forgebuild/forged/internal/runtime"
)

// Executes a copy operation, transferring files into the container.
//
// The copy string has the format "src dest" for host copies, or
// "stage:src dest" for cross-stage copies. Host sources resolve
// relative to the build context. Cross-stage sources are artifact
// handoffs: the path is read from a completed stage container's
// filesystem.
func executeCopy(ctx context.Context, ctr *runtime.Container, copyStr, workdir, buildCtx string, stages map[string]*runtime.Container) error {
	src, dest, err := parseCopy(copyStr, workdir)
	if err != nil {
		return errwrap.Wrap(ErrCopy, err)
	}

	// Ensure the destination parent directory exists.
	destDir := filepath.Dir(dest)
	if destDir != "" {
		if err := ctr.MkdirAll(ctx, destDir); err != nil {
			return errwrap.Wrap(ErrCopy, err)
		}
	}

	if stage, path, ok := parseStageCopy(src); ok {
		srcCtr, ok := stages[stage]
		if !ok {
			return errwrap.Wrapf(ErrCopy, "unknown stage %q", stage)
		}
		return executeStageCopy(ctx, ctr, srcCtr, stage, path, dest)
	}

	return executeHostCopy(ctx, ctr, src, dest, buildCtx)
}

// Source side of an artifact handoff, satisfied by [runtime.Container].
type artifactSource interface {
	StatPath(ctx context.Context, path string) (bool, error)
	CopyFrom(ctx context.Context, w io.Writer, path string) error
}

// Destination side of an artifact handoff, satisfied by
// [runtime.Container].
type artifactDest interface {
	CopyTo(ctx context.Context, r io.Reader, destDir string) error
}

// Copies a file or directory from the host into the container.
func executeHostCopy(ctx context.Context, ctr *runtime.Container, src, dest, buildCtx string) error {
	if !filepath.IsAbs(src) {
		src = filepath.Join(buildCtx, src)
	}

	info, err := os.Stat(src)
	if err != nil {
		return errwrap.Wrap(ErrCopy, err)
	}

	slog.Debug("copy", "src", src, "dest", dest, "dir", info.IsDir())

	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)
		var writeErr error

		if info.IsDir() {
			writeErr = writeDirToTar(tw, src, filepath.Base(dest))
		} else {
			writeErr = writeFileToTar(tw, src, filepath.Base(dest))
		}

		tw.Close()
		pw.CloseWithError(writeErr)
	}()

	if err := ctr.CopyTo(ctx, pr, filepath.Dir(dest)); err != nil {
		// Unblocks the tar writer goroutine.
		pr.CloseWithError(err)
		return errwrap.Wrap(ErrCopy, err)
	}

	return nil
}

// Hands an artifact from a completed stage to the target container.
//
// The source path is probed first so a stage that produced no artifact
// at the expected path fails with [ErrArtifact] rather than a tar
// error. The bytes are then piped directly from the source container's
// CopyFrom to the target's CopyTo; the target receives its own copy,
// independent of any later change to the source stage.
func executeStageCopy(ctx context.Context, ctr artifactDest, srcCtr artifactSource, stage, path, dest string) error {
	exists, err := srcCtr.StatPath(ctx, path)
	if err != nil {
		return errwrap.Wrap(ErrCopy, err)
	}
	if !exists {
		return errwrap.Wrapf(ErrArtifact, "%s missing from stage %q", path, stage)
	}

	slog.Debug("artifact handoff", "stage", stage, "src", path, "dest", dest)

	pr, pw := io.Pipe()

	errc := make(chan error, 1)
	go func() {
		errc <- srcCtr.CopyFrom(ctx, pw, path)
		pw.Close()
	}()

	if err := ctr.CopyTo(ctx, pr, filepath.Dir(dest)); err != nil {
		// Unblocks the CopyFrom goroutine writing into the pipe.
		pr.CloseWithError(err)
		<-errc
		return errwrap.Wrap(ErrCopy, err)
	}

	if err := <-errc; err != nil {
		return errwrap.Wrap(ErrCopy, err)
	}

	return nil
}

// Parses a cross-stage copy source of the form "stage:path".
//
// Returns the stage name, the path within the stage, and true when the
// source matches the cross-stage format. A colon after a path separator
// is not a stage prefix (e.g., "/foo:bar" is a host path).
func parseStageCopy(src string) (stage, path string, ok bool) {
	i := strings.IndexByte(src, ':')
	if i < 1 {
		return "", "", false
	}

	if strings.ContainsRune(src[:i], '/') {
		return "", "", false
	}

	return src[:i], src[i+1:], true
}

// Parses a copy string into source and destination paths.
//
// The string must contain exactly two whitespace-separated tokens. A
// relative dest is joined with workdir.
func parseCopy(s, workdir string) (src, dest string, err error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected source and destination, got %q", s)
	}

	src = parts[0]
	dest = parts[1]

	if !filepath.IsAbs(dest) {
		if workdir == "" {
			return "", "", fmt.Errorf("relative dest %q requires workdir", dest)
		}
		dest = filepath.Join(workdir, dest)
	}

	return src, dest, nil
}

// Writes a single file to a tar writer under the given archive name.
func writeFileToTar(tw *tar.Writer, hostPath, name string) error {
	info, err := os.Stat(hostPath)
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	f, err := os.Open(hostPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}

// Writes a directory tree to a tar writer rooted at the given prefix.
func writeDirToTar(tw *tar.Writer, hostDir, prefix string) error {
	return filepath.WalkDir(hostDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(hostDir, path)
		if err != nil {
			return err
		}

		archivePath := filepath.ToSlash(filepath.Join(prefix, relPath))
		return writeTarEntry(tw, path, archivePath, d)
	})
}

// Writes a single file or directory entry to a tar writer.
func writeTarEntry(tw *tar.Writer, hostPath, archivePath string, d os.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = archivePath

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	if info.Mode().IsRegular() {
		f, err := os.Open(hostPath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	}

	return nil
}
