package pipeline

import "errors"

var (
	ErrBuild               = errors.New("build failed")
	ErrParameter           = errors.New("missing build parameter")
	ErrArtifact            = errors.New("artifact not found")
	ErrCopy                = errors.New("copy failed")
	ErrCommandFailed       = errors.New("command failed")
	ErrFileSystemOperation = errors.New("file system operation failed")
)
