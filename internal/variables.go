package internal

import (
	"fmt"
	"runtime"
	"strings"
)

// Name of the daemon, used for logging groups, socket paths, and CLI help.
const Name = "forged"

const (

	// Placeholder for variables that were never set.
	undefinedValue = "(undefined)"

	// Version string reported by builds made outside the release pipeline.
	localBuildValue = "(local)"

	// Branch whose name is omitted from version strings.
	releaseBranch = "main"
)

var (
	version   = "" // Release version (e.g., "0.4.1").
	stage     = "" // Git branch the release was cut from.
	gitCommit = "" // Short commit hash of the release.

	rawQuiet   = "false" // Whether quiet mode is on by default.
	rawDebug   = "false" // Whether debug mode is on by default.
	rawVerbose = "false" // Whether verbose logging is on by default.
)

// Returns the release version with any "v" prefix stripped.
//
// Returns "(undefined)" for builds that did not set the version via
// linker flags.
func Version() string {
	v := strings.TrimSpace(version)
	if v == "" {
		return undefinedValue
	}
	return strings.TrimPrefix(strings.ToLower(v), "v")
}

// Returns the branch the release was cut from, or "(undefined)".
func Stage() string {
	s := strings.TrimSpace(stage)
	if s == "" {
		return undefinedValue
	}
	return strings.ToLower(s)
}

// Returns the short commit hash of the release, or "(undefined)".
func GitCommit() string {
	c := strings.TrimSpace(gitCommit)
	if c == "" {
		return undefinedValue
	}
	return c
}

// Returns the architecture the daemon was compiled for.
func Arch() string {
	return runtime.GOARCH
}

// Reports whether this binary was built outside the release pipeline.
//
// Release builds set version, stage, and commit via linker flags; if any
// of the three is missing the build is treated as local.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" ||
		strings.TrimSpace(gitCommit) == "" ||
		strings.TrimSpace(stage) == ""
}

// Returns the full version string.
//
// Local builds report "(local)". Release builds report
// "<version>+<stage> <commit> [<arch>]", with the stage suffix omitted
// on the main branch.
func VersionString() string {
	if IsLocal() {
		return localBuildValue
	}

	s := Stage()
	if s == releaseBranch {
		s = ""
	} else {
		s = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s]", Version(), s, GitCommit(), Arch())
}
