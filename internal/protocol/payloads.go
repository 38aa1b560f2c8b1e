package protocol

// Asks the daemon to execute a pipeline manifest.
type BuildRequest struct {
	Manifest  string            `json:"manifest"`            // Path to the pipeline manifest on the daemon host.
	Resource  string            `json:"resource,omitempty"`  // Name used as the container ID prefix. Defaults to the pipeline name.
	Output    string            `json:"output"`              // Directory for the exported image.
	Root      string            `json:"root"`                // Build context root for resolving copy sources.
	Params    map[string]string `json:"params,omitempty"`    // Build parameter values, keyed by declared name.
	Platforms []string          `json:"platforms,omitempty"` // Target platforms. Empty means host platform.
}

// Reports a completed build.
type BuildResult struct {
	ID     string `json:"id"`     // Daemon-assigned build identifier.
	Output string `json:"output"` // Directory containing the exported image.
}

// Reports daemon status.
type StatusResult struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
	Pid     int    `json:"pid"`
	Uptime  string `json:"uptime"`
	Builds  int    `json:"builds"` // Build commands processed since start.
}

// Reports a failed command.
type ErrorResult struct {
	Message string `json:"message"`
}
