package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Subdirectory name under each XDG base path.
	daemonName = "forged"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/forged or /run/user/<uid>/forged
//	macOS:   ~/Library/Caches/forged/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, daemonName)
	}
	return filepath.Join(xdg.CacheHome, daemonName, "run")
}

// Default path to the Unix domain socket the daemon listens on.
//
//	Linux:   $XDG_RUNTIME_DIR/forged/forged.sock
//	macOS:   ~/Library/Caches/forged/run/forged.sock
func Socket() string {
	return filepath.Join(Runtime(), daemonName+".sock")
}

// Default path to the PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/forged/forged.pid
//	macOS:   ~/Library/Caches/forged/run/forged.pid
func PIDFile() string {
	return filepath.Join(Runtime(), daemonName+".pid")
}
