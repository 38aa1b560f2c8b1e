// Provides the reconfigurable slog handler used by the forged daemon.
//
// The daemon installs a buffered handler before flag parsing so early
// records are not lost, then commits the level, formatter, and stream
// once the command line has been read.
package logging
