// Package errwrap attaches error classes to causes.
//
// Packages in this module define sentinel class errors (e.g., "build
// failed", "runtime error") and wrap underlying causes with them. Both
// the class and the cause remain matchable with [errors.Is].
package errwrap

import "fmt"

// Wraps cause with the given class error.
func Wrap(class, cause error) error {
	return fmt.Errorf("%w: %w", class, cause)
}

// Wraps a formatted message with the given class error.
//
// The format string may itself contain %w verbs to preserve further
// causes.
func Wrapf(class error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{class}, args...)...)
}
