// Package validator validates request and domain structs behind a small
// interface, so usecases stay independent of the concrete library.
package validator

// Validator validates a struct according to its field tags.
type Validator interface {
	// Validate returns nil when data passes, or an error whose message maps
	// field names to human-readable problems.
	Validate(data any) error
}
