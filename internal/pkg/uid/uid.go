// Package uid groups the identifier generators used across the service:
// snowflake int64 primary keys, UUID correlation IDs, and long random object
// IDs for opaque tokens.
package uid

// NumberID generates int64 identifiers, typically database primary keys.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
