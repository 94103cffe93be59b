// Package config reads typed configuration values. Implementations decide
// where values come from (file, memory) and how reloads work.
package config

import (
	"io"
	"time"
)

// Config retrieves configuration values of various types. Missing keys yield
// zero values; callers that need hard failures should check explicitly.
type Config interface {
	io.Closer

	// GetString returns the value for key as a string.
	GetString(key string) string

	// GetBool returns the value for key as a bool.
	GetBool(key string) bool

	// GetInt returns the value for key as an int.
	GetInt(key string) int

	// GetInt32 returns the value for key as an int32.
	GetInt32(key string) int32

	// GetInt64 returns the value for key as an int64.
	GetInt64(key string) int64

	// GetUint returns the value for key as a uint.
	GetUint(key string) uint

	// GetFloat64 returns the value for key as a float64.
	GetFloat64(key string) float64

	// GetSecond returns the integer value for key as a duration in seconds.
	GetSecond(key string) time.Duration

	// GetMinute returns the integer value for key as a duration in minutes.
	GetMinute(key string) time.Duration

	// GetHour returns the integer value for key as a duration in hours.
	GetHour(key string) time.Duration

	// GetDay returns the integer value for key as a duration in days (24h).
	GetDay(key string) time.Duration

	// GetArray returns the value for key split on commas.
	GetArray(key string) []string

	// GetMap returns the value for key parsed from "k1:v1,k2:v2" pairs.
	GetMap(key string) map[string]string

	// GetBinary returns the value for key decoded from base64.
	GetBinary(key string) []byte
}
