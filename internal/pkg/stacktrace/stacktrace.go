// Package stacktrace condenses raw goroutine stacks for logging.
package stacktrace

import "strings"

// InternalPaths extracts the frames under /internal/ from a raw stack trace,
// trimmed to file.go:line. Panic logs stay readable without the full dump.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")

	paths := make([]string, 0, 8)
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		start := strings.Index(line, "/internal/")
		if start == -1 {
			continue
		}
		dot := strings.Index(line, ".go:")
		if dot == -1 {
			continue
		}

		end := strings.Index(line[dot:], " ")
		if end == -1 {
			end = len(line)
		} else {
			end += dot
		}
		if end <= start {
			continue
		}
		paths = append(paths, line[start+1:end])
	}
	return paths
}
