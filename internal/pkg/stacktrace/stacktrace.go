// Package stacktrace trims panic stacks down to this module's frames.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame of
// stack that lives under an internal/ directory, in stack order.
func InternalPaths(stack []byte) []string {
	var paths []string

	// File locations are the tab-indented lines following each function line.
	for line := range strings.SplitSeq(string(stack), "\n") {
		if !strings.HasPrefix(line, "\t") {
			continue
		}

		loc, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		if !strings.Contains(loc, ".go:") {
			continue
		}

		idx := strings.LastIndex(loc, marker)
		if idx == -1 {
			continue
		}
		paths = append(paths, loc[idx+1:])
	}

	return paths
}
