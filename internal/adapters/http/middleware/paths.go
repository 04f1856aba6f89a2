package middleware

import "strings"

// opsPrefix is where the probes, build info and metrics live.
const opsPrefix = "/-/"

// pathFilter reports whether a request path is exempt from a middleware.
type pathFilter func(path string) bool

// exempt matches the given paths exactly. With ops set it also matches
// everything under /-/.
func exempt(ops bool, paths ...string) pathFilter {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}

	return func(path string) bool {
		if ops && strings.HasPrefix(path, opsPrefix) {
			return true
		}

		_, ok := set[path]

		return ok
	}
}
