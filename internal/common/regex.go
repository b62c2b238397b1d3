package common

import (
	"regexp"
	"strings"
)

// CompileInsensitive compiles a pattern, making it case-insensitive by default.
func CompileInsensitive(pattern string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}
