// Package pathutil normalizes POSIX style paths that may arrive with Windows
// separators, redundant slashes and dot segments.
package pathutil

import (
	"path"
	"regexp"
	"strings"
)

const Separator = "/"

var backslashes = regexp.MustCompile(`\\+`)

// Normalize converts backslashes to slashes, collapses repeated separators and
// resolves "." and ".." segments. A trailing separator is kept, an empty path
// becomes ".". Normalize is idempotent.
func Normalize(p string) string {
	p = backslashes.ReplaceAllString(p, Separator)
	if p == "" {
		return "."
	}
	trailing := strings.HasSuffix(p, Separator)
	p = path.Clean(p)
	if trailing && p != Separator {
		p += Separator
	}
	return p
}

// IsRoot reports whether p addresses the root: empty, or only separators
// once surrounding blanks are trimmed.
func IsRoot(p string) bool {
	p = strings.TrimSpace(p)
	return p == "" || Normalize(p) == Separator
}

// Segments normalizes p and returns its non-blank segments.
func Segments(p string) []string {
	parts := strings.Split(Normalize(p), Separator)
	out := parts[:0]
	for _, s := range parts {
		if strings.TrimSpace(s) == "" || s == "." {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Join joins the non-empty elements with a separator and normalizes the result.
func Join(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e != "" {
			parts = append(parts, e)
		}
	}
	if len(parts) == 0 {
		return "."
	}
	return Normalize(strings.Join(parts, Separator))
}
