package walker

import "strings"

// joinPath appends name to dir using the entry-path construction rule of
// §4.E: a single '/' separator, with no double separator at the root.
func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}
