package filter

import (
	"regexp"
	"strings"
)

// globPattern is a compiled shell-glob pattern ('*', '?', and bracket
// character classes) matched against a whole string — a basename for the
// name filter, a full path for the path filter. Unlike a shell glob, '*'
// matches '/' too, since the path filter must match across path separators.
type globPattern struct {
	re       *regexp.Regexp
	original string
}

func compileGlob(pattern string) (*globPattern, error) {
	re, err := regexp.Compile("^" + globToRegex(pattern) + "$")
	if err != nil {
		return nil, err
	}
	return &globPattern{re: re, original: pattern}, nil
}

func (g *globPattern) match(s string) bool {
	return g.re.MatchString(s)
}

// globToRegex converts a glob pattern into the body of a regular
// expression (the caller anchors it).
//
//nolint:gocyclo,revive // cognitive-complexity: character-by-character glob parser
func globToRegex(pattern string) string {
	var b strings.Builder
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '*':
			b.WriteString(".*")
			i++
		case '?':
			b.WriteString(".")
			i++
		case '[':
			j := i + 1
			if j < len(pattern) && pattern[j] == '!' {
				j++
			}
			if j < len(pattern) && pattern[j] == ']' {
				j++
			}
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j < len(pattern) {
				cls := pattern[i+1 : j]
				if strings.HasPrefix(cls, "!") {
					cls = "^" + cls[1:]
				}
				b.WriteString("[" + cls + "]")
				i = j + 1
			} else {
				b.WriteString(regexp.QuoteMeta(string(c)))
				i++
			}
		case '.', '(', ')', '+', '{', '}', '^', '$', '|', '\\':
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}
