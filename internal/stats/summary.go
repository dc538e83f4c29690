package stats

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// localeTag resolves a language tag from the process environment (LC_ALL
// then LANG), falling back to the locale-neutral tag. A malformed or unset
// locale is never an error here — at worst the summary prints without
// thousands grouping.
func localeTag() language.Tag {
	for _, name := range []string{"LC_ALL", "LANG"} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		v = strings.SplitN(v, ".", 2)[0]
		v = strings.ReplaceAll(v, "_", "-")
		if tag, err := language.Parse(v); err == nil {
			return tag
		}
	}
	return language.Und
}

// Summary renders a snapshot as the single stderr line printed at the end of
// a run (suppressed by --nosummary), with locale-aware thousands grouping.
func Summary(s Snapshot) string {
	p := message.NewPrinter(localeTag())
	return p.Sprintf(
		"%d directories, %d files, %d unknown, %d matches, %d stat calls, %d/%d acls, %d errors, %d bytes copied, %d not copied",
		s.Dirs, s.Files, s.Unknowns, s.FilterMatches, s.StatCalls,
		s.AccessACLs, s.DefaultACLs, s.Errors, s.BytesCopied, s.FilesNotCopied,
	)
}
