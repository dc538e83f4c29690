package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExecLineSubstitutesAllOccurrences(t *testing.T) {
	line := BuildExecLine([]string{"echo", "{}", "{}-copy"}, "a/b c")
	assert.Equal(t, `'echo' 'a/b c' 'a/b c-copy'`, line)
}

func TestShellQuoteEscapesEmbeddedQuote(t *testing.T) {
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}
