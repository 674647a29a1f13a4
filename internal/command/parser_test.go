package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_Empty(t *testing.T) {
	assert.Equal(t, ParseResult{}, Parse(""))
	assert.Equal(t, ParseResult{}, Parse("   \t "))
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("luck")
	assert.Equal(t, "luck", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_Lowercase(t *testing.T) {
	assert.Equal(t, "login", Parse("LOGIN").Command)
}

func TestParse_ArgsKeepCase(t *testing.T) {
	result := Parse("  bind   1234-abcd-5678-EF90  ")
	assert.Equal(t, "bind", result.Command)
	assert.Equal(t, []string{"1234-abcd-5678-EF90"}, result.Args)
	assert.Equal(t, "1234-abcd-5678-EF90", result.Arg(0))
	assert.Equal(t, "", result.Arg(1))
	assert.Equal(t, "", result.Arg(-1))
}

func TestPropertyParseAlwaysLowercasesCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,20}`).Draw(t, "word")
		result := Parse(word)
		if result.Command != strings.ToLower(word) {
			t.Fatalf("Parse(%q).Command = %q", word, result.Command)
		}
	})
}

// Property: rejoining command and args reproduces the normalized input.
func TestPropertyParseRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9-]{1,8}`), 1, 5).Draw(t, "words")
		sep := rapid.SampledFrom([]string{" ", "  ", "\t"}).Draw(t, "sep")
		result := Parse(strings.Join(words, sep))
		got := append([]string{result.Command}, result.Args...)
		assert.Equal(t, words, got)
	})
}
