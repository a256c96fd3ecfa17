package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTextSkipsBlankAndComment(t *testing.T) {
	src := "\n# a comment\nlabel top\npush 0\njump top\n"
	lines, err := ParseText(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, []Line{
		{Label: "top"},
		{Op: "push", Args: []string{"0"}},
		{Op: "jump", Args: []string{"top"}},
	}, lines)
}

func TestParseTextRejectsMalformedLabel(t *testing.T) {
	_, err := ParseText(strings.NewReader("label\n"))
	require.Error(t, err)
}

func TestFormatTextRoundTripsParseText(t *testing.T) {
	src := "label top\npush 0\njump top\ndone\n"
	lines, err := ParseText(strings.NewReader(src))
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, FormatText(&b, lines))
	require.Equal(t, src, b.String())
}
