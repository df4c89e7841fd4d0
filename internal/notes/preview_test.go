package notes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentPreview(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", ContentPreview("", 3))
	require.Equal(t, "one line", ContentPreview("one line", 3))
	require.Equal(t, "a\nb\nc", ContentPreview("a\nb\nc", 3))
	require.Equal(t, "a\nb\nc\n...", ContentPreview("a\nb\nc\nd\ne", 3))
	require.Equal(t, "full", ContentPreview("full", 0))
}

func TestCountLines(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, CountLines(""))
	require.Equal(t, 1, CountLines("x"))
	require.Equal(t, 3, CountLines("a\nb\nc"))
}
