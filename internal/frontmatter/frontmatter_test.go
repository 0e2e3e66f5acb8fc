package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontMatter(t *testing.T) {
	front, body, err := Split("# Title\n\nHello\n")
	require.NoError(t, err)
	assert.Empty(t, front)
	assert.Equal(t, "# Title\n\nHello\n", body)
}

func TestSplit_FrontMatterAndBody(t *testing.T) {
	front, body, err := Split("---\ntitle: Hello\n---\n# Title\n")
	require.NoError(t, err)
	assert.Equal(t, "title: Hello\n", front)
	assert.Equal(t, "# Title\n", body)
}

func TestSplit_CRLF(t *testing.T) {
	front, body, err := Split("---\r\ntitle: Hello\r\n---\r\nbody\r\n")
	require.NoError(t, err)
	assert.Equal(t, "title: Hello\r\n", front)
	assert.Equal(t, "body\r\n", body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	front, body, err := Split("---\n---\nbody")
	require.NoError(t, err)
	assert.Empty(t, front)
	assert.Equal(t, "body", body)
}

func TestSplit_MissingClose(t *testing.T) {
	_, _, err := Split("---\ntitle: Hello\n# Title\n")
	assert.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestParse_KeepsOrderAndSkipsMaps(t *testing.T) {
	fields, err := Parse(`
title: Create a workflow
solution:
  - Experience Manager
  - Assets
nested:
  a: b
mixed:
  - x
  - {y: z}
empty:
role: Admin
`)
	require.NoError(t, err)
	require.Len(t, fields, 3)

	assert.Equal(t, "title", fields[0].Key)
	assert.Equal(t, "solution", fields[1].Key)
	assert.True(t, fields[1].List)
	assert.Equal(t, "Experience Manager, Assets", fields[1].Value())
	assert.Equal(t, "role", fields[2].Key)
}

func TestParse_Empty(t *testing.T) {
	fields, err := Parse("  \n")
	require.NoError(t, err)
	assert.Nil(t, fields)
}

func TestParse_NotAMapping(t *testing.T) {
	_, err := Parse("- a\n- b\n")
	assert.Error(t, err)
}

func TestFields_Get(t *testing.T) {
	fields := Fields{
		{Key: "Title", Values: []string{"upper"}},
		{Key: "title", Values: []string{"lower"}},
	}
	assert.Equal(t, "lower", fields.String("title"))
	assert.Equal(t, "upper", fields.String("TITLE"))
	assert.Empty(t, fields.String("missing"))
	assert.Nil(t, fields.Strings("missing"))
}
