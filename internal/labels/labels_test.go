package labels

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_LookupWithFallback(t *testing.T) {
	s := NewStatic()
	s.Set("en", "role", "admin", "Administrator")
	s.Set("de", "role", "admin", "Administrator:in")

	got, err := s.LookupLabel(context.Background(), "role", "admin", "de")
	require.NoError(t, err)
	assert.Equal(t, "Administrator:in", got)

	got, err = s.LookupLabel(context.Background(), "role", "admin", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Administrator", got)

	_, err = s.LookupLabel(context.Background(), "level", "beginner", "en")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	require.NoError(t, os.WriteFile(path, []byte("en:\n  ui:\n    video-transcript: Transcript\n"), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	got, err := s.LookupLabel(context.Background(), "ui", "video-transcript", "en")
	require.NoError(t, err)
	assert.Equal(t, "Transcript", got)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("en: [1, 2"))
	assert.Error(t, err)
}
