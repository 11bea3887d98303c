package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store := NewFileStore(path)

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("isLightMode", "true"))
	require.NoError(t, store.Set("other", "x"))

	reopened := NewFileStore(path)
	v, ok, err := reopened.Get("isLightMode")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "isLightMode: \"true\"")
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0644))

	_, _, err := NewFileStore(path).Get("isLightMode")
	assert.Error(t, err)
}

func TestThemeToggle(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		expected Theme
	}{
		{name: "missing is dark", expected: Dark},
		{name: "true is light", stored: "true", expected: Light},
		{name: "false is dark", stored: "false", expected: Dark},
		{name: "garbage is dark", stored: "maybe", expected: Dark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMemoryStore()
			if tt.stored != "" {
				require.NoError(t, repo.Set(ThemeKey, tt.stored))
			}
			theme, err := LoadTheme(repo)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, theme)
		})
	}

	repo := NewMemoryStore()
	next, err := ToggleTheme(repo)
	require.NoError(t, err)
	assert.Equal(t, Light, next)

	v, _, _ := repo.Get(ThemeKey)
	assert.Equal(t, "true", v)

	next, err = ToggleTheme(repo)
	require.NoError(t, err)
	assert.Equal(t, Dark, next)
	v, _, _ = repo.Get(ThemeKey)
	assert.Equal(t, "false", v)
}
