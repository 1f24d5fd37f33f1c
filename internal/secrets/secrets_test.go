// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Set
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GeminiAPIKey, "  gk_abc123  \n")
				writeFile(t, dir, OpenAIAPIKey, "sk_xyz789")
				return dir
			},
			want: Set{
				GeminiAPIKey: "gk_abc123",
				OpenAIAPIKey: "sk_xyz789",
			},
		},
		{
			name: "returns empty set for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Set{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, CronSecret, "s3cret")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Set{CronSecret: "s3cret"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, GeminiAPIKey, "gk_real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Set{GeminiAPIKey: "gk_real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "GEMINI_API_KEY=gk_env\nOPENAI_API_KEY=\"sk_env\"\nCRON_SECRET=\n")

	got, err := LoadEnvFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, Set{GeminiAPIKey: "gk_env", OpenAIAPIKey: "sk_env"}, got)
}

func TestLoadEnvFileMissing(t *testing.T) {
	got, err := LoadEnvFile(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMergeAndGet(t *testing.T) {
	merged := Merge(
		Set{GeminiAPIKey: "from-dir", CronSecret: "dir-cron"},
		Set{GeminiAPIKey: "from-env"},
	)
	assert.Equal(t, "from-env", merged.Get(GeminiAPIKey, ""))
	assert.Equal(t, "explicit", merged.Get(GeminiAPIKey, "explicit"))
	assert.Equal(t, "", merged.Get(OpenAIAPIKey, ""))

	keys := merged.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{CronSecret, GeminiAPIKey}, keys)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
