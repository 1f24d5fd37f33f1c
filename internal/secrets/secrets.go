// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials for the LLM providers and
// the cron route. Two sources are supported: a directory of plain-text files
// where the filename is the key and the trimmed contents are the value, and a
// dotenv file whose variable names are mapped to the same keys
// (GEMINI_API_KEY becomes gemini-api-key).
//
// Known keys: gemini-api-key, openai-api-key, cron-secret.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	GeminiAPIKey = "gemini-api-key"
	OpenAIAPIKey = "openai-api-key"
	CronSecret   = "cron-secret"
)

// Set maps secret keys to values.
type Set map[string]string

// Get returns the secret for key, or fallback when fallback is non-empty or
// the key is absent. Explicit configuration wins over loaded secrets.
func (s Set) Get(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return s[key]
}

// Keys returns the loaded key names without their values.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty Set. Dotfiles, subdirectories, empty and unreadable files
// are skipped.
func Load(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := make(Set)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}

	return set, nil
}

// LoadEnvFile reads a dotenv file without touching the process environment.
// A missing file yields an empty Set.
func LoadEnvFile(path string) (Set, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Set{}, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}

	set := make(Set, len(vars))
	for k, v := range vars {
		if v = strings.TrimSpace(v); v != "" {
			set[envKey(k)] = v
		}
	}
	return set, nil
}

// Merge combines sets; later sets override earlier ones.
func Merge(sets ...Set) Set {
	out := make(Set)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// envKey maps an environment variable name to a secret key.
func envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}
