package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorePersistsEncryptedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store, err := NewFileStore(path, "")
	require.NoError(t, err)
	assert.Equal(t, "fallback", store.Get(KeyService, "fallback"))

	require.NoError(t, store.Set(KeyService, "svc-secret-123"))
	require.NoError(t, store.Set(KeyCompletion, "sk-completion-456"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "svc-secret-123"), "plaintext leaked into the credentials file")
	assert.False(t, strings.Contains(string(raw), "sk-completion-456"), "plaintext leaked into the credentials file")

	reopened, err := NewFileStore(path, "")
	require.NoError(t, err)
	assert.Equal(t, "svc-secret-123", reopened.Get(KeyService, ""))
	assert.Equal(t, "sk-completion-456", reopened.Get(KeyCompletion, ""))
}

func TestFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store, err := NewFileStore(path, "first")
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyService, "value"))

	_, err = NewFileStore(path, "second")
	assert.Error(t, err)
}

func TestFileStoreEmptyValueFallsBackToDefault(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"), "")
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyService, ""))
	assert.Equal(t, "def", store.Get(KeyService, "def"))
}

func TestSeedFromEnv(t *testing.T) {
	t.Setenv("SERVICE_API_KEY", "")
	t.Setenv("EZEKIA_API_KEY", "ezekia-from-env")
	t.Setenv("COMPLETION_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	store := NewMemoryStore(map[string]string{KeyCompletion: "already-set"})
	require.NoError(t, SeedFromEnv(store))

	assert.Equal(t, "ezekia-from-env", store.Get(KeyService, ""))
	assert.Equal(t, "already-set", store.Get(KeyCompletion, ""))
}

func TestSeedFromEnvPrefersPrimaryName(t *testing.T) {
	t.Setenv("SERVICE_API_KEY", "primary")
	t.Setenv("EZEKIA_API_KEY", "alias")
	t.Setenv("COMPLETION_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	store := NewMemoryStore(nil)
	require.NoError(t, SeedFromEnv(store))
	assert.Equal(t, "primary", store.Get(KeyService, ""))
}

func TestSeedFromEnvLoadsDotEnvFile(t *testing.T) {
	for _, name := range []string{"SERVICE_API_KEY", "EZEKIA_API_KEY", "COMPLETION_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("COMPLETION_API_KEY=sk-dotenv\n"), 0600))

	store := NewMemoryStore(nil)
	require.NoError(t, SeedFromEnv(store, envFile, filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, "sk-dotenv", store.Get(KeyCompletion, ""))
	assert.Equal(t, "", store.Get(KeyService, ""))
}

func TestRequire(t *testing.T) {
	store := NewMemoryStore(map[string]string{KeyService: "abc"})

	v, err := Require(store, KeyService)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	_, err = Require(store, KeyCompletion)
	assert.True(t, errors.Is(err, ErrMissingCredential))
}
