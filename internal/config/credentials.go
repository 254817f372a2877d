package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// Credential keys
const (
	KeyService    = "serviceApiKey"
	KeyCompletion = "completionApiKey"
)

// ErrMissingCredential is returned when a required API key has not been configured
var ErrMissingCredential = errors.New("missing credential")

const defaultPassphrase = "ezekia-report-agent/credentials/v1"

// envNames lists, per credential key, the environment variables that may seed it
var envNames = map[string][]string{
	KeyService:    {"SERVICE_API_KEY", "EZEKIA_API_KEY"},
	KeyCompletion: {"COMPLETION_API_KEY", "OPENAI_API_KEY"},
}

// CredentialStore is a persistent key-value store for API credentials
type CredentialStore interface {
	Get(key, def string) string
	Set(key, value string) error
}

type credentialFile struct {
	Salt   string            `json:"salt"`
	Values map[string]string `json:"values"`
}

// FileStore keeps credentials in a JSON file, each value sealed with NaCl secretbox
type FileStore struct {
	path   string
	salt   []byte
	key    [32]byte
	mu     sync.RWMutex
	values map[string]string
}

// OpenCredentialStore opens credentials.json in the application directory
func OpenCredentialStore() (*FileStore, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return NewFileStore(filepath.Join(dir, "credentials.json"), "")
}

// NewFileStore opens or creates a store at path. An empty passphrase selects the built-in one.
func NewFileStore(path, passphrase string) (*FileStore, error) {
	if passphrase == "" {
		passphrase = defaultPassphrase
	}

	s := &FileStore{path: path, values: map[string]string{}}

	var file credentialFile
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse credentials file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if file.Salt != "" {
		s.salt, err = base64.StdEncoding.DecodeString(file.Salt)
		if err != nil {
			return nil, fmt.Errorf("failed to decode credentials salt: %w", err)
		}
	} else {
		s.salt = make([]byte, 16)
		if _, err := io.ReadFull(rand.Reader, s.salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	derived, err := scrypt.Key([]byte(passphrase), s.salt, 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("failed to derive credentials key: %w", err)
	}
	copy(s.key[:], derived)

	for name, sealed := range file.Values {
		value, err := s.open(sealed)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt credential %s: %w", name, err)
		}
		s.values[name] = value
	}

	return s, nil
}

// Get returns the stored value for key, or def when it is unset or empty
func (s *FileStore) Get(key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[key]; ok && v != "" {
		return v
	}
	return def
}

// Set stores value under key and persists the store
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.persist()
}

func (s *FileStore) persist() error {
	file := credentialFile{
		Salt:   base64.StdEncoding.EncodeToString(s.salt),
		Values: make(map[string]string, len(s.values)),
	}
	for name, value := range s.values {
		sealed, err := s.seal(value)
		if err != nil {
			return err
		}
		file.Values[name] = sealed
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

func (s *FileStore) seal(value string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

func (s *FileStore) open(sealed string) (string, error) {
	box, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}
	if len(box) < 24 {
		return "", errors.New("sealed value too short")
	}

	var nonce [24]byte
	copy(nonce[:], box[:24])
	plain, ok := secretbox.Open(nil, box[24:], &nonce, &s.key)
	if !ok {
		return "", errors.New("authentication failed")
	}
	return string(plain), nil
}

// SeedFromEnv fills credentials missing from the store with values found in the
// environment, after loading any of the given .env files that exist. Values found
// are persisted.
func SeedFromEnv(store CredentialStore, envFiles ...string) error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	for _, key := range []string{KeyService, KeyCompletion} {
		if store.Get(key, "") != "" {
			continue
		}
		for _, name := range envNames[key] {
			value := os.Getenv(name)
			if value == "" {
				continue
			}
			if err := store.Set(key, value); err != nil {
				return err
			}
			slog.Info("credential seeded from environment", "key", key, "variable", name)
			break
		}
	}
	return nil
}

// Require returns the value of key or an error wrapping ErrMissingCredential
func Require(store CredentialStore, key string) (string, error) {
	v := store.Get(key, "")
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingCredential, key)
	}
	return v, nil
}

// MemoryStore is an in-process CredentialStore
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns a store pre-populated with values
func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{values: map[string]string{}}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Get returns the stored value for key, or def when it is unset or empty
func (m *MemoryStore) Get(key, def string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v := m.values[key]; v != "" {
		return v
	}
	return def
}

// Set stores value under key
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
