package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

const appDirName = "EzekiaReportAgent"

// Completion providers understood by the llm package
const (
	ProviderOpenAI   = "openai"
	ProviderVertexAI = "vertexai"
)

// Branding is the letterhead printed on the report cover page
type Branding struct {
	CompanyName  string   `json:"company_name"`
	Presenter    string   `json:"presenter"`
	AddressLines []string `json:"address_lines"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	Website      string   `json:"website"`
	LogoPath     string   `json:"logo_path"`
}

// Config holds application configuration
type Config struct {
	EzekiaBaseURL         string   `json:"ezekia_base_url"`
	OpenAIBaseURL         string   `json:"openai_base_url"`
	CompletionProvider    string   `json:"completion_provider"`
	OpenAIModel           string   `json:"openai_model"`
	GoogleCloudProject    string   `json:"google_cloud_project"`
	GoogleCloudLocation   string   `json:"google_cloud_location"`
	GoogleCredentialsPath string   `json:"google_credentials_path"`
	AssignmentLimit       int      `json:"assignment_limit"`
	CandidateLimit        int      `json:"candidate_limit"`
	Branding              Branding `json:"branding"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		EzekiaBaseURL:       "https://ezekia.com/api",
		OpenAIBaseURL:       "https://api.openai.com/v1",
		CompletionProvider:  ProviderOpenAI,
		OpenAIModel:         "gpt-3.5-turbo",
		GoogleCloudLocation: "us-central1",
		AssignmentLimit:     100,
		CandidateLimit:      100,
	}
}

// Dir returns the per-user application directory, creating it if needed.
// On Windows: %APPDATA%/EzekiaReportAgent
// On Unix: ~/.config/EzekiaReportAgent
func Dir() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		configDir = filepath.Join(os.Getenv("APPDATA"), appDirName)
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", appDirName)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load loads configuration from the default config path
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default config path
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.EzekiaBaseURL); err != nil {
		return fmt.Errorf("ezekia_base_url is invalid: %w", err)
	}

	switch c.CompletionProvider {
	case ProviderOpenAI:
		if c.OpenAIModel == "" {
			return fmt.Errorf("openai_model is required")
		}
	case ProviderVertexAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("google_cloud_project is required for the vertexai provider")
		}
		if c.GoogleCloudLocation == "" {
			return fmt.Errorf("google_cloud_location is required for the vertexai provider")
		}
	default:
		return fmt.Errorf("unknown completion_provider: %q", c.CompletionProvider)
	}

	if c.GoogleCredentialsPath != "" {
		if _, err := os.Stat(c.GoogleCredentialsPath); err != nil {
			return fmt.Errorf("google credentials file not found: %w", err)
		}
	}

	if c.Branding.LogoPath != "" {
		if _, err := os.Stat(c.Branding.LogoPath); err != nil {
			return fmt.Errorf("logo file not found: %w", err)
		}
	}

	if c.AssignmentLimit <= 0 || c.CandidateLimit <= 0 {
		return fmt.Errorf("assignment_limit and candidate_limit must be positive")
	}

	return nil
}
