// Package file loads application settings from a TOML config file,
// layered over built-in defaults and finished with environment values.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/athena-labs/athena-cli/internal/core/domain"
)

// ConfigFileName is the settings file looked up inside the config dir.
const ConfigFileName = "config.toml"

// DefaultConfigDir returns ~/.athena, the default location for the
// config file.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".athena"), nil
}

// LoadSettings builds the effective settings: defaults, then the TOML
// file if present, then environment variables. A missing config file is
// not an error; a malformed one is.
func LoadSettings(configDir string) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return settings, err
		}
		configDir = dir
	}

	path := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file yet, defaults apply.
	case err != nil:
		return settings, fmt.Errorf("read config %s: %w", path, err)
	default:
		// Unmarshal overlays only the keys present in the file.
		if err := toml.Unmarshal(data, &settings); err != nil {
			return settings, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&settings)
	return settings, nil
}

// applyEnv finishes settings with environment values. A .env file in
// the working directory is honoured but never required.
func applyEnv(settings *domain.Settings) {
	_ = godotenv.Load()

	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		settings.GeminiAPIKey = key
	}
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		settings.OllamaBaseURL = url
		settings.EmbeddingBaseURL = url
	}
}

// SaveSettings writes the settings to the config file, creating the
// directory if needed. The API key is never persisted.
func SaveSettings(configDir string, settings domain.Settings) error {
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	path := filepath.Join(configDir, ConfigFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
