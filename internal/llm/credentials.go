package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/pdfwatch/pdfwatch/internal/common"
)

const (
	keyringService = "pdfwatch"
	keyringUser    = "anthropic-api-key"
)

// credentialFile is the on-disk fallback relative to the config directory.
const credentialFile = "credentials.json"

// LoadAPIKey resolves the Anthropic API key: environment variable first,
// then the system keyring, then the persisted credential file. Without a
// key the classification-dependent stages are disabled entirely.
func LoadAPIKey(configDir string) (string, error) {
	if key := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); key != "" {
		return key, nil
	}

	if key, err := keyring.Get(keyringService, keyringUser); err == nil {
		if key = strings.TrimSpace(key); key != "" {
			return key, nil
		}
	} else if !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, keyring.ErrUnsupportedPlatform) {
		// Keyring broken is not fatal; fall through to the file.
		_ = err
	}

	if key := readCredentialFile(configDir); key != "" {
		return key, nil
	}

	return "", common.ErrMissingAPIKey
}

// StoreAPIKey persists the key to the system keyring, falling back to a
// mode-0600 credential file when no keyring backend is available.
func StoreAPIKey(configDir, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("empty api key")
	}

	if err := keyring.Set(keyringService, keyringUser, key); err == nil {
		return "system keyring", nil
	}

	if err := writeCredentialFile(configDir, key); err != nil {
		return "", err
	}
	return filepath.Join(configDir, credentialFile), nil
}

type credentialPayload struct {
	AnthropicAPIKey string `json:"anthropic_api_key"`
}

func readCredentialFile(configDir string) string {
	data, err := os.ReadFile(filepath.Join(configDir, credentialFile))
	if err != nil {
		return ""
	}
	var payload credentialPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.AnthropicAPIKey)
}

func writeCredentialFile(configDir, key string) error {
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(credentialPayload{AnthropicAPIKey: key}, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(configDir, credentialFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}
