package config

import (
	"fmt"
	"log/slog"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name in the OS keychain
const KeyringService = "code-sentiment-heatmap"

// Keychain item names
const (
	ItemGitHubToken = "github-token"
	ItemOpenAIKey   = "openai-api-key"
	ItemGeminiKey   = "gemini-api-key"
)

// KeyringItems lists every item the configure command manages
var KeyringItems = []string{ItemGitHubToken, ItemOpenAIKey, ItemGeminiKey}

// KeyringManager handles secure credential storage in OS keychain
type KeyringManager struct {
	logger *slog.Logger
}

// NewKeyringManager creates a new keyring manager
func NewKeyringManager() *KeyringManager {
	return &KeyringManager{
		logger: slog.Default().With("component", "keyring"),
	}
}

// Set stores a secret. Empty values are rejected.
func (km *KeyringManager) Set(item, secret string) error {
	if secret == "" {
		return fmt.Errorf("%s cannot be empty", item)
	}

	if err := keyring.Set(KeyringService, item, secret); err != nil {
		km.logger.Error("failed to save secret to keychain", "item", item, "error", err)
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}

	km.logger.Info("secret saved to keychain", "item", item)
	return nil
}

// Get retrieves a secret. A missing item returns "" and no error.
func (km *KeyringManager) Get(item string) (string, error) {
	secret, err := keyring.Get(KeyringService, item)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		km.logger.Debug("failed to read secret from keychain", "item", item, "error", err)
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	return secret, nil
}

// Delete removes a secret. Deleting a missing item is not an error.
func (km *KeyringManager) Delete(item string) error {
	err := keyring.Delete(KeyringService, item)
	if err == keyring.ErrNotFound {
		return nil
	}
	if err != nil {
		km.logger.Error("failed to delete secret from keychain", "item", item, "error", err)
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}
	km.logger.Info("secret deleted from keychain", "item", item)
	return nil
}

// IsAvailable checks if OS keychain is available.
// Returns false on headless systems (CI) where no keychain exists.
func (km *KeyringManager) IsAvailable() bool {
	_, err := keyring.Get(KeyringService, "test-availability")
	if err == nil || err == keyring.ErrNotFound {
		return true
	}
	km.logger.Debug("keychain not available", "error", err)
	return false
}

// MaskSecret masks a secret for display: first 7 and last 4 characters
func MaskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) < 12 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", secret[:7], secret[len(secret)-4:])
}
