package usecase

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"video_trend_ranker/internal/domain"
)

// ErrEmptyCredential is returned when a credential is blank after trimming
var ErrEmptyCredential = errors.New("api key must not be empty")

// CredentialManager stores the YouTube API key
type CredentialManager struct {
	repo domain.CredentialRepository

	mu       sync.RWMutex
	fallback string
}

// NewCredentialManager creates a new credential manager. fallback is used
// when nothing has been stored, typically the key from config or env.
func NewCredentialManager(repo domain.CredentialRepository, fallback string) *CredentialManager {
	return &CredentialManager{
		repo:     repo,
		fallback: strings.TrimSpace(fallback),
	}
}

// APIKey returns the active key, or "" when none is available
func (m *CredentialManager) APIKey() (string, error) {
	credential, err := m.repo.Get(domain.CredentialYouTube)
	if errors.Is(err, domain.ErrCredentialNotFound) {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load api key: %w", err)
	}
	return credential.Value, nil
}

// SetFallback replaces the key used when nothing has been stored
func (m *CredentialManager) SetFallback(fallback string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = strings.TrimSpace(fallback)
}

// HasKey reports whether a key is available
func (m *CredentialManager) HasKey() bool {
	key, err := m.APIKey()
	return err == nil && key != ""
}

// Set trims and persists the key
func (m *CredentialManager) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyCredential
	}

	credential := &domain.Credential{
		Name:  domain.CredentialYouTube,
		Value: value,
	}
	if err := m.repo.Save(credential); err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}

// Clear removes the stored key. The fallback key, if any, stays active.
func (m *CredentialManager) Clear() error {
	if err := m.repo.Delete(domain.CredentialYouTube); err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	return nil
}

// Masked returns the active key with all but its last four characters hidden
func (m *CredentialManager) Masked() (string, error) {
	key, err := m.APIKey()
	if err != nil {
		return "", err
	}
	return MaskKey(key), nil
}

// MaskKey hides all but the last four characters of key
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	runes := []rune(key)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
