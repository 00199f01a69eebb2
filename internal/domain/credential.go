package domain

import (
	"errors"
	"time"
)

// ErrCredentialNotFound is returned when no credential is stored under a name
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialYouTube is the name the YouTube API key is stored under
const CredentialYouTube = "youtube_api_key"

// Credential is an opaque secret passed through to an upstream API
type Credential struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}

// CredentialRepository defines the interface for credential persistence
type CredentialRepository interface {
	// Get returns the credential or ErrCredentialNotFound
	Get(name string) (*Credential, error)

	// Save creates or replaces a credential
	Save(credential *Credential) error

	// Delete removes a credential. Deleting a missing credential is not an error.
	Delete(name string) error
}
