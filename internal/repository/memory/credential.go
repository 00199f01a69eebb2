package memory

import (
	"sync"
	"time"

	"video_trend_ranker/internal/domain"
)

// CredentialRepository is an in-memory implementation of CredentialRepository
type CredentialRepository struct {
	mu          sync.RWMutex
	credentials map[string]domain.Credential
}

// NewCredentialRepository creates a new in-memory credential repository
func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{
		credentials: make(map[string]domain.Credential),
	}
}

// Get returns a copy of the named credential
func (r *CredentialRepository) Get(name string) (*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	credential, ok := r.credentials[name]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return &credential, nil
}

// Save creates or replaces a credential
func (r *CredentialRepository) Save(credential *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	credential.UpdatedAt = time.Now()
	r.credentials[credential.Name] = *credential
	return nil
}

// Delete removes a credential
func (r *CredentialRepository) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.credentials, name)
	return nil
}
