package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"video_trend_ranker/internal/domain"
)

// CredentialRepository is a SQLite implementation of domain.CredentialRepository.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new CredentialRepository backed by SQLite.
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Get returns the named credential or domain.ErrCredentialNotFound.
func (r *CredentialRepository) Get(name string) (*domain.Credential, error) {
	var credential domain.Credential
	err := r.db.QueryRow(`SELECT name, value, updated_at FROM credentials WHERE name = ?`, name).
		Scan(&credential.Name, &credential.Value, &credential.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	return &credential, nil
}

// Save inserts or replaces a credential.
func (r *CredentialRepository) Save(credential *domain.Credential) error {
	credential.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(`INSERT INTO credentials (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`, credential.Name, credential.Value, credential.UpdatedAt)
	return err
}

// Delete removes a credential.
func (r *CredentialRepository) Delete(name string) error {
	_, err := r.db.Exec(`DELETE FROM credentials WHERE name = ?`, name)
	return err
}
