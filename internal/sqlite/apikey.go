package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ganot/todos/internal/identity"
	"github.com/ganot/todos/internal/repository"
)

// APIKeyRepository stores hashed API keys and resolves them to user IDs
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Add stores the hash of token for userID
func (r *APIKeyRepository) Add(ctx context.Context, token, userID, description string) error {
	query := `
		INSERT INTO api_keys (key_hash, user_id, created_at, description)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, HashToken(token), userID, time.Now().UTC(), description)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// Resolve implements identity.Resolver
func (r *APIKeyRepository) Resolve(ctx context.Context, token string) (string, error) {
	hash := HashToken(token)

	var userID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && userID == "") {
		return "", identity.ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	// Best effort; a failed touch must not reject a valid key.
	_, _ = r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash)

	return userID, nil
}

// HashToken returns the hex sha256 of token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
