package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docgate/docgate/internal/model"
)

// Common errors for service key repository operations.
var (
	ErrServiceKeyNotFound = errors.New("service key not found")
)

// CreateServiceKey inserts a new service key into the database.
func (r *Repository) CreateServiceKey(ctx context.Context, key *model.ServiceKey) error {
	query := `
		INSERT INTO service_keys (id, name, key_hash, key_prefix, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		key.ID,
		key.Name,
		key.KeyHash,
		key.KeyPrefix,
		key.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create service key: %w", err)
	}

	return nil
}

// GetServiceKeysByPrefix retrieves all active service keys matching a prefix.
// Used during authentication to find candidate keys for verification.
func (r *Repository) GetServiceKeysByPrefix(ctx context.Context, prefix string) ([]*model.ServiceKey, error) {
	query := `
		SELECT id, name, key_hash, key_prefix, revoked_at, created_at
		FROM service_keys
		WHERE key_prefix = $1 AND revoked_at IS NULL
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get service keys by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*model.ServiceKey
	for rows.Next() {
		key := &model.ServiceKey{}
		if err := rows.Scan(&key.ID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.RevokedAt, &key.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating service keys: %w", err)
	}

	return keys, nil
}

// RevokeServiceKey revokes a service key by setting revoked_at.
func (r *Repository) RevokeServiceKey(ctx context.Context, id string) error {
	query := `
		UPDATE service_keys
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke service key: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrServiceKeyNotFound
	}

	return nil
}
