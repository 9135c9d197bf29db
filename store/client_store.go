// api/store/client_store.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"cardlink/api/models"
)

type ClientStore struct {
	db *sql.DB
}

// NewClientStore creates a new ClientStore instance.
func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{db: db}
}

// CreateClient inserts a new client account into the database.
func (s *ClientStore) CreateClient(ctx context.Context, email string, hashedPassword []byte) (*models.Client, error) {
	client := &models.Client{}
	query := `
		INSERT INTO clients (email, hashed_password)
		VALUES ($1, $2)
		RETURNING id, email, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, email, hashedPassword).Scan(
		&client.ID,
		&client.Email,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		if err.Error() == `pq: duplicate key value violates unique constraint "idx_clients_email"` ||
			err.Error() == `pq: duplicate key value violates unique constraint "clients_email_key"` {
			return nil, fmt.Errorf("client with email '%s' already exists", email)
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	log.Printf("Client created in DB: ID=%d, Email=%s", client.ID, client.Email)
	return client, nil
}

func (s *ClientStore) GetClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	client := &models.Client{}
	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM clients
		WHERE email = $1;
	`
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&client.ID,
		&client.Email,
		&client.HashedPassword,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("client with email '%s' not found", email)
		}
		return nil, fmt.Errorf("failed to get client by email: %w", err)
	}

	return client, nil
}
