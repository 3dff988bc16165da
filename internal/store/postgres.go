package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talkport/mailfeed/internal/models"
)

// Postgres implements UserStore on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// Migrate creates the users table. Tokens are never stored; credentials are
// transient by design.
func (p *Postgres) Migrate(ctx context.Context) error {
	migrationSQL := `
		CREATE TABLE IF NOT EXISTS users (
		    id UUID PRIMARY KEY,
		    google_id VARCHAR(64) NOT NULL,
		    name VARCHAR(255),
		    email VARCHAR(255) NOT NULL UNIQUE,
		    linked_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_users_linked_at ON users(linked_at);
	`
	if _, err := p.pool.Exec(ctx, migrationSQL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (p *Postgres) SaveUser(ctx context.Context, user models.UserRecord) error {
	insertSQL := `
		INSERT INTO users (id, google_id, name, email, linked_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
		    google_id = EXCLUDED.google_id,
		    name = EXCLUDED.name,
		    linked_at = EXCLUDED.linked_at
	`
	if _, err := p.pool.Exec(ctx, insertSQL, user.ID, user.GoogleID, user.Name, user.Email, user.LinkedAt); err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.Email, err)
	}
	return nil
}

func (p *Postgres) ListUsers(ctx context.Context) ([]models.UserRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, google_id, name, email, linked_at FROM users ORDER BY linked_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.UserRecord
	for rows.Next() {
		var u models.UserRecord
		if err := rows.Scan(&u.ID, &u.GoogleID, &u.Name, &u.Email, &u.LinkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user rows: %w", err)
	}
	return users, nil
}

func (p *Postgres) DeleteUser(ctx context.Context, email string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM users WHERE email = $1`, email); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", email, err)
	}
	return nil
}
