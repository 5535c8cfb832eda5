package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i9parcerias/demandas/internal/apperr"
)

// Repository provê acesso à tabela de usuários.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere um novo usuário; e-mail duplicado vira ErrConflict.
func (r *Repository) Create(ctx context.Context, input CreateInput, senhaHash string) (*User, error) {
	const query = `
        INSERT INTO users (name, email, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, name, email, password_hash, role, created_at
    `

	row := r.pool.QueryRow(ctx, query, input.Name, input.Email, senhaHash, input.Role)
	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

// GetByEmail busca usuário pelo e-mail (login).
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, created_at
        FROM users
        WHERE lower(email) = lower($1)
    `
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetByID busca usuário pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, created_at
        FROM users
        WHERE id = $1
    `
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetRole resolve apenas o papel de um usuário, usado na troca de responsável.
func (r *Repository) GetRole(ctx context.Context, id int64) (string, error) {
	const query = `SELECT role FROM users WHERE id = $1`

	var role string
	if err := r.pool.QueryRow(ctx, query, id).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.ErrNotFound
		}
		return "", err
	}
	return role, nil
}

// ListVisible lista usuários segundo o escopo do ator:
// ADMIN enxerga todos; SUPERVISOR enxerga a si e ao backoffice; BACKOFFICE só a si.
func (r *Repository) ListVisible(ctx context.Context, actor Actor) ([]User, error) {
	base := `
        SELECT id, name, email, password_hash, role, created_at
        FROM users`

	var (
		query string
		args  []any
	)

	switch actor.Role {
	case RoleSupervisor:
		query = base + ` WHERE id = $1 OR role = $2 ORDER BY name ASC`
		args = []any{actor.ID, RoleBackoffice}
	case RoleBackoffice:
		query = base + ` WHERE id = $1 ORDER BY name ASC`
		args = []any{actor.ID}
	default:
		query = base + ` ORDER BY name ASC`
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return users, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.SenhaHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
