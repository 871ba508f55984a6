package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// Constraint names follow the Postgres defaults for inline UNIQUE columns.
const (
	pgEmailConstraint = "users_email_key"
	pgPhoneConstraint = "users_phone_number_key"
)

const pgSchema = `CREATE TABLE IF NOT EXISTS users (
	id           BIGSERIAL PRIMARY KEY,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL UNIQUE,
	password     TEXT NOT NULL,
	phone_number BIGINT NOT NULL UNIQUE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const userColumns = `id, name, email, password, phone_number, created_at`

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PGStore is the PostgreSQL UserStore.
type PGStore struct {
	db dbtx
}

// NewPGStore constructs a PostgreSQL backed store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{db: pool}
}

// Migrate creates the users table when missing.
func (s *PGStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, pgSchema)
	return err
}

// FindByEmail fetches a user by email.
func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByPhone fetches a user by phone number.
func (s *PGStore) FindByPhone(ctx context.Context, phone int64) (*User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = $1`, phone)
	return scanUser(row)
}

// Create inserts a user. Unique violations surface as duplicate errors.
func (s *PGStore) Create(ctx context.Context, record UserRecord) (*User, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password, phone_number) VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		record.Name, record.Email, record.Password, record.PhoneNumber,
	)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			switch pgErr.ConstraintName {
			case pgEmailConstraint:
				return nil, ErrDuplicateEmail
			case pgPhoneConstraint:
				return nil, ErrDuplicatePhone
			}
		}
		return nil, err
	}
	return user, nil
}

// ListAll returns all users ordered by id.
func (s *PGStore) ListAll(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.PhoneNumber, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.PhoneNumber, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

var _ UserStore = (*PGStore)(nil)
