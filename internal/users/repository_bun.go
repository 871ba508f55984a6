package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS users (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL UNIQUE,
	password     TEXT NOT NULL,
	phone_number INTEGER NOT NULL UNIQUE,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull"`
	Email       string    `bun:"email,notnull,unique"`
	Password    string    `bun:"password,notnull"`
	PhoneNumber int64     `bun:"phone_number,notnull,unique"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

func (m *userModel) toUser() *User {
	return &User{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Password:    m.Password,
		PhoneNumber: m.PhoneNumber,
		CreatedAt:   m.CreatedAt,
	}
}

// BunStore is a UserStore over bun, used with SQLite for local runs and tests.
type BunStore struct {
	db bun.IDB
}

// NewBunStore constructs a bun backed store.
func NewBunStore(db bun.IDB) *BunStore {
	return &BunStore{db: db}
}

// Migrate creates the users table when missing.
func (s *BunStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)
	return err
}

// FindByEmail fetches a user by email.
func (s *BunStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, "email = ?", email)
}

// FindByPhone fetches a user by phone number.
func (s *BunStore) FindByPhone(ctx context.Context, phone int64) (*User, error) {
	return s.findOne(ctx, "phone_number = ?", phone)
}

func (s *BunStore) findOne(ctx context.Context, where string, arg any) (*User, error) {
	model := new(userModel)
	err := s.db.NewSelect().Model(model).Where(where, arg).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return model.toUser(), nil
}

// Create inserts a user. Unique violations surface as duplicate errors.
func (s *BunStore) Create(ctx context.Context, record UserRecord) (*User, error) {
	model := &userModel{
		Name:        record.Name,
		Email:       record.Email,
		Password:    record.Password,
		PhoneNumber: record.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(model).Returning("id").Exec(ctx); err != nil {
		return nil, mapSQLiteConstraint(err)
	}
	return model.toUser(), nil
}

// ListAll returns all users ordered by id.
func (s *BunStore) ListAll(ctx context.Context) ([]User, error) {
	var models []userModel
	if err := s.db.NewSelect().Model(&models).Order("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	users := make([]User, len(models))
	for i := range models {
		users[i] = *models[i].toUser()
	}
	return users, nil
}

func mapSQLiteConstraint(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: users.email"):
		return ErrDuplicateEmail
	case strings.Contains(msg, "UNIQUE constraint failed: users.phone_number"):
		return ErrDuplicatePhone
	}
	return err
}

var _ UserStore = (*BunStore)(nil)
