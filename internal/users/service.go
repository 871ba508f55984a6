package users

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"time"
)

// Default activation parameters.
const (
	DefaultActivationTTL  = 10 * time.Minute
	DefaultHashCost       = 10
	ActivationCodeMin     = 100000
	DefaultActivationSpan = 900000
)

// UserStore persists users. Lookups report absence with ErrNotFound.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPhone(ctx context.Context, phone int64) (*User, error)
	Create(ctx context.Context, record UserRecord) (*User, error)
	ListAll(ctx context.Context) ([]User, error)
}

// Hasher produces one-way password hashes.
type Hasher interface {
	Hash(plaintext string, cost int) (string, error)
}

// Signer produces signed, expiring tokens carrying arbitrary claims.
type Signer interface {
	Sign(claims map[string]any, secret string, expiresIn time.Duration) (string, error)
}

// ActivationNotifier receives freshly issued activation codes.
type ActivationNotifier interface {
	NotifyActivation(ctx context.Context, pending PendingRegistration, code int) error
}

// Config tunes the registration workflow.
type Config struct {
	ActivationSecret string
	ActivationTTL    time.Duration
	// ActivationCodeSpan is the width of the code range starting at ActivationCodeMin.
	// Spans above DefaultActivationSpan are clamped so codes stay six digits.
	ActivationCodeSpan int
	HashCost           int
}

func (c Config) withDefaults() Config {
	if c.ActivationTTL <= 0 {
		c.ActivationTTL = DefaultActivationTTL
	}
	if c.ActivationCodeSpan <= 0 || c.ActivationCodeSpan > DefaultActivationSpan {
		c.ActivationCodeSpan = DefaultActivationSpan
	}
	if c.HashCost <= 0 {
		c.HashCost = DefaultHashCost
	}
	return c
}

// Service implements registration, login and listing.
type Service struct {
	store    UserStore
	hasher   Hasher
	signer   Signer
	notifier ActivationNotifier
	cfg      Config
	logger   *slog.Logger
	codeFn   func(span int) (int, error)
}

// NewService builds Service instance. A nil notifier falls back to logging.
func NewService(store UserStore, hasher Hasher, signer Signer, notifier ActivationNotifier, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Service{
		store:    store,
		hasher:   hasher,
		signer:   signer,
		notifier: notifier,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		codeFn:   randomCode,
	}
}

// Register checks uniqueness, hashes the password and issues an activation
// token. The user is not persisted.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if _, err := s.store.FindByPhone(ctx, in.PhoneNumber); err == nil {
		return nil, ErrDuplicatePhone
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(in.Password, s.cfg.HashCost)
	if err != nil {
		return nil, err
	}

	pending := PendingRegistration{
		Name:        in.Name,
		Email:       in.Email,
		Password:    hashed,
		PhoneNumber: in.PhoneNumber,
	}

	code, err := s.codeFn(s.cfg.ActivationCodeSpan)
	if err != nil {
		return nil, err
	}

	token, err := s.signer.Sign(map[string]any{
		"user":           pending,
		"activationCode": code,
	}, s.cfg.ActivationSecret, s.cfg.ActivationTTL)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyActivation(ctx, pending, code); err != nil {
		s.logger.Warn("activation notify failed", slog.String("email", pending.Email), slog.Any("error", err))
	}

	return &RegisterResult{User: pending, Token: token, ActivationCode: code}, nil
}

// Login returns the submitted credentials unchanged. Credential verification
// is not implemented.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginInput, error) {
	if err := in.Validate(); err != nil {
		return LoginInput{}, err
	}
	return in, nil
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	list, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []User{}
	}
	return list, nil
}

func randomCode(span int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(span)))
	if err != nil {
		return 0, err
	}
	return ActivationCodeMin + int(n.Int64()), nil
}
