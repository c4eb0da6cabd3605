package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"finsmart/internal/core"
	"finsmart/internal/log"
	"finsmart/internal/records"
	"finsmart/internal/store"
)

type AccountService struct {
	tables TableStore
	hasher PasswordHasher
	logger *log.Logger
}

func NewAccountService(tables TableStore, hasher PasswordHasher, logger *log.Logger) *AccountService {
	if logger == nil {
		logger = log.Discard()
	}
	return &AccountService{tables: tables, hasher: hasher, logger: logger.WithComponent(log.ComponentAccount)}
}

// Signup registers a new user. Nothing is written when the email is
// already taken or a field is invalid.
func (s *AccountService) Signup(ctx context.Context, email, password string, budget decimal.Decimal) error {
	if password == "" {
		return fmt.Errorf("%w: password", core.ErrMissingField)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	users := s.tables.Load(ctx, records.Users)
	users, err = store.AppendUser(users, core.User{Email: email, PasswordHash: hash, TotalBudget: budget})
	if err != nil {
		s.logger.InfoContext(ctx, "Signup rejected", log.FieldUser, email, log.FieldError, err)
		return err
	}
	if err := s.tables.Save(ctx, users); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "User signed up", log.FieldUser, email, log.FieldOperation, log.OpSignup)
	return nil
}

// Login checks the credentials and returns the stored user.
func (s *AccountService) Login(ctx context.Context, email, password string) (core.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return core.User{}, fmt.Errorf("%w: email and password", core.ErrMissingField)
	}
	u, ok := store.FindUser(s.tables.Load(ctx, records.Users), email)
	if !ok {
		return core.User{}, core.ErrUnknownEmail
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		s.logger.WarnContext(ctx, "Login failed", log.FieldUser, email, "error_type", log.ErrorTypeAuth)
		return core.User{}, core.ErrWrongPassword
	}
	s.logger.InfoContext(ctx, "User logged in", log.FieldUser, email, log.FieldOperation, log.OpLogin)
	return u, nil
}

// User returns the stored profile for email.
func (s *AccountService) User(ctx context.Context, email string) (core.User, bool) {
	return store.FindUser(s.tables.Load(ctx, records.Users), email)
}
