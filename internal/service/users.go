// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/ledgerline/site/internal/auth"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/store"
)

// UserInput is the editable part of a user. On update, empty fields and a
// nil Password keep their stored values.
type UserInput struct {
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	Password *string `json:"password,omitempty"`
}

// UserService manages accounts and checks logins.
type UserService struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(db *sql.DB, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{queries: store.New(db), logger: logger}
}

// Authenticate checks email and password. Unknown emails cost the same as a
// wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (store.User, error) {
	email = normalizeEmail(email)
	u, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		auth.CheckPasswordMissingUser(password)
		return store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, err
	}

	ok, err := auth.CheckPassword(password, u.PasswordHash)
	if err != nil || !ok {
		return store.User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if auth.NeedsRehash(u.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{ID: u.ID, PasswordHash: hash, UpdatedAt: now}); err != nil {
				s.logger.Warn("password rehash failed", "category", model.EventCategoryAuth, "user_id", u.ID, "error", err)
			}
		}
	}
	if err := s.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		ID: u.ID, LastLoginAt: sql.NullTime{Time: now, Valid: true},
	}); err != nil {
		return u, err
	}
	u.LastLoginAt = sql.NullTime{Time: now, Valid: true}
	return u, nil
}

// List returns every user ordered by name.
func (s *UserService) List(ctx context.Context) ([]store.User, error) {
	users, err := s.queries.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []store.User{}
	}
	return users, nil
}

// Get returns user id or ErrNotFound.
func (s *UserService) Get(ctx context.Context, id int64) (store.User, error) {
	u, err := s.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return u, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u, err
}

// Create adds an account. A password is required.
func (s *UserService) Create(ctx context.Context, in UserInput) (store.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Role == "" {
		in.Role = model.RoleEditor
	}

	ve := &ValidationError{}
	s.validateUser(ctx, ve, in, 0)
	if in.Password == nil {
		ve.Add("password", "is required")
	} else if err := auth.ValidatePassword(*in.Password); err != nil {
		ve.Add("password", err.Error())
	}
	if err := ve.Err(); err != nil {
		return store.User{}, err
	}

	hash, err := auth.HashPassword(*in.Password)
	if err != nil {
		return store.User{}, err
	}
	now := time.Now().UTC()
	u, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email: in.Email, PasswordHash: hash, Role: in.Role, Name: in.Name,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		return u, fmt.Errorf("creating user: %w", err)
	}
	s.logger.Info("user created", "category", model.EventCategoryUser, "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Update changes an account. The last admin cannot be demoted.
func (s *UserService) Update(ctx context.Context, id int64, in UserInput) (store.User, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return existing, err
	}

	if strings.TrimSpace(in.Email) == "" {
		in.Email = existing.Email
	}
	in.Email = normalizeEmail(in.Email)
	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		in.Name = existing.Name
	}
	if in.Role == "" {
		in.Role = existing.Role
	}

	ve := &ValidationError{}
	s.validateUser(ctx, ve, in, id)
	if in.Password != nil {
		if err := auth.ValidatePassword(*in.Password); err != nil {
			ve.Add("password", err.Error())
		}
	}
	if err := ve.Err(); err != nil {
		return existing, err
	}

	if existing.Role == model.RoleAdmin && in.Role != model.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return existing, err
		}
	}

	now := time.Now().UTC()
	u, err := s.queries.UpdateUser(ctx, store.UpdateUserParams{
		ID: id, Email: in.Email, Role: in.Role, Name: in.Name, UpdatedAt: now,
	})
	if err != nil {
		return u, fmt.Errorf("updating user %d: %w", id, err)
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return u, err
		}
		if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{ID: id, PasswordHash: hash, UpdatedAt: now}); err != nil {
			return u, err
		}
	}
	return u, nil
}

// Delete removes user id on behalf of actorID.
func (s *UserService) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrSelfDelete
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == model.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}
	owned, err := s.queries.CountContentByAuthor(ctx, id)
	if err != nil {
		return err
	}
	if owned > 0 {
		return fmt.Errorf("user %d owns %d items: %w", id, owned, ErrUserHasContent)
	}
	if err := s.queries.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	s.logger.Info("user deleted", "category", model.EventCategoryUser, "user_id", id, "by", actorID)
	return nil
}

func (s *UserService) ensureAnotherAdmin(ctx context.Context) error {
	n, err := s.queries.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func (s *UserService) validateUser(ctx context.Context, ve *ValidationError, in UserInput, excludeID int64) {
	if in.Name == "" {
		ve.Add("name", "is required")
	}
	if !model.IsValidRole(in.Role) {
		ve.Add("role", "must be admin or editor")
	}
	if in.Email == "" {
		ve.Add("email", "is required")
		return
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		ve.Add("email", "must be a valid email address")
		return
	}

	var (
		n   int64
		err error
	)
	if excludeID == 0 {
		n, err = s.queries.EmailExists(ctx, in.Email)
	} else {
		n, err = s.queries.EmailExistsExcluding(ctx, store.EmailExistsExcludingParams{Email: in.Email, ID: excludeID})
	}
	if err != nil {
		s.logger.Error("checking email", "error", err)
		ve.Add("email", "could not be checked")
		return
	}
	if n > 0 {
		ve.Add("email", "already exists")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
