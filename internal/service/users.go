// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/pileoffame-go/internal/auth"
	"github.com/olegiv/pileoffame-go/internal/model"
	"github.com/olegiv/pileoffame-go/internal/store"
	"github.com/olegiv/pileoffame-go/internal/util"
)

// Errors returned by UserService.
var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrDuplicateUser      = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserService handles account registration and credential checks.
type UserService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewUserService creates a UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db, queries: store.New(db)}
}

// RegisterInput holds the fields for Register.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates an account and appends its CULT_JOIN event in one
// transaction. Usernames are slug-normalized so profile URLs stay
// clean; the display name starts as the submitted username.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (store.User, error) {
	username := util.Slugify(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return store.User{}, ErrMissingFields
	}

	taken, err := s.queries.CountUsersByEmailOrUsername(ctx, email, username)
	if err != nil {
		return store.User{}, fmt.Errorf("checking for existing user: %w", err)
	}
	if taken > 0 {
		return store.User{}, ErrDuplicateUser
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return store.User{}, fmt.Errorf("hashing password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.User{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	now := time.Now().UTC()

	user, err := qtx.CreateUser(ctx, store.CreateUserParams{
		Username:     username,
		Email:        email,
		Name:         in.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The unique indexes close the check-then-insert race.
		return store.User{}, ErrDuplicateUser
	}

	if _, err := WriteEvent(ctx, qtx, WriteEventInput{
		Type:       model.EventCultJoin,
		UserID:     user.ID,
		EntityType: model.EntityUser,
		EntityID:   fmt.Sprintf("%d", user.ID),
		Metadata:   model.CultJoinMetadata(user.Username),
		CreatedAt:  now,
	}); err != nil {
		return store.User{}, fmt.Errorf("writing cult join event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return store.User{}, fmt.Errorf("committing registration: %w", err)
	}
	return user, nil
}

// Authenticate verifies an email/password pair and returns the account.
// The same error comes back for an unknown email and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return store.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns an account by ID.
func (s *UserService) Get(ctx context.Context, id int64) (store.User, error) {
	return s.queries.GetUserByID(ctx, id)
}
