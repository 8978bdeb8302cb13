// Package services holds the application logic behind the HTTP handlers.
// Each service owns the library *sql.DB and binds repositories to it, or to
// a transaction when an operation spans several statements.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"Resource-Library/internals/common"
	"Resource-Library/internals/dbx"
	"Resource-Library/internals/models"
	"Resource-Library/internals/repositories/users"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	db         *sql.DB
	bcryptCost int

	// compared against when the username is unknown, so both failure
	// paths cost one bcrypt comparison
	dummyHash []byte
}

func NewAuthService(db *sql.DB, bcryptCost int) (*AuthService, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt: %w", err)
	}
	return &AuthService{db: db, bcryptCost: bcryptCost, dummyHash: dummy}, nil
}

// Register creates an account. It returns common.ErrMissingFields when the
// username or password is empty and common.ErrUserExists when the username
// is taken.
func (s *AuthService) Register(ctx context.Context, username, password, displayName string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, common.ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := users.NewSQLiteRepository(tx)
		exists, err := repo.Exists(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrUserExists
		}
		user, err = repo.Create(ctx, &models.User{
			Username:     username,
			PasswordHash: string(hash),
			DisplayName:  displayName,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials. Unknown usernames and wrong passwords both
// return common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := users.NewSQLiteRepository(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}
