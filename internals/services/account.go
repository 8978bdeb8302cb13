package services

import (
	"context"
	"database/sql"
	"fmt"

	"Resource-Library/internals/dbx"
	"Resource-Library/internals/models"
	"Resource-Library/internals/repositories/resources"
	"Resource-Library/internals/repositories/users"

	"golang.org/x/crypto/bcrypt"
)

type AccountService struct {
	db         *sql.DB
	bcryptCost int
}

func NewAccountService(db *sql.DB, bcryptCost int) *AccountService {
	return &AccountService{db: db, bcryptCost: bcryptCost}
}

// View returns the user and the resources they created, newest first.
// An unknown user id yields common.ErrNotFound.
func (s *AccountService) View(ctx context.Context, userID int64) (*models.User, []models.Resource, error) {
	user, err := users.NewSQLiteRepository(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	items, err := resources.NewSQLiteRepository(s.db).ListByCreator(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, items, nil
}

// Update always sets the display name (empty clears it) and replaces the
// password only when a new one is given. Both writes commit together.
func (s *AccountService) Update(ctx context.Context, userID int64, displayName, password string) error {
	var hash []byte
	if password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := users.NewSQLiteRepository(tx)
		if err := repo.UpdateDisplayName(ctx, userID, displayName); err != nil {
			return err
		}
		if hash != nil {
			return repo.UpdatePasswordHash(ctx, userID, string(hash))
		}
		return nil
	})
}
