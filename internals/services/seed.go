package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"Resource-Library/internals/common"
	"Resource-Library/internals/dbx"
	"Resource-Library/internals/models"
	"Resource-Library/internals/repositories/resources"
	"Resource-Library/internals/repositories/users"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	DemoUsername    = "demo"
	DemoPassword    = "password123"
	DemoDisplayName = "Demo User"
)

var demoResources = []models.ResourceInput{
	{Title: "Understanding JavaScript Promises", Type: "article", Description: "A gentle guide to promises", Link: "https://example.com/promises"},
	{Title: "Intro to Databases", Type: "book", Description: "Basics of SQL and NoSQL", Link: "https://example.com/databases"},
	{Title: "Advanced CSS Techniques", Type: "article", Description: "Grid, Flexbox and more", Link: ""},
}

// Seed inserts the demo account when there are no users and the demo
// resources when there are no resources. Running it again changes nothing.
func Seed(ctx context.Context, db *sql.DB, bcryptCost int, log logrus.FieldLogger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userRepo := users.NewSQLiteRepository(tx)
		resourceRepo := resources.NewSQLiteRepository(tx)

		n, err := userRepo.Count(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			if _, err := userRepo.Create(ctx, &models.User{
				Username:     DemoUsername,
				PasswordHash: string(hash),
				DisplayName:  DemoDisplayName,
			}); err != nil {
				return err
			}
			log.WithField("username", DemoUsername).Infof("Created demo user -> username: %s, password: %s", DemoUsername, DemoPassword)
		}

		n, err = resourceRepo.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		var owner *int64
		demo, err := userRepo.GetByUsername(ctx, DemoUsername)
		switch {
		case err == nil:
			owner = &demo.ID
		case !errors.Is(err, common.ErrNotFound):
			return err
		}
		for _, in := range demoResources {
			if _, err := resourceRepo.Create(ctx, in, owner); err != nil {
				return err
			}
		}
		log.WithField("count", len(demoResources)).Info("Seeded demo resources")
		return nil
	})
}
