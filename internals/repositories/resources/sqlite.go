package resources

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"Resource-Library/internals/common"
	"Resource-Library/internals/dbx"
	"Resource-Library/internals/models"
)

const (
	columns     = `r.id, r.title, r.type, r.description, r.link, r.created_by, r.created_at`
	newestFirst = `ORDER BY r.created_at DESC, r.id DESC`
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResource(s scanner, extra ...any) (*models.Resource, error) {
	var (
		res         models.Resource
		description sql.NullString
		link        sql.NullString
		createdBy   sql.NullInt64
		createdAt   sql.NullTime
	)
	dest := append([]any{&res.ID, &res.Title, &res.Type, &description, &link, &createdBy, &createdAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	res.Description = description.String
	res.Link = link.String
	if createdBy.Valid {
		id := createdBy.Int64
		res.CreatedBy = &id
	}
	res.CreatedAt = createdAt.Time
	return &res, nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Resource, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Resource, 0)
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) List(ctx context.Context, query string) ([]models.Resource, error) {
	pattern := "%"
	if query != "" {
		pattern = "%" + query + "%"
	}
	return r.list(ctx,
		`SELECT `+columns+` FROM resources r WHERE r.title LIKE ? OR r.description LIKE ? `+newestFirst,
		pattern, pattern)
}

func (r *SQLiteRepository) ListByCreator(ctx context.Context, userID int64) ([]models.Resource, error) {
	return r.list(ctx,
		`SELECT `+columns+` FROM resources r WHERE r.created_by = ? `+newestFirst, userID)
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.Resource, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM resources r WHERE r.id = ?`, id)
	res, err := scanResource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return res, nil
}

// GetDetail left-joins the creator, so orphaned or NULL creators give an
// empty Author rather than an error.
func (r *SQLiteRepository) GetDetail(ctx context.Context, id int64) (*models.ResourceDetail, error) {
	var author sql.NullString
	row := r.db.QueryRowContext(ctx,
		`SELECT `+columns+`, u.username FROM resources r LEFT JOIN users u ON r.created_by = u.id WHERE r.id = ?`, id)
	res, err := scanResource(row, &author)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &models.ResourceDetail{Resource: *res, Author: author.String}, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, in models.ResourceInput, createdBy *int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO resources (title, type, description, link, created_by) VALUES (?, ?, ?, ?, ?)`,
		in.Title, in.Type, in.Description, in.Link, createdBy)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, in models.ResourceInput) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE resources SET title = ?, type = ?, description = ?, link = ? WHERE id = ?`,
		in.Title, in.Type, in.Description, in.Link, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
