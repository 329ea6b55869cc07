package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación de CategoryRepository sobre SQLite (usable con db o tx).
type CategoryRepo struct {
	q DBTX
}

// NewCategoryRepository construye el adaptador.
func NewCategoryRepository(q DBTX) *CategoryRepo {
	return &CategoryRepo{q: q}
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO categories (name, created_at) VALUES (?, ?)`, c.Name, toMicros(c.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) Get(ctx context.Context, name string) (*entity.Category, error) {
	var (
		c       entity.Category
		created int64
	)
	err := r.q.QueryRowContext(ctx, `SELECT name, created_at FROM categories WHERE name = ?`, name).Scan(&c.Name, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	c.CreatedAt = fromMicros(created)
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []*entity.Category
	for rows.Next() {
		var (
			c       entity.Category
			created int64
		)
		if err := rows.Scan(&c.Name, &created); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.CreatedAt = fromMicros(created)
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Rename inserta el nombre nuevo, reasigna los artículos y borra el anterior.
// Llamar dentro de TxRunner para que sea atómico.
func (r *CategoryRepo) Rename(ctx context.Context, oldName, newName string) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO categories (name, created_at) SELECT ?, created_at FROM categories WHERE name = ?`,
		newName, oldName)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("rename category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.ExecContext(ctx, `UPDATE articles SET category = ? WHERE category = ?`, newName, oldName); err != nil {
		return fmt.Errorf("repoint articles: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, oldName); err != nil {
		return fmt.Errorf("delete old category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, name string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
