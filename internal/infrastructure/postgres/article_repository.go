package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

var articleColumns = []string{"id", "name", "category", "quantity", "cost", "barcode", "created_at", "updated_at"}

// ArticleRepo implementación de ArticleRepository sobre PostgreSQL (usable con pool o tx).
type ArticleRepo struct {
	q Querier
}

// NewArticleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewArticleRepository(q Querier) *ArticleRepo {
	return &ArticleRepo{q: q}
}

// Create persiste el artículo y le asigna el ID generado por la secuencia.
func (r *ArticleRepo) Create(ctx context.Context, a *entity.Article) error {
	query := `
		INSERT INTO articles (name, category, quantity, cost, barcode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		a.Name, a.Category, a.Quantity, a.Cost, a.Barcode, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (r *ArticleRepo) GetByID(ctx context.Context, id int64) (*entity.Article, error) {
	list, err := r.selectWhere(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (r *ArticleRepo) List(ctx context.Context) ([]*entity.Article, error) {
	return r.selectWhere(ctx, nil)
}

func (r *ArticleRepo) ListByCategory(ctx context.Context, category string) ([]*entity.Article, error) {
	return r.selectWhere(ctx, squirrel.Eq{"category": category})
}

func (r *ArticleRepo) selectWhere(ctx context.Context, pred squirrel.Sqlizer) ([]*entity.Article, error) {
	qb := psql.Select(articleColumns...).From("articles").OrderBy("id")
	if pred != nil {
		qb = qb.Where(pred)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()
	var out []*entity.Article
	for rows.Next() {
		var a entity.Article
		if err := rows.Scan(&a.ID, &a.Name, &a.Category, &a.Quantity, &a.Cost, &a.Barcode, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *ArticleRepo) Update(ctx context.Context, a *entity.Article) error {
	query := `
		UPDATE articles SET name = $2, category = $3, quantity = $4, cost = $5, barcode = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, a.ID, a.Name, a.Category, a.Quantity, a.Cost, a.Barcode, a.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("update article: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ArticleRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("delete article: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ArticleRepo) CountByCategory(ctx context.Context, category string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM articles WHERE category = $1`, category).Scan(&n)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}
