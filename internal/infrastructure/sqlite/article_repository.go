package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo implementación de ArticleRepository sobre SQLite (usable con db o tx).
type ArticleRepo struct {
	q DBTX
}

// NewArticleRepository construye el adaptador.
func NewArticleRepository(q DBTX) *ArticleRepo {
	return &ArticleRepo{q: q}
}

// Create persiste el artículo; el ID es el rowid asignado por SQLite.
func (r *ArticleRepo) Create(ctx context.Context, a *entity.Article) error {
	query, args, err := sq.Insert("articles").
		Columns("name", "category", "quantity", "cost", "barcode", "created_at", "updated_at").
		Values(a.Name, a.Category, a.Quantity, a.Cost, a.Barcode, toMicros(a.CreatedAt), toMicros(a.UpdatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert article: %w", err)
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("article id: %w", err)
	}
	a.ID = id
	return nil
}

func (r *ArticleRepo) GetByID(ctx context.Context, id int64) (*entity.Article, error) {
	list, err := r.selectWhere(ctx, squirrel.Eq{"id": id})
	if err != nil || len(list) == 0 {
		return nil, err
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
	qb := sq.Select("id", "name", "category", "quantity", "cost", "barcode", "created_at", "updated_at").
		From("articles").
		OrderBy("id")
	if pred != nil {
		qb = qb.Where(pred)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()
	var out []*entity.Article
	for rows.Next() {
		var (
			a                entity.Article
			created, updated int64
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Category, &a.Quantity, &a.Cost, &a.Barcode, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.CreatedAt, a.UpdatedAt = fromMicros(created), fromMicros(updated)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *ArticleRepo) Update(ctx context.Context, a *entity.Article) error {
	query, args, err := sq.Update("articles").
		SetMap(map[string]any{
			"name":       a.Name,
			"category":   a.Category,
			"quantity":   a.Quantity,
			"cost":       a.Cost,
			"barcode":    a.Barcode,
			"updated_at": toMicros(a.UpdatedAt),
		}).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update article: %w", err)
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("update article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ArticleRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("delete article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ArticleRepo) CountByCategory(ctx context.Context, category string) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE category = ?`, category).Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}
