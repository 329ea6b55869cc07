package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre SQLite (usable con db o tx).
type MovementRepo struct {
	q DBTX
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q DBTX) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste el movimiento; el ID es el rowid asignado por SQLite.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query, args, err := sq.Insert("movements").
		Columns("article_id", "occurred_at", "description", "direction", "quantity", "unit_cost").
		Values(m.ArticleID, toMicros(m.OccurredAt), m.Description, string(m.Direction), m.Quantity, m.UnitCost).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("movement id: %w", err)
	}
	m.ID = id
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	list, err := r.selectWhere(ctx, squirrel.Eq{"id": id})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[0], nil
}

func (r *MovementRepo) ListByArticle(ctx context.Context, articleID int64) ([]entity.Movement, error) {
	return r.selectWhere(ctx, squirrel.Eq{"article_id": articleID})
}

func (r *MovementRepo) ListByArticleInRange(ctx context.Context, articleID int64, from, to time.Time) ([]entity.Movement, error) {
	return r.selectWhere(ctx, squirrel.And{
		squirrel.Eq{"article_id": articleID},
		squirrel.GtOrEq{"occurred_at": toMicros(from)},
		squirrel.LtOrEq{"occurred_at": toMicros(to)},
	})
}

func (r *MovementRepo) selectWhere(ctx context.Context, pred squirrel.Sqlizer) ([]entity.Movement, error) {
	query, args, err := sq.Select("id", "article_id", "occurred_at", "description", "direction", "quantity", "unit_cost").
		From("movements").
		Where(pred).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movement query: %w", err)
	}
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	out := []entity.Movement{}
	for rows.Next() {
		var (
			m        entity.Movement
			occurred int64
			dir      string
		)
		if err := rows.Scan(&m.ID, &m.ArticleID, &occurred, &m.Description, &dir, &m.Quantity, &m.UnitCost); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.OccurredAt = fromMicros(occurred)
		m.Direction = entity.Direction(dir)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MovementRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM movements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MovementRepo) DeleteByArticle(ctx context.Context, articleID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM movements WHERE article_id = ?`, articleID)
	if err != nil {
		return 0, fmt.Errorf("purge movements: %w", err)
	}
	return res.RowsAffected()
}
