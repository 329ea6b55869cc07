package postgres

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

var movementColumns = []string{"id", "article_id", "occurred_at", "description", "direction", "quantity", "unit_cost"}

// MovementRepo implementación del libro de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste el movimiento y le asigna el ID de la secuencia.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (article_id, occurred_at, description, direction, quantity, unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.ArticleID, m.OccurredAt, m.Description, string(m.Direction), m.Quantity, m.UnitCost,
	).Scan(&m.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	list, err := r.selectWhere(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (r *MovementRepo) ListByArticle(ctx context.Context, articleID int64) ([]entity.Movement, error) {
	return r.selectWhere(ctx, squirrel.Eq{"article_id": articleID})
}

func (r *MovementRepo) ListByArticleInRange(ctx context.Context, articleID int64, from, to time.Time) ([]entity.Movement, error) {
	return r.selectWhere(ctx, squirrel.And{
		squirrel.Eq{"article_id": articleID},
		squirrel.GtOrEq{"occurred_at": from},
		squirrel.LtOrEq{"occurred_at": to},
	})
}

func (r *MovementRepo) selectWhere(ctx context.Context, pred squirrel.Sqlizer) ([]entity.Movement, error) {
	query, args, err := psql.Select(movementColumns...).From("movements").Where(pred).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movement query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	out := []entity.Movement{}
	for rows.Next() {
		var (
			m   entity.Movement
			dir string
		)
		if err := rows.Scan(&m.ID, &m.ArticleID, &m.OccurredAt, &m.Description, &dir, &m.Quantity, &m.UnitCost); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Direction = entity.Direction(dir)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MovementRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MovementRepo) DeleteByArticle(ctx context.Context, articleID int64) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM movements WHERE article_id = $1`, articleID)
	if err != nil {
		return 0, fmt.Errorf("purge movements: %w", err)
	}
	return cmd.RowsAffected(), nil
}
