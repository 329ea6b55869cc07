package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	inv "github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// InventoryUseCase es la fachada de mutaciones: categorías, artículos y movimientos.
// Cada operación compuesta corre en una sola transacción vía TxRunner.
// No calcula costos: en salidas el llamador aporta el costo promedio vigente.
type InventoryUseCase struct {
	txRunner     TxRunner
	categoryRepo repository.CategoryRepository
	articleRepo  repository.ArticleRepository
	movementRepo repository.MovementRepository
	cache        repository.ValuationCache
	loc          *time.Location
	now          func() time.Time
	log          zerolog.Logger
}

// NewInventoryUseCase construye el caso de uso. loc es la zona horaria de los movimientos sin fecha.
func NewInventoryUseCase(
	txRunner TxRunner,
	categoryRepo repository.CategoryRepository,
	articleRepo repository.ArticleRepository,
	movementRepo repository.MovementRepository,
	cache repository.ValuationCache,
	loc *time.Location,
	log zerolog.Logger,
) *InventoryUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &InventoryUseCase{
		txRunner:     txRunner,
		categoryRepo: categoryRepo,
		articleRepo:  articleRepo,
		movementRepo: movementRepo,
		cache:        cache,
		loc:          loc,
		now:          time.Now,
		log:          log.With().Str("usecase", "inventory").Logger(),
	}
}

// SetClock reemplaza el reloj usado para movimientos sin fecha.
func (uc *InventoryUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// CreateArticleInput entrada para crear un artículo con su movimiento inicial.
type CreateArticleInput struct {
	Name       string
	Category   string
	Quantity   int64
	Cost       decimal.Decimal
	Barcode    string
	OccurredAt *time.Time
}

// UpdateArticleInput campos opcionales a modificar. Quantity y Cost son nominales.
type UpdateArticleInput struct {
	Name     *string
	Category *string
	Quantity *int64
	Cost     *decimal.Decimal
	Barcode  *string
}

// RegisterMovementInput entrada para registrar una línea del libro.
type RegisterMovementInput struct {
	ArticleID   int64
	Description string
	Direction   entity.Direction
	Quantity    int64
	UnitCost    decimal.Decimal
	OccurredAt  *time.Time
}

// ──────────────────────────────────────────────────────────────────────────────
// Artículos
// ──────────────────────────────────────────────────────────────────────────────

// CreateArticle crea la categoría si no existe, el artículo y su entrada inicial, todo o nada.
func (uc *InventoryUseCase) CreateArticle(ctx context.Context, in CreateArticleInput) (*dto.ArticleResponse, error) {
	name := strings.TrimSpace(in.Name)
	category := entity.NormalizeCategoryName(in.Category)
	if name == "" || category == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.timestamp(nil)
	article := &entity.Article{
		Name:      name,
		Category:  category,
		Quantity:  in.Quantity,
		Cost:      in.Cost,
		Barcode:   strings.TrimSpace(in.Barcode),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.txRunner.Run(ctx, func(
		categoryRepo repository.CategoryRepository,
		articleRepo repository.ArticleRepository,
		movementRepo repository.MovementRepository,
	) error {
		if err := ensureCategory(ctx, categoryRepo, category, now); err != nil {
			return err
		}
		if err := articleRepo.Create(ctx, article); err != nil {
			return err
		}
		return movementRepo.Create(ctx, &entity.Movement{
			ArticleID:   article.ID,
			OccurredAt:  uc.timestamp(in.OccurredAt),
			Description: entity.InitialMovementDescription,
			Direction:   entity.DirectionEntry,
			Quantity:    in.Quantity,
			UnitCost:    in.Cost,
		})
	})
	if err != nil {
		return nil, domain.Persistence("crear artículo", err)
	}
	uc.invalidate(ctx, article.ID)
	uc.log.Info().Int64("article_id", article.ID).Str("category", category).Msg("artículo creado")
	return toArticleResponse(article), nil
}

// UpdateArticle modifica los datos del artículo; crea la categoría destino si hace falta.
func (uc *InventoryUseCase) UpdateArticle(ctx context.Context, id int64, in UpdateArticleInput) (*dto.ArticleResponse, error) {
	var updated *entity.Article
	err := uc.txRunner.Run(ctx, func(
		categoryRepo repository.CategoryRepository,
		articleRepo repository.ArticleRepository,
		_ repository.MovementRepository,
	) error {
		article, err := articleRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if article == nil {
			return domain.ErrNotFound
		}
		now := uc.timestamp(nil)
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.ErrInvalidInput
			}
			article.Name = name
		}
		if in.Category != nil {
			category := entity.NormalizeCategoryName(*in.Category)
			if category == "" {
				return domain.ErrInvalidInput
			}
			if err := ensureCategory(ctx, categoryRepo, category, now); err != nil {
				return err
			}
			article.Category = category
		}
		if in.Quantity != nil {
			article.Quantity = *in.Quantity
		}
		if in.Cost != nil {
			article.Cost = *in.Cost
		}
		if in.Barcode != nil {
			article.Barcode = strings.TrimSpace(*in.Barcode)
		}
		article.UpdatedAt = now
		if err := articleRepo.Update(ctx, article); err != nil {
			return err
		}
		updated = article
		return nil
	})
	if err != nil {
		return nil, domain.Persistence("actualizar artículo", err)
	}
	return toArticleResponse(updated), nil
}

// GetArticle devuelve los datos nominales del artículo.
func (uc *InventoryUseCase) GetArticle(ctx context.Context, id int64) (*dto.ArticleResponse, error) {
	article, err := uc.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener artículo", err)
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}
	return toArticleResponse(article), nil
}

// DeleteArticle borra primero todos los movimientos y luego el artículo.
// Si la purga falla el artículo queda intacto.
func (uc *InventoryUseCase) DeleteArticle(ctx context.Context, id int64) error {
	var purged int64
	err := uc.txRunner.Run(ctx, func(
		_ repository.CategoryRepository,
		articleRepo repository.ArticleRepository,
		movementRepo repository.MovementRepository,
	) error {
		article, err := articleRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if article == nil {
			return domain.ErrNotFound
		}
		if purged, err = movementRepo.DeleteByArticle(ctx, id); err != nil {
			return err
		}
		return articleRepo.Delete(ctx, id)
	})
	if err != nil {
		return domain.Persistence("eliminar artículo", err)
	}
	uc.invalidate(ctx, id)
	uc.log.Info().Int64("article_id", id).Int64("movements", purged).Msg("artículo eliminado")
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

// RegisterMovement agrega una línea al libro del artículo.
// Cantidades cero o negativas se aceptan tal cual.
func (uc *InventoryUseCase) RegisterMovement(ctx context.Context, in RegisterMovementInput) (*dto.MovementResponse, error) {
	if !in.Direction.Valid() {
		return nil, domain.ErrInvalidInput
	}
	mov := &entity.Movement{
		ArticleID:   in.ArticleID,
		OccurredAt:  uc.timestamp(in.OccurredAt),
		Description: strings.TrimSpace(in.Description),
		Direction:   in.Direction,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
	}
	err := uc.txRunner.Run(ctx, func(
		_ repository.CategoryRepository,
		articleRepo repository.ArticleRepository,
		movementRepo repository.MovementRepository,
	) error {
		article, err := articleRepo.GetByID(ctx, in.ArticleID)
		if err != nil {
			return err
		}
		if article == nil {
			return domain.ErrNotFound
		}
		return movementRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, domain.Persistence("registrar movimiento", err)
	}
	uc.invalidate(ctx, in.ArticleID)
	uc.log.Debug().
		Int64("article_id", mov.ArticleID).
		Int64("movement_id", mov.ID).
		Str("direction", string(mov.Direction)).
		Int64("quantity", mov.Quantity).
		Msg("movimiento registrado")
	return toMovementResponse(mov), nil
}

// ListMovements devuelve el libro del artículo en el orden del motor de valoración.
func (uc *InventoryUseCase) ListMovements(ctx context.Context, articleID int64) ([]dto.MovementResponse, error) {
	article, err := uc.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, domain.Persistence("listar movimientos", err)
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}
	movs, err := uc.movementRepo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, domain.Persistence("listar movimientos", err)
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range inv.SortChronologically(movs) {
		out = append(out, *toMovementResponse(&m))
	}
	return out, nil
}

// DeleteMovement elimina una línea del libro.
func (uc *InventoryUseCase) DeleteMovement(ctx context.Context, id int64) error {
	var articleID int64
	err := uc.txRunner.Run(ctx, func(
		_ repository.CategoryRepository,
		_ repository.ArticleRepository,
		movementRepo repository.MovementRepository,
	) error {
		mov, err := movementRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		articleID = mov.ArticleID
		return movementRepo.Delete(ctx, id)
	})
	if err != nil {
		return domain.Persistence("eliminar movimiento", err)
	}
	uc.invalidate(ctx, articleID)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías
// ──────────────────────────────────────────────────────────────────────────────

// CreateCategory crea una categoría explícitamente.
func (uc *InventoryUseCase) CreateCategory(ctx context.Context, name string) (*dto.CategoryResponse, error) {
	name = entity.NormalizeCategoryName(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	category := &entity.Category{Name: name, CreatedAt: uc.timestamp(nil)}
	err := uc.txRunner.Run(ctx, func(
		categoryRepo repository.CategoryRepository,
		_ repository.ArticleRepository,
		_ repository.MovementRepository,
	) error {
		existing, err := categoryRepo.Get(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		return categoryRepo.Create(ctx, category)
	})
	if err != nil {
		return nil, domain.Persistence("crear categoría", err)
	}
	return toCategoryResponse(category), nil
}

// ListCategories lista las categorías por nombre.
func (uc *InventoryUseCase) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return nil, domain.Persistence("listar categorías", err)
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

// RenameCategory renombra la categoría y reasigna todos sus artículos.
func (uc *InventoryUseCase) RenameCategory(ctx context.Context, oldName, newName string) (*dto.CategoryResponse, error) {
	oldName = entity.NormalizeCategoryName(oldName)
	newName = entity.NormalizeCategoryName(newName)
	if oldName == "" || newName == "" {
		return nil, domain.ErrInvalidInput
	}
	var renamed *entity.Category
	err := uc.txRunner.Run(ctx, func(
		categoryRepo repository.CategoryRepository,
		_ repository.ArticleRepository,
		_ repository.MovementRepository,
	) error {
		current, err := categoryRepo.Get(ctx, oldName)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if oldName == newName {
			renamed = current
			return nil
		}
		target, err := categoryRepo.Get(ctx, newName)
		if err != nil {
			return err
		}
		if target != nil {
			return domain.ErrDuplicate
		}
		if err := categoryRepo.Rename(ctx, oldName, newName); err != nil {
			return err
		}
		renamed = &entity.Category{Name: newName, CreatedAt: current.CreatedAt}
		return nil
	})
	if err != nil {
		return nil, domain.Persistence("renombrar categoría", err)
	}
	uc.log.Info().Str("from", oldName).Str("to", newName).Msg("categoría renombrada")
	return toCategoryResponse(renamed), nil
}

// DeleteCategory elimina la categoría solo si ningún artículo la referencia.
func (uc *InventoryUseCase) DeleteCategory(ctx context.Context, name string) error {
	name = entity.NormalizeCategoryName(name)
	err := uc.txRunner.Run(ctx, func(
		categoryRepo repository.CategoryRepository,
		articleRepo repository.ArticleRepository,
		_ repository.MovementRepository,
	) error {
		existing, err := categoryRepo.Get(ctx, name)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		n, err := articleRepo.CountByCategory(ctx, name)
		if err != nil {
			return err
		}
		if n > 0 {
			return &domain.CategoryInUseError{Category: name, Articles: n}
		}
		return categoryRepo.Delete(ctx, name)
	})
	return domain.Persistence("eliminar categoría", err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func ensureCategory(ctx context.Context, repo repository.CategoryRepository, name string, now time.Time) error {
	existing, err := repo.Get(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return repo.Create(ctx, &entity.Category{Name: name, CreatedAt: now})
}

// timestamp devuelve t o la hora actual en la zona configurada, truncada a microsegundos.
func (uc *InventoryUseCase) timestamp(t *time.Time) time.Time {
	if t != nil {
		return t.Truncate(time.Microsecond)
	}
	return uc.now().In(uc.loc).Truncate(time.Microsecond)
}

// invalidate se llama después del commit; un fallo deja la entrada hasta que venza su TTL.
func (uc *InventoryUseCase) invalidate(ctx context.Context, articleID int64) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, articleID); err != nil {
		uc.log.Warn().Err(err).Int64("article_id", articleID).Msg("no se pudo invalidar la valoración en caché")
	}
}

func toArticleResponse(a *entity.Article) *dto.ArticleResponse {
	return &dto.ArticleResponse{
		ID:        a.ID,
		Name:      a.Name,
		Category:  a.Category,
		Quantity:  a.Quantity,
		Cost:      a.Cost,
		Barcode:   a.Barcode,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toMovementResponse(m *entity.Movement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:          m.ID,
		ArticleID:   m.ArticleID,
		OccurredAt:  m.OccurredAt,
		Description: m.Description,
		Direction:   string(m.Direction),
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		TotalCost:   m.Value(),
	}
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{Name: c.Name, CreatedAt: c.CreatedAt}
}
