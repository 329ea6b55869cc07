package report

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// ReportUseCase aplica el motor de valoración sobre muchos artículos: listado, reporte por período y kardex.
// Solo lee; la caché de valoraciones es opcional y nunca es fuente de verdad.
type ReportUseCase struct {
	articleRepo  repository.ArticleRepository
	movementRepo repository.MovementRepository
	cache        repository.ValuationCache
	log          zerolog.Logger
}

// NewReportUseCase construye el caso de uso. cache puede ser nil.
func NewReportUseCase(
	articleRepo repository.ArticleRepository,
	movementRepo repository.MovementRepository,
	cache repository.ValuationCache,
	log zerolog.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		articleRepo:  articleRepo,
		movementRepo: movementRepo,
		cache:        cache,
		log:          log.With().Str("usecase", "report").Logger(),
	}
}

// ListArticles valora cada artículo; category vacía lista todos. Resultado ordenado por ID.
func (uc *ReportUseCase) ListArticles(ctx context.Context, category string) ([]dto.ArticleSummary, error) {
	var (
		articles []*entity.Article
		err      error
	)
	if category = entity.NormalizeCategoryName(category); category == "" {
		articles, err = uc.articleRepo.List(ctx)
	} else {
		articles, err = uc.articleRepo.ListByCategory(ctx, category)
	}
	if err != nil {
		return nil, domain.Persistence("listar artículos", err)
	}
	slices.SortFunc(articles, func(a, b *entity.Article) int { return cmp.Compare(a.ID, b.ID) })

	out := make([]dto.ArticleSummary, 0, len(articles))
	for _, a := range articles {
		v, err := uc.valuation(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toSummary(a, v))
	}
	return out, nil
}

// ArticleSummary valora un solo artículo.
func (uc *ReportUseCase) ArticleSummary(ctx context.Context, id int64) (*dto.ArticleSummary, error) {
	a, err := uc.article(ctx, id)
	if err != nil {
		return nil, err
	}
	v, err := uc.valuation(ctx, id)
	if err != nil {
		return nil, err
	}
	s := toSummary(a, v)
	return &s, nil
}

// CurrentAverageCost es el costo que debe llevar una salida registrada ahora.
func (uc *ReportUseCase) CurrentAverageCost(ctx context.Context, id int64) (decimal.Decimal, error) {
	if _, err := uc.article(ctx, id); err != nil {
		return decimal.Zero, err
	}
	v, err := uc.valuation(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return v.AverageCost, nil
}

// DetailedReport resume entradas, salidas y costo promedio de cada artículo dentro de [Start, End].
// El costo promedio se calcula solo con los movimientos del período.
func (uc *ReportUseCase) DetailedReport(ctx context.Context, q dto.ReportQuery) ([]dto.PeriodSummary, error) {
	if q.Start.After(q.End) {
		return nil, &domain.InvalidRangeError{Start: q.Start, End: q.End}
	}

	var articles []*entity.Article
	if q.ArticleID != nil {
		a, err := uc.articleRepo.GetByID(ctx, *q.ArticleID)
		if err != nil {
			return nil, domain.Persistence("reporte detallado", err)
		}
		if a != nil {
			articles = append(articles, a)
		}
	} else {
		list, err := uc.articleRepo.List(ctx)
		if err != nil {
			return nil, domain.Persistence("reporte detallado", err)
		}
		articles = list
	}
	slices.SortFunc(articles, func(a, b *entity.Article) int { return cmp.Compare(a.ID, b.ID) })

	out := make([]dto.PeriodSummary, 0, len(articles))
	for _, a := range articles {
		movs, err := uc.movementRepo.ListByArticleInRange(ctx, a.ID, q.Start, q.End)
		if err != nil {
			return nil, domain.Persistence("reporte detallado", err)
		}
		entries, exits := inventory.TotalsByDirection(movs)
		out = append(out, dto.PeriodSummary{
			ArticleID:      a.ID,
			Name:           a.Name,
			Category:       a.Category,
			TotalEntries:   entries,
			TotalExits:     exits,
			ExitPercentage: ExitPercentage(entries, exits),
			AverageCost:    inventory.Valuate(movs).AverageCost,
		})
	}
	uc.log.Debug().
		Time("start", q.Start).
		Time("end", q.End).
		Int("articles", len(out)).
		Msg("reporte detallado generado")
	return out, nil
}

// Statement devuelve el kardex del artículo con acumulados por línea.
func (uc *ReportUseCase) Statement(ctx context.Context, id int64) (*dto.StatementResponse, error) {
	a, err := uc.article(ctx, id)
	if err != nil {
		return nil, err
	}
	movs, err := uc.movementRepo.ListByArticle(ctx, id)
	if err != nil {
		return nil, domain.Persistence("kardex", err)
	}
	lines := inventory.Statement(movs)
	resp := &dto.StatementResponse{
		Article: toSummary(a, inventory.Valuate(movs)),
		Lines:   make([]dto.StatementLine, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.StatementLine{
			MovementID:      l.Movement.ID,
			OccurredAt:      l.Movement.OccurredAt,
			Description:     l.Movement.Description,
			Direction:       string(l.Movement.Direction),
			Quantity:        l.Movement.Quantity,
			UnitCost:        l.Movement.UnitCost,
			MovementValue:   l.MovementValue,
			RunningQuantity: l.RunningQuantity,
			AverageCost:     l.AverageCost,
			StockValue:      l.StockValue,
		})
	}
	return resp, nil
}

// ExitPercentage = exits / entries * 100 redondeado a 4 decimales; 0 si no hubo entradas.
func ExitPercentage(entries, exits int64) decimal.Decimal {
	if entries == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(exits).Mul(hundred).DivRound(decimal.NewFromInt(entries), 4)
}

// NewReportQuery interpreta fechas YYYY-MM-DD en loc. El fin incluye el día completo.
func NewReportQuery(start, end string, articleID *int64, loc *time.Location) (dto.ReportQuery, error) {
	if loc == nil {
		loc = time.UTC
	}
	from, err := time.ParseInLocation(dateLayout, start, loc)
	if err != nil {
		return dto.ReportQuery{}, fmt.Errorf("%w: fecha de inicio %q", domain.ErrInvalidInput, start)
	}
	to, err := time.ParseInLocation(dateLayout, end, loc)
	if err != nil {
		return dto.ReportQuery{}, fmt.Errorf("%w: fecha de fin %q", domain.ErrInvalidInput, end)
	}
	return dto.ReportQuery{
		Start:     from,
		End:       to.Add(24*time.Hour - time.Microsecond),
		ArticleID: articleID,
	}, nil
}

func (uc *ReportUseCase) article(ctx context.Context, id int64) (*entity.Article, error) {
	a, err := uc.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener artículo", err)
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

// valuation consulta la caché y, si no hay entrada o falla, recalcula desde el libro.
// Solo guarda bajo la generación leída antes del libro; si Get falló no guarda nada.
func (uc *ReportUseCase) valuation(ctx context.Context, articleID int64) (inventory.Valuation, error) {
	var (
		gen       int64
		cacheable bool
	)
	if uc.cache != nil {
		v, g, found, err := uc.cache.Get(ctx, articleID)
		switch {
		case err != nil:
			uc.log.Warn().Err(err).Int64("article_id", articleID).Msg("caché de valoración no disponible")
		case found:
			return v, nil
		default:
			gen, cacheable = g, true
		}
	}
	movs, err := uc.movementRepo.ListByArticle(ctx, articleID)
	if err != nil {
		return inventory.Valuation{}, domain.Persistence("valorar artículo", err)
	}
	v := inventory.Valuate(movs)
	if cacheable {
		if err := uc.cache.Set(ctx, articleID, gen, v); err != nil {
			uc.log.Warn().Err(err).Int64("article_id", articleID).Msg("no se pudo guardar la valoración en caché")
		}
	}
	return v, nil
}

func toSummary(a *entity.Article, v inventory.Valuation) dto.ArticleSummary {
	return dto.ArticleSummary{
		ID:              a.ID,
		Name:            a.Name,
		Category:        a.Category,
		CurrentQuantity: v.Quantity,
		AverageCost:     v.AverageCost,
		StockValue:      v.StockValue,
		Barcode:         a.Barcode,
	}
}
