package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/report"
)

// ReportHandler expone el kardex y el reporte detallado (protegido, solo lectura).
type ReportHandler struct {
	uc  *report.ReportUseCase
	loc *time.Location
}

// NewReportHandler construye el handler. loc es la zona en que se interpretan las fechas del query.
func NewReportHandler(uc *report.ReportUseCase, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{uc: uc, loc: loc}
}

// Statement godoc
// @Summary      Kardex del artículo
// @Description  Movimientos en orden cronológico con cantidad, costo promedio y valor acumulados.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del artículo"
// @Success      200  {object}  dto.StatementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/articles/{id}/statement [get]
func (h *ReportHandler) Statement(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.uc.Statement(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Detailed godoc
// @Summary      Reporte detallado por período
// @Description  Entradas, salidas, porcentaje de salida y costo promedio del período por artículo.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start       query  string  true   "Inicio YYYY-MM-DD"
// @Param        end         query  string  true   "Fin YYYY-MM-DD (inclusive)"
// @Param        article_id  query  int     false  "Filtrar por artículo"
// @Success      200  {object}  dto.DetailedReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/detailed [get]
func (h *ReportHandler) Detailed(c *fiber.Ctx) error {
	articleID, ok := queryID(c, "article_id")
	if !ok {
		return badParam(c, "article_id")
	}
	q, err := report.NewReportQuery(c.Query("start"), c.Query("end"), articleID, h.loc)
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.uc.DetailedReport(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	if items == nil {
		items = []dto.PeriodSummary{}
	}
	return c.JSON(dto.DetailedReportResponse{Start: q.Start, End: q.End, Items: items})
}
