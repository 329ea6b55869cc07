package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/report"
)

// ArticleHandler maneja las peticiones HTTP de artículos (protegido).
// Escrituras por el facade de inventario; lecturas valoradas por el servicio de reportes.
type ArticleHandler struct {
	uc      *inventory.InventoryUseCase
	reports *report.ReportUseCase
}

// NewArticleHandler construye el handler.
func NewArticleHandler(uc *inventory.InventoryUseCase, reports *report.ReportUseCase) *ArticleHandler {
	return &ArticleHandler{uc: uc, reports: reports}
}

// List godoc
// @Summary      Listar artículos valorados
// @Tags         articles
// @Security     Bearer
// @Produce      json
// @Param        category  query  string  false  "Filtrar por categoría"
// @Success      200  {object}  dto.ListResponse[dto.ArticleSummary]
// @Router       /api/articles [get]
func (h *ArticleHandler) List(c *fiber.Ctx) error {
	out, err := h.reports.ListArticles(c.UserContext(), c.Query("category"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(out))
}

// Create godoc
// @Summary      Crear artículo
// @Description  Crea la categoría si no existe y registra la entrada inicial con quantity y cost.
// @Tags         articles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateArticleRequest  true  "Datos del artículo"
// @Success      201   {object}  dto.ArticleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/articles [post]
func (h *ArticleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateArticleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateArticle(c.UserContext(), inventory.CreateArticleInput{
		Name:       in.Name,
		Category:   in.Category,
		Quantity:   in.Quantity,
		Cost:       in.Cost,
		Barcode:    in.Barcode,
		OccurredAt: in.OccurredAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener artículo valorado
// @Tags         articles
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del artículo"
// @Success      200  {object}  dto.ArticleSummary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/articles/{id} [get]
func (h *ArticleHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.reports.ArticleSummary(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar artículo
// @Description  quantity y cost son nominales: no alteran la valoración.
// @Tags         articles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                       true  "ID del artículo"
// @Param        body  body  dto.UpdateArticleRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.ArticleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/articles/{id} [put]
func (h *ArticleHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var in dto.UpdateArticleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateArticle(c.UserContext(), id, inventory.UpdateArticleInput{
		Name:     in.Name,
		Category: in.Category,
		Quantity: in.Quantity,
		Cost:     in.Cost,
		Barcode:  in.Barcode,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar artículo y su libro de movimientos
// @Tags         articles
// @Security     Bearer
// @Param        id   path  int  true  "ID del artículo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/articles/{id} [delete]
func (h *ArticleHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	if err := h.uc.DeleteArticle(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
