package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/report"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// MovementHandler maneja las peticiones HTTP del libro de movimientos (protegido).
type MovementHandler struct {
	uc      *inventory.InventoryUseCase
	reports *report.ReportUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.InventoryUseCase, reports *report.ReportUseCase) *MovementHandler {
	return &MovementHandler{uc: uc, reports: reports}
}

// List godoc
// @Summary      Listar movimientos de un artículo
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del artículo"
// @Success      200  {object}  dto.ListResponse[dto.MovementResponse]
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/articles/{id}/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	out, err := h.uc.ListMovements(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(out))
}

// Register godoc
// @Summary      Registrar movimiento
// @Description  direction: entry|exit. En salidas sin unit_cost se usa el costo promedio vigente.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                          true  "ID del artículo"
// @Param        body  body  dto.RegisterMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/articles/{id}/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	direction, err := entity.ParseDirection(in.Direction)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	var unitCost decimal.Decimal
	switch {
	case in.UnitCost != nil:
		unitCost = *in.UnitCost
	case direction.IsEntry():
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "unit_cost es requerido en entradas"})
	default:
		unitCost, err = h.reports.CurrentAverageCost(c.UserContext(), id)
		if err != nil {
			return writeError(c, err)
		}
	}

	out, err := h.uc.RegisterMovement(c.UserContext(), inventory.RegisterMovementInput{
		ArticleID:   id,
		Description: in.Description,
		Direction:   direction,
		Quantity:    in.Quantity,
		UnitCost:    unitCost,
		OccurredAt:  in.OccurredAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Delete godoc
// @Summary      Eliminar movimiento
// @Tags         movements
// @Security     Bearer
// @Param        id   path  int  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	if err := h.uc.DeleteMovement(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
