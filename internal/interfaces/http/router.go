package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/application/report"
	"github.com/jhoicas/kardex-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InventoryUC *inventory.InventoryUseCase
	ReportUC    *report.ReportUseCase
	Tokens      *jwt.Signer
	Location    *time.Location
	Logger      zerolog.Logger
	ServiceName string
}

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestID(), AccessLog(deps.Logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	// Todo /api requiere Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.Tokens))

	readers := RequireRole(RoleAdmin, RoleBodeguero, RoleConsulta)
	writers := RequireRole(RoleAdmin, RoleBodeguero)
	admins := RequireRole(RoleAdmin)

	categoryHandler := NewCategoryHandler(deps.InventoryUC)
	articleHandler := NewArticleHandler(deps.InventoryUC, deps.ReportUC)
	movementHandler := NewMovementHandler(deps.InventoryUC, deps.ReportUC)
	reportHandler := NewReportHandler(deps.ReportUC, deps.Location)

	// Categories: solo admin escribe; crear un artículo crea su categoría implícitamente.
	categories := api.Group("/categories")
	categories.Get("/", readers, categoryHandler.List)
	categories.Post("/", admins, categoryHandler.Create)
	categories.Put("/:name", admins, categoryHandler.Rename)
	categories.Delete("/:name", admins, categoryHandler.Delete)

	articles := api.Group("/articles")
	articles.Get("/", readers, articleHandler.List)
	articles.Post("/", writers, articleHandler.Create)
	articles.Get("/:id", readers, articleHandler.GetByID)
	articles.Put("/:id", writers, articleHandler.Update)
	articles.Delete("/:id", writers, articleHandler.Delete)
	articles.Get("/:id/movements", readers, movementHandler.List)
	articles.Post("/:id/movements", writers, movementHandler.Register)
	articles.Get("/:id/statement", readers, reportHandler.Statement)

	api.Delete("/movements/:id", writers, movementHandler.Delete)

	api.Get("/reports/detailed", readers, reportHandler.Detailed)
}
