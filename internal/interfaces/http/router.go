package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/suministros-api/internal/application/inventory"
	"github.com/jhoicas/suministros-api/internal/application/request"
	"github.com/jhoicas/suministros-api/internal/application/usecase"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
	"github.com/jhoicas/suministros-api/internal/infrastructure/broadcast"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InventoryUC *inventory.UseCase
	RequestUC   *request.UseCase
	UserUC      *usecase.UserUseCase
	AuditRepo   repository.AuditRepository
	Registry    *broadcast.Registry
	Log         *logger.Logger
	JWTSecret   string
}

// Router registra las rutas de la API. Toda la API exige Bearer Token; el RBAC
// por ruta se aplica con RequireRole (superadmin pasa cualquier verificación).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Inventario: lectura para todos los roles, mutación para admin.
	items := api.Group("/items")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	items.Get("/", inventoryHandler.List)
	items.Get("/low-stock", inventoryHandler.ListLowStock)
	items.Get("/:id", inventoryHandler.GetByID)
	items.Post("/", RequireRole(entity.RoleAdmin), inventoryHandler.Create)
	items.Put("/:id", RequireRole(entity.RoleAdmin), inventoryHandler.Update)
	items.Post("/:id/restock", RequireRole(entity.RoleAdmin), inventoryHandler.Restock)
	items.Put("/:id/quantity", RequireRole(entity.RoleAdmin), inventoryHandler.SetQuantity)
	items.Post("/:id/archive", RequireRole(entity.RoleAdmin), inventoryHandler.Archive)
	items.Post("/:id/unarchive", RequireRole(entity.RoleAdmin), inventoryHandler.Unarchive)

	// Solicitudes de insumos: staff crea, admin decide.
	requests := api.Group("/requests")
	requestHandler := NewRequestHandler(deps.RequestUC)
	requests.Post("/", requestHandler.Create)
	requests.Get("/", requestHandler.List)
	requests.Post("/:id/approve", RequireRole(entity.RoleAdmin), requestHandler.Approve)
	requests.Post("/:id/reject", RequireRole(entity.RoleAdmin), requestHandler.Reject)
	requests.Post("/:id/deliver", RequireRole(entity.RoleAdmin), requestHandler.Deliver)

	// Cuentas: administración con lock de edición.
	users := api.Group("/users", RequireRole(entity.RoleAdmin))
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/", RequireRole(entity.RoleSuperAdmin), userHandler.Create)
	users.Put("/:id", userHandler.Update)
	users.Post("/:id/archive", RequireRole(entity.RoleSuperAdmin), userHandler.Archive)
	users.Post("/:id/lock", userHandler.Lock)
	users.Delete("/:id/lock", userHandler.Unlock)

	// Auditoría (solo admin).
	auditHandler := NewAuditHandler(deps.AuditRepo)
	api.Get("/audit", RequireRole(entity.RoleAdmin), auditHandler.List)

	// Eventos en vivo para la UI (SSE).
	eventsHandler := NewEventsHandler(deps.Registry, deps.Log)
	api.Get("/events/stream", eventsHandler.Stream)
}
