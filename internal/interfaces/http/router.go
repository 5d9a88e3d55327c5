package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/taller-api/internal/application/catalog"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/inventory"
	"github.com/jhoicas/taller-api/internal/application/order"
	"github.com/jhoicas/taller-api/internal/application/payment"
	"github.com/jhoicas/taller-api/internal/application/sale"
	"github.com/jhoicas/taller-api/internal/application/ticket"
	"github.com/jhoicas/taller-api/internal/application/warranty"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/pkg/jwt"
)

// Receipts generador de comprobantes PDF de tickets y ventas.
type Receipts interface {
	ticket.ReceiptGenerator
	sale.ReceiptGenerator
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Tickets    *ticket.UseCase
	Orders     *order.UseCase
	Payments   *payment.UseCase
	Sales      *sale.UseCase
	Warranties *warranty.UseCase
	Inventory  *inventory.RegisterMovementUseCase
	// Replenishment lista de reposición de stock.
	Replenishment *inventory.ReplenishmentUseCase
	Products      *catalog.ProductUseCase
	Receipts      Receipts
	// WebSocket es opcional; sin él no se monta /ws.
	WebSocket func(*websocket.Conn)
	JWTSecret string
}

var (
	allRoles   = []entity.Role{entity.RoleTechnician, entity.RoleReception, entity.RoleAdmin}
	frontDesk  = []entity.Role{entity.RoleReception, entity.RoleAdmin}
	diagnosers = []entity.Role{entity.RoleTechnician, entity.RoleAdmin}
	adminOnly  = []entity.Role{entity.RoleAdmin}
)

// Router registra las rutas de la API. Todo /api va bajo JWT.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.WebSocket != nil {
		app.Use("/ws", wsUpgrade(deps.JWTSecret))
		app.Get("/ws", websocket.New(deps.WebSocket))
	}

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Tickets de retiro
	th := NewTicketHandler(deps.Tickets, deps.Receipts)
	tickets := api.Group("/tickets")
	tickets.Post("/", RequireRole(allRoles...), th.Create)
	tickets.Post("/validate", RequireRole(frontDesk...), th.Validate)
	tickets.Post("/expire", RequireRole(adminOnly...), th.Expire)
	tickets.Get("/:code", RequireRole(allRoles...), th.Get)
	tickets.Get("/:code/pdf", RequireRole(allRoles...), th.Receipt)
	tickets.Post("/:code/cancel", RequireRole(allRoles...), th.Cancel)

	// Órdenes de servicio. La transición valida el rol contra la tabla de permisos.
	oh := NewOrderHandler(deps.Orders)
	orders := api.Group("/orders")
	orders.Post("/", RequireRole(frontDesk...), oh.Create)
	orders.Get("/:id", RequireRole(allRoles...), oh.Get)
	orders.Get("/:id/history", RequireRole(allRoles...), oh.History)
	orders.Post("/:id/diagnosis", RequireRole(diagnosers...), oh.RecordDiagnosis)
	orders.Post("/:id/approval", RequireRole(frontDesk...), oh.RecordApproval)
	orders.Post("/:id/transition", RequireRole(allRoles...), oh.Transition)

	// Pagos y ventas
	api.Post("/payments", RequireRole(frontDesk...), NewPaymentHandler(deps.Payments).Record)
	sh := NewSaleHandler(deps.Sales, deps.Receipts)
	sales := api.Group("/sales", RequireRole(frontDesk...))
	sales.Post("/", sh.Create)
	sales.Get("/:id", sh.Get)
	sales.Get("/:id/pdf", sh.Receipt)

	api.Get("/warranties", RequireRole(allRoles...), NewWarrantyHandler(deps.Warranties).List)

	// Catálogo e inventario
	ph := NewProductHandler(deps.Products)
	api.Post("/products", RequireRole(adminOnly...), ph.Create)
	api.Get("/products/:id", RequireRole(allRoles...), ph.GetByID)
	api.Patch("/products/:id/active", RequireRole(adminOnly...), ph.SetActive)

	ih := NewInventoryHandler(deps.Inventory, deps.Replenishment)
	api.Post("/inventory/movements", RequireRole(frontDesk...), ih.RegisterMovement)
	api.Get("/inventory/replenishment-list", RequireRole(frontDesk...), ih.ReplenishmentList)
	api.Get("/products/:id/stock", RequireRole(allRoles...), ih.GetStock)
	api.Get("/products/:id/movements", RequireRole(allRoles...), ih.ListMovements)
}

// wsUpgrade exige upgrade de websocket y un JWT válido en ?token= (los navegadores
// no permiten cabeceras en el handshake).
func wsUpgrade(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID, _, err := jwt.Parse(secret, c.Query("token"))
		if err != nil || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}
