package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/dulcerialilis/lilis-api/internal/application/analytics"
	"github.com/dulcerialilis/lilis-api/internal/application/auth"
	"github.com/dulcerialilis/lilis-api/internal/application/inventory"
	"github.com/dulcerialilis/lilis-api/internal/application/purchasing"
	"github.com/dulcerialilis/lilis-api/internal/application/usecase"
	"github.com/dulcerialilis/lilis-api/internal/domain/access"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	Authorizer      *auth.Authorizer
	UserUC          *usecase.UserUseCase
	RoleUC          *usecase.RoleUseCase
	SupplierUC      *usecase.SupplierUseCase
	ProductUC       *usecase.ProductUseCase
	CatalogUC       *usecase.CatalogUseCase
	WarehouseUC     *usecase.WarehouseUseCase
	MovementUC      *inventory.MovementUseCase
	AlertUC         *inventory.AlertUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	OrderUC         *purchasing.OrderUseCase
	DashboardUC     *appanalytics.DashboardUseCase
	JWTSecret       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	authn := AuthMiddleware(deps.JWTSecret, deps.AuthUC)
	can := func(mod access.Module, act access.Action) fiber.Handler {
		return RequirePermission(mod, act, deps.Authorizer)
	}

	// Auth (público salvo logout)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Authorizer)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/password-reset", authHandler.RequestReset)
	authGroup.Post("/password-reset/confirm", authHandler.ConfirmReset)
	authGroup.Post("/logout", authn, authHandler.Logout)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", authn)
	protected.Get("/me/permissions", authHandler.Permissions)

	// Users y roles
	userHandler := NewUserHandler(deps.UserUC, deps.RoleUC)
	users := protected.Group("/users")
	users.Get("/export", can(access.ModuleUsers, access.ActionExport), userHandler.Export)
	users.Get("/", can(access.ModuleUsers, access.ActionView), userHandler.List)
	users.Post("/", can(access.ModuleUsers, access.ActionCreate), userHandler.Create)
	users.Get("/:id", can(access.ModuleUsers, access.ActionView), userHandler.GetByID)
	users.Put("/:id", can(access.ModuleUsers, access.ActionEdit), userHandler.Update)
	users.Patch("/:id/status", can(access.ModuleUsers, access.ActionEdit), userHandler.ChangeStatus)
	users.Delete("/:id", can(access.ModuleUsers, access.ActionDelete), userHandler.Delete)
	users.Post("/:id/photo", can(access.ModuleUsers, access.ActionEdit), userHandler.UploadPhoto)

	roles := protected.Group("/roles")
	roles.Get("/", can(access.ModuleUsers, access.ActionView), userHandler.ListRoles)
	roles.Put("/:id/permissions", can(access.ModuleUsers, access.ActionEdit), userHandler.UpdateRolePermissions)

	// Suppliers
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers := protected.Group("/suppliers")
	suppliers.Get("/export", can(access.ModuleSuppliers, access.ActionExport), supplierHandler.Export)
	suppliers.Get("/search", can(access.ModuleSuppliers, access.ActionView), supplierHandler.Search)
	suppliers.Get("/", can(access.ModuleSuppliers, access.ActionView), supplierHandler.List)
	suppliers.Post("/", can(access.ModuleSuppliers, access.ActionCreate), supplierHandler.Create)
	suppliers.Get("/:id", can(access.ModuleSuppliers, access.ActionView), supplierHandler.GetByID)
	suppliers.Put("/:id", can(access.ModuleSuppliers, access.ActionEdit), supplierHandler.Update)
	suppliers.Patch("/:id/status", can(access.ModuleSuppliers, access.ActionEdit), supplierHandler.ChangeStatus)
	suppliers.Delete("/:id", can(access.ModuleSuppliers, access.ActionDelete), supplierHandler.Delete)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/export", can(access.ModuleProducts, access.ActionExport), productHandler.Export)
	products.Get("/search", can(access.ModuleProducts, access.ActionView), productHandler.Search)
	products.Get("/", can(access.ModuleProducts, access.ActionView), productHandler.List)
	products.Post("/", can(access.ModuleProducts, access.ActionCreate), productHandler.Create)
	products.Get("/:id", can(access.ModuleProducts, access.ActionView), productHandler.GetByID)
	products.Put("/:id", can(access.ModuleProducts, access.ActionEdit), productHandler.Update)
	products.Patch("/:id/status", can(access.ModuleProducts, access.ActionEdit), productHandler.ChangeStatus)
	products.Delete("/:id", can(access.ModuleProducts, access.ActionDelete), productHandler.Delete)
	products.Post("/:id/image", can(access.ModuleProducts, access.ActionEdit), productHandler.UploadImage)

	// Catálogo
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	protected.Get("/categories", can(access.ModuleProducts, access.ActionView), catalogHandler.ListCategories)
	protected.Post("/categories", can(access.ModuleProducts, access.ActionCreate), catalogHandler.CreateCategory)
	protected.Patch("/categories/:id/status", can(access.ModuleProducts, access.ActionEdit), catalogHandler.SetCategoryStatus)
	protected.Get("/brands", can(access.ModuleProducts, access.ActionView), catalogHandler.ListBrands)
	protected.Post("/brands", can(access.ModuleProducts, access.ActionCreate), catalogHandler.CreateBrand)
	protected.Patch("/brands/:id/status", can(access.ModuleProducts, access.ActionEdit), catalogHandler.SetBrandStatus)
	protected.Get("/units", can(access.ModuleProducts, access.ActionView), catalogHandler.ListUnits)
	protected.Post("/units", can(access.ModuleProducts, access.ActionCreate), catalogHandler.CreateUnit)
	protected.Get("/lots", can(access.ModuleInventory, access.ActionView), catalogHandler.ListLots)
	protected.Post("/lots", can(access.ModuleInventory, access.ActionCreate), catalogHandler.CreateLot)

	// Warehouses
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses := protected.Group("/warehouses")
	warehouses.Get("/search", can(access.ModuleInventory, access.ActionView), warehouseHandler.Search)
	warehouses.Get("/", can(access.ModuleInventory, access.ActionView), warehouseHandler.List)
	warehouses.Post("/", can(access.ModuleInventory, access.ActionCreate), warehouseHandler.Create)
	warehouses.Get("/:id", can(access.ModuleInventory, access.ActionView), warehouseHandler.GetByID)
	warehouses.Put("/:id", can(access.ModuleInventory, access.ActionEdit), warehouseHandler.Update)

	// Inventory
	inventoryHandler := NewInventoryHandler(deps.MovementUC, deps.ReplenishmentUC)
	inv := protected.Group("/inventory")
	inv.Get("/movements/export", can(access.ModuleInventory, access.ActionExport), inventoryHandler.ExportMovements)
	inv.Get("/movements", can(access.ModuleInventory, access.ActionView), inventoryHandler.ListMovements)
	inv.Post("/movements", can(access.ModuleInventory, access.ActionCreate), inventoryHandler.CreateMovement)
	inv.Get("/movements/:id", can(access.ModuleInventory, access.ActionView), inventoryHandler.GetMovement)
	inv.Put("/movements/:id", can(access.ModuleInventory, access.ActionEdit), inventoryHandler.UpdateMovement)
	inv.Post("/movements/:id/confirm", can(access.ModuleInventory, access.ActionEdit), inventoryHandler.ConfirmMovement)
	inv.Post("/movements/:id/cancel", can(access.ModuleInventory, access.ActionDelete), inventoryHandler.CancelMovement)
	inv.Get("/stock", can(access.ModuleInventory, access.ActionView), inventoryHandler.Stock)
	inv.Get("/replenishment", can(access.ModuleInventory, access.ActionView), inventoryHandler.Replenishment)

	// Alerts
	alertHandler := NewAlertHandler(deps.AlertUC)
	alerts := protected.Group("/alerts")
	alerts.Get("/", can(access.ModuleInventory, access.ActionView), alertHandler.List)
	alerts.Post("/scan", can(access.ModuleInventory, access.ActionEdit), alertHandler.Scan)
	alerts.Post("/:id/resolve", can(access.ModuleInventory, access.ActionEdit), alertHandler.Resolve)

	// Purchase orders
	orderHandler := NewPurchaseOrderHandler(deps.OrderUC)
	orders := protected.Group("/purchase-orders")
	orders.Get("/", can(access.ModulePurchases, access.ActionView), orderHandler.List)
	orders.Post("/", can(access.ModulePurchases, access.ActionCreate), orderHandler.Create)
	orders.Get("/:id", can(access.ModulePurchases, access.ActionView), orderHandler.GetByID)
	orders.Get("/:id/pdf", can(access.ModulePurchases, access.ActionView), orderHandler.PDF)
	orders.Post("/:id/lines", can(access.ModulePurchases, access.ActionEdit), orderHandler.AddLine)
	orders.Put("/:id/lines/:lineId", can(access.ModulePurchases, access.ActionEdit), orderHandler.UpdateLine)
	orders.Delete("/:id/lines/:lineId", can(access.ModulePurchases, access.ActionEdit), orderHandler.RemoveLine)
	orders.Patch("/:id/status", can(access.ModulePurchases, access.ActionEdit), orderHandler.ChangeStatus)
	orders.Post("/:id/receive", can(access.ModulePurchases, access.ActionEdit), orderHandler.Receive)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard", dashboardHandler.GetSummary)
}
