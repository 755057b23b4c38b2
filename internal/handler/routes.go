package handler

import (
	"strconv"
	"time"

	"go-retreat-store/internal/middleware"
	"go-retreat-store/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers groups every HTTP handler mounted under /api/v1
type Handlers struct {
	Auth    *AuthHandler
	Store   *StoreHandler
	Account *AccountHandler
	Users   *UserHandler
	Admin   *AdminHandler
}

// RedeemLimit caps code redemption attempts per user
type RedeemLimit struct {
	MaxRequests int
	Window      time.Duration
}

// RegisterRoutes mounts the API. auth must be the RequireAuth middleware;
// the websocket stream is mounted separately by the caller.
func RegisterRoutes(app *fiber.App, h Handlers, auth fiber.Handler, redeem RedeemLimit) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	authGroup := api.Group("/auth")
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/change-password", auth, h.Auth.ChangePassword)
	authGroup.Post("/logout", auth, h.Auth.Logout)
	authGroup.Get("/me", auth, h.Auth.Me)

	// ============ STORE ============
	store := api.Group("/store", auth)
	store.Get("/products", h.Store.GetProducts)
	store.Get("/products/:id", h.Store.GetProduct)
	store.Post("/purchase", h.Store.Purchase)
	store.Get("/orders", h.Store.GetOrders)
	store.Post("/donate", h.Store.Donate)
	store.Get("/teams", h.Store.GetTeams)
	store.Get("/team-inventory", h.Store.GetTeamInventory)

	// ============ ACCOUNT ============
	user := api.Group("/user", auth)
	user.Post("/redeem-code", limiter.New(limiter.Config{
		Max:        redeem.MaxRequests,
		Expiration: redeem.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id, ok := c.Locals("user_id").(uint); ok {
				return "user:" + strconv.FormatUint(uint64(id), 10)
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many attempts, try again later",
			})
		},
	}), h.Account.RedeemCode)
	user.Get("/transactions", h.Account.GetTransactions)
	user.Get("/team", h.Account.GetTeam)
	user.Get("/team-purchases", h.Account.GetTeamPurchases)
	user.Get("/team-inventory", h.Account.GetTeamInventory)

	// ============ ADMIN ============
	admin := api.Group("/admin", auth, middleware.RequireRole(model.RoleAdmin))
	admin.Get("/rankings", h.Admin.GetRankings)

	admin.Get("/users", h.Users.GetUsers)
	admin.Get("/users/:id", h.Users.GetUser)
	admin.Post("/users", h.Users.CreateUser)
	admin.Put("/users/:id", h.Users.UpdateUser)
	admin.Delete("/users/:id", h.Users.DeleteUser)

	admin.Get("/teams", h.Admin.GetTeams)
	admin.Get("/teams/:id/members", h.Admin.GetTeamMembers)
	admin.Put("/teams/:id/leader", h.Admin.AssignLeader)
	admin.Put("/teams/:id", h.Admin.RenameTeam)

	admin.Get("/money-codes", h.Admin.GetMoneyCodes)
	admin.Post("/money-codes", h.Admin.GenerateMoneyCodes)

	admin.Get("/products", h.Admin.GetProducts)
	admin.Post("/products", h.Admin.CreateProduct)
	admin.Put("/products/:id", h.Admin.UpdateProduct)
	admin.Put("/products/:id/toggle", h.Admin.ToggleProduct)
	admin.Put("/products/:id/stock", h.Admin.UpdateStock)
	admin.Delete("/products/:id", h.Admin.DeleteProduct)

	admin.Get("/orders", h.Admin.GetOrders)
	admin.Put("/orders/:id/verify", h.Admin.VerifyOrder)
	admin.Get("/donations", h.Admin.GetDonations)
	admin.Post("/reset-database", h.Admin.ResetDatabase)
}
