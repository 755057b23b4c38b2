package handler

import (
	"go-retreat-store/internal/model"
	"go-retreat-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the admin console: rankings, teams, codes, catalog and audits
type AdminHandler struct {
	rankings  service.RankingService
	teams     service.TeamService
	codes     service.MoneyCodeService
	products  service.ProductService
	orders    service.OrderService
	donations service.DonationService
	resets    service.ResetService
}

func NewAdminHandler(
	rankings service.RankingService,
	teams service.TeamService,
	codes service.MoneyCodeService,
	products service.ProductService,
	orders service.OrderService,
	donations service.DonationService,
	resets service.ResetService,
) *AdminHandler {
	return &AdminHandler{
		rankings:  rankings,
		teams:     teams,
		codes:     codes,
		products:  products,
		orders:    orders,
		donations: donations,
		resets:    resets,
	}
}

// GET /api/v1/admin/rankings
func (h *AdminHandler) GetRankings(c *fiber.Ctx) error {
	rankings, err := h.rankings.Rankings(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"rankings": rankings})
}

// GET /api/v1/admin/teams
func (h *AdminHandler) GetTeams(c *fiber.Ctx) error {
	teams, err := h.teams.Overview(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"teams": teams})
}

// GET /api/v1/admin/teams/:id/members
func (h *AdminHandler) GetTeamMembers(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid team ID")
	}
	members, err := h.teams.Members(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"members": members})
}

// PUT /api/v1/admin/teams/:id/leader
func (h *AdminHandler) AssignLeader(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid team ID")
	}
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return badRequest(c, "user_id is required")
	}

	if err := h.teams.AssignLeader(c.UserContext(), id, req.UserID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Team leader assigned"})
}

// PUT /api/v1/admin/teams/:id
func (h *AdminHandler) RenameTeam(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid team ID")
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if err := h.teams.Rename(c.UserContext(), id, req.Name); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Team renamed"})
}

// GET /api/v1/admin/money-codes
func (h *AdminHandler) GetMoneyCodes(c *fiber.Ctx) error {
	codes, err := h.codes.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"codes": codes})
}

// POST /api/v1/admin/money-codes
func (h *AdminHandler) GenerateMoneyCodes(c *fiber.Ctx) error {
	var req service.GenerateCodesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	result, err := h.codes.Generate(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, fiber.Map{
		"codes":  result.Codes,
		"count":  result.Count,
		"amount": result.Amount,
	})
}

// GET /api/v1/admin/products
func (h *AdminHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.products.ListAll(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"products": products})
}

// POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.products.Create(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, fiber.Map{"message": "Product created successfully", "product": product})
}

// PUT /api/v1/admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid product ID")
	}
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.products.Update(c.UserContext(), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Product updated successfully", "product": product})
}

// PUT /api/v1/admin/products/:id/toggle
func (h *AdminHandler) ToggleProduct(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid product ID")
	}

	product, err := h.products.Toggle(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"product": product})
}

// PUT /api/v1/admin/products/:id/stock sets the stock when "stock" is sent,
// otherwise adds "delta"
func (h *AdminHandler) UpdateStock(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid product ID")
	}
	var req struct {
		Stock *int `json:"stock"`
		Delta *int `json:"delta"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	var (
		product *model.Product
		err     error
	)
	switch {
	case req.Stock != nil:
		product, err = h.products.SetStock(c.UserContext(), id, *req.Stock)
	case req.Delta != nil:
		product, err = h.products.AdjustStock(c.UserContext(), id, *req.Delta)
	default:
		return badRequest(c, "stock or delta is required")
	}
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Stock updated", "product": product})
}

// DELETE /api/v1/admin/products/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid product ID")
	}

	if err := h.products.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Product deleted successfully"})
}

// GET /api/v1/admin/orders
func (h *AdminHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.orders.ListAll(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"orders": orders})
}

// PUT /api/v1/admin/orders/:id/verify
func (h *AdminHandler) VerifyOrder(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid order ID")
	}

	if err := h.orders.Verify(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Order verified"})
}

// GET /api/v1/admin/donations
func (h *AdminHandler) GetDonations(c *fiber.Ctx) error {
	donations, err := h.donations.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"donations": donations})
}

// POST /api/v1/admin/reset-database
func (h *AdminHandler) ResetDatabase(c *fiber.Ctx) error {
	if err := h.resets.Reset(c.UserContext(), actor(c)); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Database reset to initial values successfully"})
}
