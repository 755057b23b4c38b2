package handler

import (
	"go-retreat-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StoreHandler struct {
	products  service.ProductService
	purchases service.PurchaseService
	donations service.DonationService
	orders    service.OrderService
	inventory service.InventoryService
}

func NewStoreHandler(
	products service.ProductService,
	purchases service.PurchaseService,
	donations service.DonationService,
	orders service.OrderService,
	inventory service.InventoryService,
) *StoreHandler {
	return &StoreHandler{
		products:  products,
		purchases: purchases,
		donations: donations,
		orders:    orders,
		inventory: inventory,
	}
}

// GetProducts returns the active catalog
// GET /api/v1/store/products
func (h *StoreHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.products.ListActive(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"products": products})
}

// GetProduct returns one product from the catalog
// GET /api/v1/store/products/:id
func (h *StoreHandler) GetProduct(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid product ID")
	}
	product, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"product": product})
}

// Purchase buys a product for the caller's team
// POST /api/v1/store/purchase
func (h *StoreHandler) Purchase(c *fiber.Ctx) error {
	var req service.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	result, err := h.purchases.Purchase(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.Map{
		"message":         result.Message,
		"order_id":        result.OrderID,
		"new_balance":     result.NewBalance,
		"total_price":     result.TotalPrice,
		"remaining_stock": result.RemainingStock,
		"sold_out":        result.SoldOut,
	})
}

// GetOrders returns the caller's orders
// GET /api/v1/store/orders
func (h *StoreHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.orders.ListMine(c.UserContext(), actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"orders": orders})
}

// Donate sends goods to another team
// POST /api/v1/store/donate
func (h *StoreHandler) Donate(c *fiber.Ctx) error {
	var req service.DonateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	result, err := h.donations.Donate(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.Map{
		"message":         result.Message,
		"donation_id":     result.DonationID,
		"new_balance":     result.NewBalance,
		"total_cost":      result.TotalCost,
		"recipient_team":  result.RecipientTeam,
		"remaining_stock": result.RemainingStock,
	})
}

// GetTeams lists the teams the caller can donate to
// GET /api/v1/store/teams
func (h *StoreHandler) GetTeams(c *fiber.Ctx) error {
	teams, err := h.donations.RecipientTeams(c.UserContext(), actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"teams": teams})
}

// GetTeamInventory returns the caller's team inventory
// GET /api/v1/store/team-inventory
func (h *StoreHandler) GetTeamInventory(c *fiber.Ctx) error {
	items, err := h.inventory.ForActor(c.UserContext(), actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"inventory": items})
}
