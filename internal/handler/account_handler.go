package handler

import (
	"go-retreat-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AccountHandler serves the logged in user's wallet and team pages
type AccountHandler struct {
	codes     service.MoneyCodeService
	rankings  service.RankingService
	orders    service.OrderService
	inventory service.InventoryService
	donations service.DonationService
}

func NewAccountHandler(
	codes service.MoneyCodeService,
	rankings service.RankingService,
	orders service.OrderService,
	inventory service.InventoryService,
	donations service.DonationService,
) *AccountHandler {
	return &AccountHandler{codes: codes, rankings: rankings, orders: orders, inventory: inventory, donations: donations}
}

// RedeemCode credits a money code
// POST /api/v1/user/redeem-code
func (h *AccountHandler) RedeemCode(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	result, err := h.codes.Redeem(c.UserContext(), actor(c), req.Code)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.Map{
		"message":     "Code redeemed successfully",
		"amount":      result.Amount,
		"new_balance": result.NewBalance,
	})
}

// GetTransactions returns the caller's ledger
// GET /api/v1/user/transactions?limit=50
func (h *AccountHandler) GetTransactions(c *fiber.Ctx) error {
	a := actor(c)
	entries, err := h.rankings.UserTransactions(c.UserContext(), a.UserID, c.QueryInt("limit"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"transactions": entries})
}

// GetTeam returns the caller's team totals, members, recent activity and donations
// GET /api/v1/user/team
func (h *AccountHandler) GetTeam(c *fiber.Ctx) error {
	a := actor(c)
	if a.TeamID == nil {
		return fail(c, service.ErrNoTeam)
	}

	summary, err := h.rankings.TeamSummary(c.UserContext(), *a.TeamID)
	if err != nil {
		return fail(c, err)
	}
	history, err := h.rankings.TeamTransactions(c.UserContext(), *a.TeamID, c.QueryInt("limit"))
	if err != nil {
		return fail(c, err)
	}
	donations, err := h.donations.ForTeam(c.UserContext(), *a.TeamID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"team": summary, "transactions": history, "donations": donations})
}

// GetTeamPurchases returns every order placed by the caller's team
// GET /api/v1/user/team-purchases
func (h *AccountHandler) GetTeamPurchases(c *fiber.Ctx) error {
	orders, err := h.orders.ListTeam(c.UserContext(), actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"orders": orders})
}

// GetTeamInventory returns the caller's team inventory with its history
// GET /api/v1/user/team-inventory
func (h *AccountHandler) GetTeamInventory(c *fiber.Ctx) error {
	a := actor(c)
	items, err := h.inventory.ForActor(c.UserContext(), a)
	if err != nil {
		return fail(c, err)
	}
	body := fiber.Map{"inventory": items}
	if a.TeamID != nil {
		moves, err := h.inventory.Movements(c.UserContext(), *a.TeamID)
		if err != nil {
			return fail(c, err)
		}
		body["movements"] = moves
	}
	return ok(c, body)
}
