package handler

import (
	"go-retreat-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	response, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.Map{"token": response.Token, "user": response.User})
}

// ChangePassword handles password change for the logged in user
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if err := h.authService.ChangePassword(c.UserContext(), actor(c), &req); err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.Map{"message": "Password changed successfully"})
}

// Logout revokes the caller's token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), actor(c)); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Logged out"})
}

// Me returns the logged in user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.authService.Me(c.UserContext(), actor(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"user": user})
}
