package middleware

import (
	"errors"
	"strings"

	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"
	"go-retreat-store/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

func deny(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(userRepo repository.UserRepository, tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return deny(c, fiber.StatusUnauthorized, "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return deny(c, fiber.StatusUnauthorized, "Invalid authorization format. Use: Bearer <token>")
		}

		// Validate token
		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			return deny(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		// Check strict session against DB
		user, err := userRepo.FindByID(c.UserContext(), claims.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return deny(c, fiber.StatusUnauthorized, "User not found")
		}
		if err != nil {
			return deny(c, fiber.StatusInternalServerError, "Failed to verify session")
		}

		// An empty version means the user logged out
		if user.TokenVersion == "" || user.TokenVersion != claims.TokenVersion {
			return deny(c, fiber.StatusUnauthorized, "Session expired (logged in on another device)")
		}

		// Role and team come from the database so admin edits apply immediately
		c.Locals("user_id", user.ID)
		c.Locals("username", user.Username)
		c.Locals("role", user.Role)
		c.Locals("team_id", user.TeamID)

		return c.Next()
	}
}

// RequireRole checks that the authenticated user has one of the given roles
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(model.Role)
		if !ok {
			return deny(c, fiber.StatusForbidden, "No role found")
		}

		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}

		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		return deny(c, fiber.StatusForbidden, "Forbidden: requires one of "+strings.Join(names, ", ")+" roles")
	}
}
