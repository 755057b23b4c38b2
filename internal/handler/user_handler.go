package handler

import (
	"go-retreat-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles user creation
// POST /api/v1/admin/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	user, err := h.userService.CreateUser(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}

	return created(c, fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// GetUsers returns all users
// GET /api/v1/admin/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"users": users})
}

// GetUser returns a single user
// GET /api/v1/admin/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"user": user})
}

// UpdateUser handles user update; a balance change is recorded as an adjustment
// PUT /api/v1/admin/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid user ID")
	}

	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	user, err := h.userService.UpdateUser(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// DeleteUser handles user deletion
// DELETE /api/v1/admin/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid user ID")
	}

	if err := h.userService.DeleteUser(c.UserContext(), id); err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.Map{"message": "User deleted successfully"})
}
