package handler

import (
	"go-retreat-store/internal/apperr"
	"go-retreat-store/internal/model"
	"go-retreat-store/internal/service"

	"github.com/gofiber/fiber/v2"
)

// actor builds the caller from the locals set by RequireAuth
func actor(c *fiber.Ctx) service.Actor {
	a := service.Actor{}
	if id, ok := c.Locals("user_id").(uint); ok {
		a.UserID = id
	}
	if name, ok := c.Locals("username").(string); ok {
		a.Username = name
	}
	if role, ok := c.Locals("role").(model.Role); ok {
		a.Role = role
	}
	if teamID, ok := c.Locals("team_id").(*uint); ok {
		a.TeamID = teamID
	}
	return a
}

// fail writes an error response with the status for its kind
func fail(c *fiber.Ctx, err error) error {
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{
		"success": false,
		"error":   apperr.Message(err),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return fail(c, apperr.Validation(msg))
}

func ok(c *fiber.Ctx, body fiber.Map) error {
	body["success"] = true
	return c.JSON(body)
}

func created(c *fiber.Ctx, body fiber.Map) error {
	body["success"] = true
	return c.Status(fiber.StatusCreated).JSON(body)
}

// paramID reads a positive integer route parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
