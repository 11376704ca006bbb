package api

import (
	"go-org/internal/errs"

	"github.com/gofiber/fiber/v2"
)

// Fail maps a domain error kind onto a transport status. Unclassified
// errors are treated as internal.
func Fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errs.IsValidation(err):
		status = fiber.StatusBadRequest
	case errs.IsNotFound(err):
		status = fiber.StatusNotFound
	case errs.IsConflict(err), errs.IsCycle(err):
		status = fiber.StatusConflict
	case errs.IsInvariant(err):
		status = fiber.StatusUnprocessableEntity
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
