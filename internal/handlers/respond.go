package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"regatta/internal/models"
)

// writeServiceError maps domain errors onto HTTP responses: validation and
// bad equipment references are client errors, uniqueness violations are
// conflicts, everything else is a server error.
func writeServiceError(c *fiber.Ctx, message string, err error) error {
	var validationErr *models.ValidationError
	var weakPassword *models.WeakPasswordError
	var invalidEquipment *models.InvalidEquipmentError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &weakPassword), errors.As(err, &invalidEquipment):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case models.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	}
}

// writeValidationErrors reports request DTO validation failures field by
// field.
func writeValidationErrors(c *fiber.Ctx, err error) error {
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// writeNotFoundOrDenied is the single outward signal for both a missing
// record and one owned by another user.
func writeNotFoundOrDenied(c *fiber.Ctx, resource string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": fmt.Sprintf("%s not found or access denied", resource),
	})
}

// currentUserID reads the authenticated user id set by the JWT middleware.
func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}
