package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SearchProducts parses free text into filters and returns matching catalog products
func (h *Handler) SearchProducts(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return Error(c, fiber.StatusBadRequest, "q is required")
	}

	result := h.search.Run(q)
	return SuccessWithTotal(c, result, len(result.Products))
}
