package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// GetList returns the caller's list and active suggestions
func (h *Handler) GetList(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}
	items := sess.Items()
	return SuccessWithTotal(c, fiber.Map{
		"items":       items,
		"suggestions": sess.Suggestions(),
	}, len(items))
}

// IncrementItem raises an item's quantity by one
func (h *Handler) IncrementItem(c *fiber.Ctx) error {
	return h.updateItem(c, func(ctx context.Context, sess itemMutator, id string) error {
		return sess.Increment(ctx, id)
	})
}

// DecrementItem lowers an item's quantity by one, never below 1
func (h *Handler) DecrementItem(c *fiber.Ctx) error {
	return h.updateItem(c, func(ctx context.Context, sess itemMutator, id string) error {
		return sess.Decrement(ctx, id)
	})
}

// ToggleItemBought flips an item's bought flag
func (h *Handler) ToggleItemBought(c *fiber.Ctx) error {
	return h.updateItem(c, func(ctx context.Context, sess itemMutator, id string) error {
		return sess.ToggleBought(ctx, id)
	})
}

// DeleteItem removes an item from the list
func (h *Handler) DeleteItem(c *fiber.Ctx) error {
	return h.updateItem(c, func(ctx context.Context, sess itemMutator, id string) error {
		return sess.Delete(ctx, id)
	})
}

// AddProductToList adds a catalog product to the list
func (h *Handler) AddProductToList(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	product, ok := h.search.Product(c.Params("id"))
	if !ok {
		return Error(c, fiber.StatusNotFound, "product not found")
	}

	item, err := sess.AddProduct(c.UserContext(), product)
	if err != nil {
		return sessionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data: fiber.Map{
			"item":        item,
			"items":       sess.Items(),
			"suggestions": sess.Suggestions(),
		},
	})
}

type itemMutator interface {
	Increment(ctx context.Context, id string) error
	Decrement(ctx context.Context, id string) error
	ToggleBought(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

func (h *Handler) updateItem(c *fiber.Ctx, apply func(ctx context.Context, sess itemMutator, id string) error) error {
	sess, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	id := c.Params("id")
	if id == "" {
		return Error(c, fiber.StatusBadRequest, "invalid item id")
	}

	if err := apply(c.UserContext(), sess, id); err != nil {
		return sessionError(c, err)
	}
	return Success(c, fiber.Map{
		"items":       sess.Items(),
		"suggestions": sess.Suggestions(),
	})
}
