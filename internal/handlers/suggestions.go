package handlers

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GetSuggestions recomputes and returns the caller's suggestions
func (h *Handler) GetSuggestions(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}
	return Success(c, sess.RefreshSuggestions(c.UserContext()))
}

// AcceptSuggestion adds the suggested item to the list
func (h *Handler) AcceptSuggestion(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	name := suggestionName(c)
	if name == "" {
		return Error(c, fiber.StatusBadRequest, "suggestion name is required")
	}

	item, err := sess.AcceptSuggestion(c.UserContext(), name)
	if err != nil {
		return sessionError(c, err)
	}
	return Success(c, fiber.Map{
		"item":        item,
		"items":       sess.Items(),
		"suggestions": sess.Suggestions(),
	})
}

// RejectSuggestion dismisses a suggestion
func (h *Handler) RejectSuggestion(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	name := suggestionName(c)
	if name == "" {
		return Error(c, fiber.StatusBadRequest, "suggestion name is required")
	}

	if err := sess.RejectSuggestion(c.UserContext(), name); err != nil {
		return sessionError(c, err)
	}
	return Success(c, sess.Suggestions())
}

func suggestionName(c *fiber.Ctx) string {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(name)
}
