package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/shopvoice/internal/middleware"
)

// SetupRoutes registers every API route on app
func SetupRoutes(app *fiber.App, h *Handler) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/anonymous", h.AnonymousLogin)

	authed := middleware.AuthRequired(h.signingKey)

	api.Post("/voice", authed, h.SubmitVoiceCommand)
	api.Get("/search", h.SearchProducts)

	suggestions := api.Group("/suggestions", authed)
	suggestions.Get("/", h.GetSuggestions)
	suggestions.Post("/:name/accept", h.AcceptSuggestion)
	suggestions.Post("/:name/reject", h.RejectSuggestion)

	list := api.Group("/list", authed)
	list.Get("/", h.GetList)
	list.Post("/items/:id/increment", h.IncrementItem)
	list.Post("/items/:id/decrement", h.DecrementItem)
	list.Post("/items/:id/toggle", h.ToggleItemBought)
	list.Delete("/items/:id", h.DeleteItem)
	list.Post("/products/:id", h.AddProductToList)
}
