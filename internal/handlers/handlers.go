package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/shopvoice/internal/config"
	"github.com/foxxcyber/shopvoice/internal/middleware"
	"github.com/foxxcyber/shopvoice/internal/services"
)

// Handler holds all handler dependencies
type Handler struct {
	cfg        *config.Config
	signingKey []byte
	sessions   *services.SessionRegistry
	search     *services.ProductSearch
}

// New creates a new Handler instance
func New(cfg *config.Config, signingKey []byte, sessions *services.SessionRegistry, search *services.ProductSearch) *Handler {
	return &Handler{
		cfg:        cfg,
		signingKey: signingKey,
		sessions:   sessions,
		search:     search,
	}
}

// ErrorHandler is a custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Default to 500
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	// Check if it's a Fiber error
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}

// APIResponse is a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta carries result counts
type Meta struct {
	Total int `json:"total"`
}

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// SuccessWithTotal returns a successful response with a result count
func SuccessWithTotal(c *fiber.Ctx, data interface{}, total int) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
		Meta:    &Meta{Total: total},
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}

// session returns the caller's session, creating it on first use
func (h *Handler) session(c *fiber.Ctx) (*services.Session, error) {
	owner := middleware.GetOwner(c)
	if owner == "" {
		return nil, errors.New("session not authenticated")
	}
	return h.sessions.Get(c.UserContext(), owner), nil
}

// sessionError maps session and pipeline errors to HTTP responses
func sessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		return Error(c, fiber.StatusNotFound, "list item not found")
	case errors.Is(err, services.ErrDuplicateUtterance):
		return Error(c, fiber.StatusConflict, "utterance already processed")
	case errors.Is(err, services.ErrPipelineBusy):
		return Error(c, fiber.StatusTooManyRequests, "another utterance is being processed")
	case errors.Is(err, services.ErrSuperseded):
		return Error(c, fiber.StatusConflict, "utterance superseded")
	case errors.Is(err, services.ErrSessionClosed):
		return Error(c, fiber.StatusGone, "session closed")
	}
	return Error(c, fiber.StatusInternalServerError, "failed to process request")
}
