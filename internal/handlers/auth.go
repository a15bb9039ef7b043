package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/foxxcyber/shopvoice/internal/middleware"
	"github.com/foxxcyber/shopvoice/internal/models"
)

// AnonymousLogin issues a token for a fresh list owner
func (h *Handler) AnonymousLogin(c *fiber.Ctx) error {
	owner := uuid.NewString()
	token, err := h.generateToken(owner)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(APIResponse{
		Success: true,
		Data: models.AuthResponse{
			Token: token,
			Owner: owner,
		},
	})
}

func (h *Handler) generateToken(owner string) (string, error) {
	now := time.Now()
	claims := &middleware.JWTClaims{
		Owner: owner,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(h.cfg.JWTExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   owner,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.signingKey)
}
