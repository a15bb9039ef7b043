package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func signToken(t *testing.T, key []byte, method jwt.SigningMethod, owner string, expires time.Time) string {
	t.Helper()
	claims := JWTClaims{
		Owner: owner,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/me", AuthRequired(testKey), func(c *fiber.Ctx) error {
		return c.SendString(GetOwner(c))
	})

	valid := signToken(t, testKey, jwt.SigningMethodHS256, "owner-1", time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + valid, fiber.StatusOK},
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, fiber.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", fiber.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testKey, jwt.SigningMethodHS256, "owner-1", time.Now().Add(-time.Hour)), fiber.StatusUnauthorized},
		{"wrong key", "Bearer " + signToken(t, []byte("another-key"), jwt.SigningMethodHS256, "owner-1", time.Now().Add(time.Hour)), fiber.StatusUnauthorized},
		{"no owner", "Bearer " + signToken(t, testKey, jwt.SigningMethodHS256, "", time.Now().Add(time.Hour)), fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestParseToken(t *testing.T) {
	claims, err := ParseToken(signToken(t, testKey, jwt.SigningMethodHS512, "owner-2", time.Now().Add(time.Hour)), testKey)
	require.NoError(t, err)
	assert.Equal(t, "owner-2", claims.Owner)
}
