package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/shopvoice/internal/config"
	"github.com/foxxcyber/shopvoice/internal/database"
	"github.com/foxxcyber/shopvoice/internal/models"
	"github.com/foxxcyber/shopvoice/internal/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Meta    *Meta           `json:"meta"`
}

type listData struct {
	Item        models.ListItem     `json:"item"`
	Items       []models.ListItem   `json:"items"`
	Suggestions []models.Suggestion `json:"suggestions"`
}

func newTestApp(t *testing.T) (*fiber.App, *database.MemoryStore) {
	t.Helper()

	datasets, err := services.DefaultDatasets()
	require.NoError(t, err)
	search, err := services.NewProductSearch(services.NewSearchParser(), services.NewCatalogMatcher(datasets.Catalog), 16)
	require.NoError(t, err)

	store := database.NewMemoryStore()
	router := services.NewCommandRouter(nil, datasets, search)
	sessions := services.NewSessionRegistry(router, store, store, nil)

	cfg := &config.Config{JWTExpiry: time.Hour, DefaultLanguage: "en-US"}
	h := New(cfg, services.DeriveSigningKey("test-secret"), sessions, search)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, h)
	return app, store
}

func call(t *testing.T, app *fiber.App, method, path, token, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func login(t *testing.T, app *fiber.App) models.AuthResponse {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/auth/anonymous", "", "")
	require.Equal(t, fiber.StatusCreated, status)

	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(t, auth.Token)
	require.NotEmpty(t, auth.Owner)
	return auth
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestVoiceCommand(t *testing.T) {
	app, store := newTestApp(t)
	auth := login(t, app)

	status, env := call(t, app, http.MethodPost, "/api/voice", auth.Token, `{"transcript":"add 2 apples"}`)
	require.Equal(t, fiber.StatusOK, status, env.Error)

	resp := decode[models.VoiceCommandResponse](t, env)
	assert.Equal(t, models.ActionAdd, resp.Action)
	assert.Equal(t, "added", resp.Outcome)
	assert.Equal(t, "Added: 2 × Apples", resp.Status)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Apples", resp.Items[0].Name)
	assert.Equal(t, 2, resp.Items[0].Quantity)

	status, env = call(t, app, http.MethodGet, "/api/list", auth.Token, "")
	require.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Total)
	assert.Equal(t, "Apples", decode[listData](t, env).Items[0].Name)

	assert.Equal(t, 1, store.SnapshotCount(auth.Owner))
	require.Len(t, store.Events(auth.Owner), 1)
	assert.Equal(t, models.EventAdd, store.Events(auth.Owner)[0].Type)

	// the same transcript again is dropped
	status, _ = call(t, app, http.MethodPost, "/api/voice", auth.Token, `{"transcript":"add 2 apples"}`)
	assert.Equal(t, fiber.StatusConflict, status)

	// another owner starts from an empty list
	other := login(t, app)
	status, env = call(t, app, http.MethodGet, "/api/list", other.Token, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0, env.Meta.Total)
}

func TestVoiceCommand_Search(t *testing.T) {
	app, _ := newTestApp(t)
	auth := login(t, app)

	status, env := call(t, app, http.MethodPost, "/api/voice", auth.Token, `{"transcript":"show me organic milk","lang":"en-IN"}`)
	require.Equal(t, fiber.StatusOK, status, env.Error)

	resp := decode[models.VoiceCommandResponse](t, env)
	assert.Equal(t, "searched", resp.Outcome)
	require.NotNil(t, resp.Query)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "p-006", resp.Products[0].ID)
	assert.Empty(t, resp.Items)
}

func TestVoiceCommand_BadRequests(t *testing.T) {
	app, _ := newTestApp(t)
	auth := login(t, app)

	tests := []struct {
		name   string
		token  string
		body   string
		status int
	}{
		{"no token", "", `{"transcript":"add milk"}`, fiber.StatusUnauthorized},
		{"bad token", "nope", `{"transcript":"add milk"}`, fiber.StatusUnauthorized},
		{"not json", auth.Token, `add milk`, fiber.StatusBadRequest},
		{"empty transcript", auth.Token, `{"transcript":"  "}`, fiber.StatusBadRequest},
		{"interim transcript", auth.Token, `{"transcript":"add mi","final":false}`, fiber.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := call(t, app, http.MethodPost, "/api/voice", tt.token, tt.body)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestSearchProducts(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := call(t, app, http.MethodGet, "/api/search?q=organic%20milk", "", "")
	require.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Total)

	result := decode[models.SearchResult](t, env)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "p-006", result.Products[0].ID)
	require.NotNil(t, result.Query.Filters.IsOrganic)
	assert.True(t, *result.Query.Filters.IsOrganic)

	status, _ = call(t, app, http.MethodGet, "/api/search", "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestListEdits(t *testing.T) {
	app, store := newTestApp(t)
	auth := login(t, app)

	status, env := call(t, app, http.MethodPost, "/api/voice", auth.Token, `{"transcript":"add milk"}`)
	require.Equal(t, fiber.StatusOK, status, env.Error)
	id := decode[models.VoiceCommandResponse](t, env).Items[0].ID

	status, env = call(t, app, http.MethodPost, "/api/list/items/"+id+"/increment", auth.Token, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 2, decode[listData](t, env).Items[0].Quantity)

	status, env = call(t, app, http.MethodPost, "/api/list/items/"+id+"/decrement", auth.Token, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, decode[listData](t, env).Items[0].Quantity)

	status, env = call(t, app, http.MethodPost, "/api/list/items/"+id+"/toggle", auth.Token, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, decode[listData](t, env).Items[0].Bought)

	status, env = call(t, app, http.MethodDelete, "/api/list/items/"+id, auth.Token, "")
	require.Equal(t, fiber.StatusOK, status)
	data := decode[listData](t, env)
	assert.Empty(t, data.Items)
	names := make([]string, 0, len(data.Suggestions))
	for _, s := range data.Suggestions {
		names = append(names, s.Item)
	}
	assert.Contains(t, names, "Almond milk")

	status, _ = call(t, app, http.MethodPost, "/api/list/items/missing/increment", auth.Token, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	types := make([]models.EventType, 0)
	for _, ev := range store.Events(auth.Owner) {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []models.EventType{models.EventAdd, models.EventBought, models.EventRemove}, types)
}

func TestAddProductToList(t *testing.T) {
	app, _ := newTestApp(t)
	auth := login(t, app)

	status, env := call(t, app, http.MethodPost, "/api/list/products/p-005", auth.Token, "")
	require.Equal(t, fiber.StatusCreated, status, env.Error)
	data := decode[listData](t, env)
	assert.Equal(t, "Amul Toned Milk 1l", data.Item.Name)
	assert.Len(t, data.Items, 1)

	status, _ = call(t, app, http.MethodPost, "/api/list/products/nope", auth.Token, "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestSuggestions(t *testing.T) {
	app, _ := newTestApp(t)
	auth := login(t, app)

	status, _ := call(t, app, http.MethodGet, "/api/suggestions", auth.Token, "")
	assert.Equal(t, fiber.StatusOK, status)

	status, env := call(t, app, http.MethodPost, "/api/suggestions/Almond%20milk/accept", auth.Token, "")
	require.Equal(t, fiber.StatusOK, status, env.Error)
	data := decode[listData](t, env)
	assert.Equal(t, "Almond milk", data.Item.Name)
	require.Len(t, data.Items, 1)

	status, env = call(t, app, http.MethodPost, "/api/suggestions/Oat%20milk/reject", auth.Token, "")
	require.Equal(t, fiber.StatusOK, status, env.Error)
	for _, s := range decode[[]models.Suggestion](t, env) {
		assert.NotEqual(t, "Oat milk", s.Item)
	}

	status, _ = call(t, app, http.MethodGet, "/api/suggestions", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
