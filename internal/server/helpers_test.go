package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"postId", "post ID"},
		{"wishlistItemId", "wishlist item ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func paginationApp() *fiber.App {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, 25)
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})
	return app
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query  string
		limit  float64
		offset float64
	}{
		{"", 25, 0},
		{"?limit=10&offset=30", 10, 30},
		{"?limit=1000", 100, 0},
		{"?limit=-5&offset=-1", 25, 0},
	}
	app := paginationApp()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var body map[string]float64
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.limit, body["limit"])
			assert.Equal(t, tt.offset, body["offset"])
		})
	}
}

func TestParseIDAndCursor(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/things/:postId", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "postId")
		if err != nil {
			return nil
		}
		cursor, err := parseCursor(c)
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id, "cursor": cursor})
	})

	tests := []struct {
		name   string
		path   string
		status int
		errMsg string
	}{
		{"valid", "/things/7?cursor=3", http.StatusOK, ""},
		{"zero", "/things/0", http.StatusBadRequest, "Invalid post ID"},
		{"text", "/things/abc", http.StatusBadRequest, "Invalid post ID"},
		{"negative cursor", "/things/7?cursor=-1", http.StatusBadRequest, "Invalid cursor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, body["error"])
			} else {
				assert.Equal(t, float64(7), body["id"])
				assert.Equal(t, float64(3), body["cursor"])
			}
		})
	}
}
