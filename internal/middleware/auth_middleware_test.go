package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sefazor/ourphotos-albums/internal/models"
	jwtPkg "github.com/sefazor/ourphotos-albums/pkg/jwt"
)

func newTestApp(tokens *jwtPkg.Manager) *fiber.App {
	app := fiber.New()
	app.Use(AuthMiddleware(tokens, zap.NewNop()))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userId": c.Locals("userID"),
			"email":  c.Locals("userEmail"),
		})
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	good := jwtPkg.NewManager("secret", time.Hour)
	token, err := good.Generate("ada@example.com", "u-1")
	require.NoError(t, err)

	other, err := jwtPkg.NewManager("other-secret", time.Hour).Generate("ada@example.com", "u-1")
	require.NoError(t, err)

	tests := []struct {
		name    string
		tokens  *jwtPkg.Manager
		header  string
		status  int
		wantErr string
	}{
		{"raw token", good, token, fiber.StatusOK, ""},
		{"bearer token", good, "Bearer " + token, fiber.StatusOK, ""},
		{"missing", good, "", fiber.StatusBadRequest, "NO TOKEN"},
		{"bearer without token", good, "Bearer ", fiber.StatusBadRequest, "NO TOKEN"},
		{"bearer word only", good, "Bearer", fiber.StatusBadRequest, "NO TOKEN"},
		{"no secret", jwtPkg.NewManager("", time.Hour), token, fiber.StatusInternalServerError, "SERVER_CONFIGURATION_ERROR"},
		{"wrong signature", good, other, fiber.StatusUnauthorized, "JWT_ERROR"},
		{"garbage", good, "not-a-token", fiber.StatusUnauthorized, "JWT_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}

			resp, err := newTestApp(tt.tokens).Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.wantErr != "" {
				var body models.Response
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.False(t, body.Success)
				assert.Equal(t, tt.wantErr, body.Error)
				return
			}

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "u-1", body["userId"])
			assert.Equal(t, "ada@example.com", body["email"])
		})
	}
}
