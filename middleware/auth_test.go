package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func gatewayApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("FITNESS_SERVICE_TOKEN", "svc-secret")

	app := fiber.New()
	app.Use(GatewayAuthMiddleware())
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/leaderboard", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestGatewayAuth(t *testing.T) {
	app := gatewayApp(t)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"health probe needs no token", "/healthz", "", fiber.StatusOK},
		{"missing token", "/leaderboard", "", fiber.StatusUnauthorized},
		{"wrong token", "/leaderboard", "Bearer nope", fiber.StatusUnauthorized},
		{"bearer token", "/leaderboard", "Bearer svc-secret", fiber.StatusOK},
		{"raw token without prefix", "/leaderboard", "svc-secret", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestUserContextAndAdminOnly(t *testing.T) {
	app := fiber.New()
	secured := app.Group("/s", UserContextMiddleware())
	secured.Get("/profile", func(c *fiber.Ctx) error { return c.SendString("ok") })
	admin := app.Group("/s/admin", UserContextMiddleware(), AdminOnly())
	admin.Get("/reports", func(c *fiber.Ctx) error { return c.SendString("ok") })

	tests := []struct {
		name   string
		path   string
		userID string
		roles  string
		want   int
	}{
		{"secured without identity", "/s/profile", "", "", fiber.StatusUnauthorized},
		{"secured with identity", "/s/profile", "user-1", "", fiber.StatusOK},
		{"admin route without role", "/s/admin/reports", "user-1", "athlete", fiber.StatusForbidden},
		{"admin route with role", "/s/admin/reports", "user-1", "athlete, admin", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.userID != "" {
				req.Header.Set("X-User-ID", tt.userID)
			}
			if tt.roles != "" {
				req.Header.Set("X-User-Roles", tt.roles)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
