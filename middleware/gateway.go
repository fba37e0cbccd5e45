package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Paths the deployment probes directly, without going through the Gateway.
var gatewayExemptPaths = map[string]bool{
	"/healthz": true,
}

// GatewayAuthMiddleware validates the Bearer token from the Gateway.
// Everything except the health probe must arrive through it: leaderboard and
// challenge listings are public to users but still Gateway-fronted.
func GatewayAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("FITNESS_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ FITNESS_SERVICE_TOKEN is not set — service cannot authenticate Gateway")
	}

	return func(c *fiber.Ctx) error {
		if gatewayExemptPaths[c.Path()] {
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Printf("🚫 [GATEWAY_AUTH] Missing Authorization header for %s %s", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		// Parse "Bearer <token>"
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			// no "Bearer " prefix — try raw value (e.g., if Gateway sends raw token)
			token = authHeader
		}

		if token != expectedToken {
			log.Printf("❌ [GATEWAY_AUTH] Invalid token for %s %s (got prefix: %.10s...)", c.Method(), c.Path(), token)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}

		return c.Next()
	}
}
