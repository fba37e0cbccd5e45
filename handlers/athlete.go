package handlers

import (
	"fitness-arena-system/middleware"
	"fitness-arena-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAthleteRoutes(app *fiber.App, athleteService *services.AthleteService, leaderboardService *services.LeaderboardService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	// Idempotent bootstrap — the profile service calls this after signup, and
	// clients may retry freely.
	secured.Post("/athlete/ensure", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		type Req struct {
			Username string `json:"username"`
			Region   string `json:"region"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		athlete, err := athleteService.EnsureAthlete(userID, req.Username, req.Region)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(athlete)
	})

	secured.Get("/athlete/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		profile, err := athleteService.Profile(userID)
		if err != nil {
			return services.RespondError(c, err)
		}

		position, err := leaderboardService.Position(userID, "cumulative", "global")
		if err != nil {
			return services.RespondError(c, err)
		}

		return c.JSON(fiber.Map{
			"athlete":         profile.Athlete,
			"tier":            profile.Tier,
			"relative_score":  profile.RelativeScore,
			"global_position": position,
		})
	})

	secured.Put("/athlete/bodyweight", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		type Req struct {
			BodyweightKg float64 `json:"bodyweight_kg"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		athlete, err := athleteService.UpdateBodyweight(userID, req.BodyweightKg)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(athlete)
	})
}
