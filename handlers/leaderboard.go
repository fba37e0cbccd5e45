package handlers

import (
	"strconv"

	"fitness-arena-system/middleware"
	"fitness-arena-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	// Read-only, tolerates stale snapshots.
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "25"))
		entries, err := leaderboardService.Top(
			c.Query("field", "cumulative"),
			c.Query("region", "global"),
			limit,
		)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(fiber.Map{
			"field":   c.Query("field", "cumulative"),
			"region":  c.Query("region", "global"),
			"label":   services.RegionLabel(c.Query("region", "global")),
			"entries": entries,
		})
	})

	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/leaderboard/position", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		position, err := leaderboardService.Position(
			userID,
			c.Query("field", "cumulative"),
			c.Query("region", "global"),
		)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(fiber.Map{
			"athlete_id": userID,
			"field":      c.Query("field", "cumulative"),
			"region":     c.Query("region", "global"),
			"position":   position,
		})
	})
}
