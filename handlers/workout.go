package handlers

import (
	"strconv"
	"time"

	"fitness-arena-system/middleware"
	"fitness-arena-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWorkoutRoutes(app *fiber.App, workoutService *services.WorkoutService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/workouts", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		type Req struct {
			ExerciseCode string  `json:"exercise_code"`
			Reps         int     `json:"reps"`
			WeightKg     float64 `json:"weight_kg"`
			DurationSec  int     `json:"duration_sec"`
			OccurredAt   string  `json:"occurred_at"` // RFC3339, optional
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}

		in := services.LogWorkoutInput{
			ExerciseCode: req.ExerciseCode,
			Reps:         req.Reps,
			WeightKg:     req.WeightKg,
			DurationSec:  req.DurationSec,
		}
		if req.OccurredAt != "" {
			t, err := time.Parse(time.RFC3339, req.OccurredAt)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid occurred_at (use RFC3339)"})
			}
			in.OccurredAt = t
		}

		entry, err := workoutService.LogWorkout(userID, in)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	secured.Get("/workouts", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		entries, err := workoutService.ListWorkouts(userID, limit)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(entries)
	})

	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.AdminOnly())

	// Explicit admin action — point values never change on their own.
	admin.Post("/workouts/:id/recompute", func(c *fiber.Ctx) error {
		entry, err := workoutService.RecomputePointValue(c.Params("id"))
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(entry)
	})
}
