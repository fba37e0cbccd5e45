package handlers

import (
	"strconv"
	"time"

	"fitness-arena-system/middleware"
	"fitness-arena-system/models"
	"fitness-arena-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, challengeService *services.ChallengeService) {
	// Browse endpoints need no user context — responses hold no per-user data.
	app.Get("/challenges", func(c *fiber.Ctx) error {
		challenges, err := challengeService.ListChallenges(
			c.Query("region"),
			models.ChallengeStatus(c.Query("status")),
		)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(challenges)
	})

	app.Get("/challenges/:id", func(c *fiber.Ctx) error {
		ch, err := challengeService.GetChallenge(c.Params("id"))
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(ch)
	})

	app.Get("/challenges/:id/standings", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "25"))
		rows, err := challengeService.ChallengeStandings(c.Params("id"), limit)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(rows)
	})

	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/challenges/:id/join", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		participation, err := challengeService.JoinChallenge(userID, c.Params("id"))
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(participation)
	})

	secured.Get("/challenges/:id/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		participation, err := challengeService.Participation(userID, c.Params("id"))
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(participation)
	})

	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.AdminOnly())

	admin.Post("/challenges", func(c *fiber.Ctx) error {
		in, err := parseChallengeInput(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		ch, err := challengeService.CreateChallenge(*in)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ch)
	})

	admin.Put("/challenges/:id", func(c *fiber.Ctx) error {
		in, err := parseChallengeInput(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		ch, err := challengeService.UpdateChallenge(c.Params("id"), *in)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(ch)
	})

	admin.Post("/challenges/:id/publish", func(c *fiber.Ctx) error {
		ch, err := challengeService.PublishChallenge(c.Params("id"), time.Now())
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(ch)
	})

	admin.Post("/challenges/:id/cancel", func(c *fiber.Ctx) error {
		ch, err := challengeService.CancelChallenge(c.Params("id"))
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(ch)
	})
}

func parseChallengeInput(c *fiber.Ctx) (*services.ChallengeInput, error) {
	type Req struct {
		Name               string `json:"name"`
		Description        string `json:"description"`
		MetricType         string `json:"metric_type"`
		Target             int64  `json:"target"`
		AccumulationPolicy string `json:"accumulation_policy"`
		CompletionBonus    int64  `json:"completion_bonus"`
		RegionScope        string `json:"region_scope"`
		RequiresEvidence   *bool  `json:"requires_evidence"`
		WindowStart        string `json:"window_start"` // RFC3339
		WindowEnd          string `json:"window_end"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid JSON")
	}

	windowStart, err := time.Parse(time.RFC3339, req.WindowStart)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid window_start (use RFC3339)")
	}
	windowEnd, err := time.Parse(time.RFC3339, req.WindowEnd)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid window_end (use RFC3339)")
	}

	return &services.ChallengeInput{
		Name:               req.Name,
		Description:        req.Description,
		MetricType:         req.MetricType,
		Target:             req.Target,
		AccumulationPolicy: models.AccumulationPolicy(req.AccumulationPolicy),
		CompletionBonus:    req.CompletionBonus,
		RegionScope:        req.RegionScope,
		RequiresEvidence:   req.RequiresEvidence,
		WindowStart:        windowStart,
		WindowEnd:          windowEnd,
	}, nil
}
