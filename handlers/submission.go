package handlers

import (
	"path/filepath"
	"strconv"

	"fitness-arena-system/middleware"
	"fitness-arena-system/models"
	"fitness-arena-system/services"
	"fitness-arena-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupSubmissionRoutes(app *fiber.App, verificationService *services.VerificationService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	// Multipart: the video lands in the evidence store, the engine only ever
	// sees the returned opaque ref.
	secured.Post("/workouts/:id/evidence", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		evidenceRef, err := storeEvidence(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store evidence", "details": err.Error()})
		}

		sub, err := verificationService.SubmitWorkoutEvidence(userID, c.Params("id"), evidenceRef)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	})

	secured.Post("/challenges/:id/evidence", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		value, err := strconv.ParseInt(c.FormValue("value"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "value must be an integer"})
		}

		evidenceRef, err := storeEvidence(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store evidence", "details": err.Error()})
		}

		sub, err := verificationService.SubmitChallengeEvidence(userID, c.Params("id"), value, evidenceRef)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	})

	secured.Get("/submissions/:id", func(c *fiber.Ctx) error {
		sub, err := verificationService.GetSubmission(c.Params("id"))
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(sub)
	})

	secured.Post("/submissions/:id/appeal", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		type Req struct {
			Reason string `json:"reason"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		appeal, err := verificationService.FileAppeal(userID, c.Params("id"), req.Reason)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(appeal)
	})

	secured.Post("/submissions/:id/report", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		type Req struct {
			Reason string `json:"reason"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		report, err := verificationService.FileReport(userID, c.Params("id"), req.Reason)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(report)
	})

	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.AdminOnly())

	admin.Get("/review/queue", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		subs, err := verificationService.PendingQueue(limit)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(subs)
	})

	admin.Post("/submissions/:id/verdict", func(c *fiber.Ctx) error {
		reviewerID := c.Locals("user_id").(string)
		type Req struct {
			Approve bool   `json:"approve"`
			Reason  string `json:"reason"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		sub, err := verificationService.ReviewSubmission(reviewerID, c.Params("id"), req.Approve, req.Reason)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(sub)
	})

	admin.Post("/appeals/:id/verdict", func(c *fiber.Ctx) error {
		reviewerID := c.Locals("user_id").(string)
		type Req struct {
			Approve bool `json:"approve"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		appeal, err := verificationService.ReviewAppeal(reviewerID, c.Params("id"), req.Approve)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(appeal)
	})

	admin.Get("/reports", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		reports, err := verificationService.OpenReports(limit)
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(reports)
	})

	admin.Post("/reports/:id/resolve", func(c *fiber.Ctx) error {
		resolverID := c.Locals("user_id").(string)
		type Req struct {
			Action string `json:"action"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		report, err := verificationService.ResolveReport(resolverID, c.Params("id"), models.ReportAction(req.Action))
		if err != nil {
			return services.RespondError(c, err)
		}
		return c.JSON(report)
	})
}

// storeEvidence uploads the multipart "video" part and returns its opaque
// ref; no file attached is fine, the service rejects it where evidence is
// mandatory.
func storeEvidence(c *fiber.Ctx) (string, error) {
	video, err := c.FormFile("video")
	if err != nil || video.Size == 0 {
		return "", nil
	}
	ext := filepath.Ext(video.Filename)
	if ext == "" {
		ext = ".mp4"
	}
	key := "evidence/" + uuid.NewString() + ext
	return utils.UploadEvidence(video, key)
}
