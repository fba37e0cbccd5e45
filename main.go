package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fitness-arena-system/handlers"
	"fitness-arena-system/middleware"
	"fitness-arena-system/models"
	"fitness-arena-system/services"
	"fitness-arena-system/utils"
	"fitness-arena-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 512 * 1024 * 1024, // evidence videos
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Probed directly by the deployment, exempt from gateway auth.
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitEvidenceStore(); err != nil {
		log.Fatal("failed to initialize evidence store:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Athlete{},
		&models.WorkoutEntry{},
		&models.Submission{},
		&models.Appeal{},
		&models.Report{},
		&models.Challenge{},
		&models.ChallengeParticipation{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	events := services.NewEventBus(256)

	athleteService := services.NewAthleteService(db)
	workoutService := services.NewWorkoutService(db)
	leaderboardService := services.NewLeaderboardService(db)
	challengeService := services.NewChallengeService(db, events)
	verificationService := services.NewVerificationService(db, events)
	verificationService.RemoveEvidence = utils.DeleteEvidence

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := workers.NewNotifierClient()
	go workers.Run(ctx, notifier, events.Events())

	challengeService.StartChallengeScheduler()

	// ✅ Setup routes — enforced Gateway auth + consistent /s/ prefix
	handlers.SetupAthleteRoutes(app, athleteService, leaderboardService)
	handlers.SetupWorkoutRoutes(app, workoutService)
	handlers.SetupSubmissionRoutes(app, verificationService)
	handlers.SetupChallengeRoutes(app, challengeService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Challenge scheduler running (window sweep every 1m, weekly reset Mon 00:00 UTC)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	// Drain in-flight requests first: handlers publish to the bus, so it must
	// outlive the listener.
	if err := app.Shutdown(); err != nil {
		log.Printf("⚠️ server shutdown: %v", err)
	}
	events.Close()
}
