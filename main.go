package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"greenscore-service/events"
	"greenscore-service/handlers"
	"greenscore-service/models"
	"greenscore-service/services"
	"greenscore-service/utils"
	"greenscore-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024, // bills are PDFs/photos, 25MB is plenty
	})

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.TokenTransaction{},
		&models.Challenge{},
		&models.ChallengeParticipation{},
		&models.SocialConnection{},
		&models.Referral{},
		&models.UserAchievement{},
		&models.UploadedBill{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Reward bus: redis when configured, in-process otherwise
	var bus events.Bus
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL:", err)
		}
		bus = events.NewRedisBus(redis.NewClient(opts))
		log.Println("📡 Reward events on redis pub/sub")
	} else {
		bus = events.NewMemoryBus(256)
		log.Println("📡 Reward events on in-process bus")
	}

	ledgerService := services.NewLedgerService(db, bus)
	challengeService := services.NewChallengeService(db)
	socialService := services.NewSocialService(db)
	referralService := services.NewReferralService(db, ledgerService)
	energyService := services.NewEnergyService()
	authService := services.NewAuthService(db, jwtSecret, ledgerService)
	billService := services.NewBillService(db, ledgerService, bus)
	scoreKeeper := services.NewScoreKeeper(db)
	notificationHub := services.NewNotificationHub()

	if err := challengeService.SeedCatalog(); err != nil {
		log.Fatal("failed to seed challenge catalog:", err)
	}

	rewardWorker := workers.NewRewardWorker(bus, scoreKeeper, notificationHub)
	if err := rewardWorker.Start(ctx); err != nil {
		log.Fatal("failed to start reward worker:", err)
	}

	referralService.StartRewardSweeper(5 * time.Minute)

	handlers.SetupAuthRoutes(app, authService, jwtSecret)
	handlers.SetupRewardRoutes(app, ledgerService, scoreKeeper, notificationHub, jwtSecret)
	handlers.SetupCommunityRoutes(app, challengeService, socialService, referralService)
	handlers.SetupEnergyRoutes(app, energyService, billService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "4100"
	}

	go func() {
		log.Printf("🌱 GreenScore service listening on :%s", port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatal("server error:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	if err := app.Shutdown(); err != nil {
		log.Println("shutdown error:", err)
	}
}
