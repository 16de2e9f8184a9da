package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gukina-api/handlers"
	"gukina-api/models"
	"gukina-api/services"
	"gukina-api/utils"
	"gukina-api/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // 32MB, enough for logo/news uploads
	})

	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
	}))

	// CORS for the SPA frontend
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	origins := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// short-lived cache for public GETs; admin routes and the SSE
	// stream bypass it
	app.Use(cache.New(cache.Config{
		Expiration: 10 * time.Second,
		Next: func(c *fiber.Ctx) bool {
			if c.Method() != fiber.MethodGet {
				return true
			}
			path := c.Path()
			return strings.HasPrefix(path, "/admin") || strings.HasSuffix(path, "/live")
		},
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Country{},
		&models.League{},
		&models.Team{},
		&models.Match{},
		&models.MatchEvent{},
		&models.Standing{},
		&models.News{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.InitR2(); err != nil {
		log.Printf("R2 disabled, falling back to local uploads: %v", err)
	}
	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	standingsService := services.NewStandingsService(db)
	defer standingsService.Close()
	countryService := services.NewCountryService(db)
	leagueService := services.NewLeagueService(db)
	teamService := services.NewTeamService(db)
	matchService := services.NewMatchService(db, standingsService)
	newsService := services.NewNewsService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	liveWorker := workers.NewLiveMinuteWorker(db)
	go workers.PollLiveMatches(ctx, liveWorker, 30*time.Second)

	auditWorker := workers.NewStandingsAuditWorker(db, standingsService)
	auditWorker.Start(ctx)

	publishScheduler := newsService.StartPublishScheduler()
	defer func() {
		if err := publishScheduler.Shutdown(); err != nil {
			log.Printf("scheduler shutdown: %v", err)
		}
	}()

	handlers.SetupCatalogRoutes(app, countryService, leagueService, teamService, matchService, standingsService)
	handlers.SetupMatchRoutes(app, matchService)
	handlers.SetupNewsRoutes(app, newsService)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server running on http://localhost:%s", port)
	log.Println("Live minute polling running (every 30s)")
	log.Println("Standings audit worker running")
	log.Println("News publish scheduler running")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
