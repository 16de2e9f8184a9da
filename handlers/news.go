package handlers

import (
	"gukina-api/middleware"
	"gukina-api/services"

	"github.com/gofiber/fiber/v2"
)

func SetupNewsRoutes(app *fiber.App, newsService *services.NewsService) {
	// Public site (published articles only)
	app.Get("/news", newsService.GetPublishedNews)
	app.Get("/news/:slug", newsService.GetNewsBySlug)

	// Back-office
	admin := app.Group("/admin",
		middleware.GatewayAuthMiddleware(),
		middleware.UserContextMiddleware(),
		middleware.RequireAdmin(),
	)
	admin.Get("/news", newsService.GetAllNews)
	admin.Post("/news", newsService.CreateNews)
	admin.Put("/news/:id", newsService.UpdateNews)
	admin.Delete("/news/:id", newsService.DeleteNews)

	admin.Post("/news/:id/publish/now", newsService.PublishNow)
	admin.Post("/news/:id/publish/schedule", newsService.SchedulePublish)
	admin.Post("/news/:id/publish/cancel", newsService.CancelScheduledPublish)
}
