package handlers

import (
	"gukina-api/middleware"
	"gukina-api/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	// Public site
	app.Get("/matches", matchService.GetMatches)
	app.Get("/matches/live", matchService.GetLiveMatches)
	app.Get("/matches/:id", matchService.GetMatchByID)
	app.Get("/matches/:id/live", matchService.StreamLiveMinute) // SSE

	// Back-office
	admin := app.Group("/admin",
		middleware.GatewayAuthMiddleware(),
		middleware.UserContextMiddleware(),
		middleware.RequireAdmin(),
	)
	admin.Post("/matches", matchService.CreateMatch)
	admin.Put("/matches/:id", matchService.UpdateMatch)
	admin.Patch("/matches/:id/status", matchService.UpdateMatchStatus)
	admin.Patch("/matches/:id/score", matchService.UpdateMatchScore)
	admin.Delete("/matches/:id", matchService.DeleteMatch)

	admin.Post("/matches/:id/events", matchService.AddMatchEvent)
	admin.Delete("/matches/:id/events/:event_id", matchService.DeleteMatchEvent)
}
