package handlers

import (
	"gukina-api/middleware"
	"gukina-api/services"

	"github.com/gofiber/fiber/v2"
)

// SetupCatalogRoutes wires countries, leagues, teams, seasons and
// standings. Reads are public; writes live under /admin.
func SetupCatalogRoutes(app *fiber.App,
	countryService *services.CountryService,
	leagueService *services.LeagueService,
	teamService *services.TeamService,
	matchService *services.MatchService,
	standingsService *services.StandingsService,
) {
	// Public site
	app.Get("/countries", countryService.GetCountries)
	app.Get("/countries/:id", countryService.GetCountryByID)
	app.Get("/leagues", leagueService.GetLeagues)
	app.Get("/leagues/:id", leagueService.GetLeagueByID)
	app.Get("/leagues/:id/seasons", matchService.GetLeagueSeasons)
	app.Get("/leagues/:id/standings", standingsService.GetStandings)
	app.Get("/teams", teamService.GetTeams)
	app.Get("/teams/:id", teamService.GetTeamByID)

	// Back-office
	admin := app.Group("/admin",
		middleware.GatewayAuthMiddleware(),
		middleware.UserContextMiddleware(),
		middleware.RequireAdmin(),
	)
	admin.Post("/countries", countryService.CreateCountry)
	admin.Put("/countries/:id", countryService.UpdateCountry)
	admin.Delete("/countries/:id", countryService.DeleteCountry)

	admin.Post("/leagues", leagueService.CreateLeague)
	admin.Put("/leagues/:id", leagueService.UpdateLeague)
	admin.Delete("/leagues/:id", leagueService.DeleteLeague)
	admin.Post("/leagues/:id/standings/recalculate", standingsService.Recalculate)

	admin.Post("/teams", teamService.CreateTeam)
	admin.Put("/teams/:id", teamService.UpdateTeam)
	admin.Delete("/teams/:id", teamService.DeleteTeam)
}
