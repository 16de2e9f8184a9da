package services

import (
	"errors"
	"log"
	"path/filepath"
	"strings"

	"gukina-api/models"
	"gukina-api/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"gorm.io/gorm"
)

type TeamService struct {
	DB *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{DB: db}
}

// searchKey folds accents away so "São Paulo" is found by "sao".
func searchKey(name string) string {
	return strings.ToLower(unidecode.Unidecode(name))
}

func (s *TeamService) CreateTeam(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	countryID := c.FormValue("country_id")
	if name == "" || countryID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and country_id are required"})
	}

	var country models.Country
	if err := s.DB.First(&country, "id = ?", countryID).Error; err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "country_id not found"})
	}

	team := models.Team{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug.Make(name),
		ShortName: strings.ToUpper(strings.TrimSpace(c.FormValue("short_name"))),
		SearchKey: searchKey(name),
		CountryID: countryID,
	}
	if leagueID := c.FormValue("league_id"); leagueID != "" {
		var league models.League
		if err := s.DB.First(&league, "id = ?", leagueID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "league_id not found"})
		}
		team.LeagueID = &leagueID
	}

	if logo, err := c.FormFile("logo"); err == nil && logo.Size > 0 {
		ext := filepath.Ext(logo.Filename)
		if ext == "" {
			ext = ".png"
		}
		url, err := utils.StoreUpload(logo, "teams/"+uuid.NewString()+ext)
		if err != nil {
			log.Printf("[TEAM] logo upload failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload logo"})
		}
		team.LogoURL = url
	}

	if err := s.DB.Create(&team).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create team"})
	}
	return c.Status(201).JSON(team)
}

// GetTeams lists teams, optionally filtered by league or a search
// query. GET /teams?league_id=&q=
func (s *TeamService) GetTeams(c *fiber.Ctx) error {
	db := s.DB.Preload("Country").Preload("League")
	if leagueID := c.Query("league_id"); leagueID != "" {
		db = db.Where("league_id = ?", leagueID)
	}
	if q := c.Query("q"); q != "" {
		db = db.Where("search_key LIKE ?", "%"+searchKey(q)+"%")
	}

	var teams []models.Team
	if err := db.Order("name ASC").Limit(200).Find(&teams).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch teams"})
	}
	return c.JSON(teams)
}

func (s *TeamService) GetTeamByID(c *fiber.Ctx) error {
	var team models.Team
	err := s.DB.Preload("Country").Preload("League").
		Where("id = ? OR slug = ?", c.Params("id"), c.Params("id")).
		First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "team not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch team"})
	}
	return c.JSON(team)
}

func (s *TeamService) UpdateTeam(c *fiber.Ctx) error {
	var team models.Team
	if err := s.DB.First(&team, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "team not found"})
	}

	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		team.Name = name
		team.Slug = slug.Make(name)
		team.SearchKey = searchKey(name)
	}
	if short := c.FormValue("short_name"); short != "" {
		team.ShortName = strings.ToUpper(strings.TrimSpace(short))
	}
	if leagueID := c.FormValue("league_id"); leagueID != "" {
		var league models.League
		if err := s.DB.First(&league, "id = ?", leagueID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "league_id not found"})
		}
		team.LeagueID = &leagueID
	}
	if countryID := c.FormValue("country_id"); countryID != "" {
		var country models.Country
		if err := s.DB.First(&country, "id = ?", countryID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "country_id not found"})
		}
		team.CountryID = countryID
	}
	if logo, err := c.FormFile("logo"); err == nil && logo.Size > 0 {
		ext := filepath.Ext(logo.Filename)
		if ext == "" {
			ext = ".png"
		}
		url, err := utils.StoreUpload(logo, "teams/"+uuid.NewString()+ext)
		if err != nil {
			log.Printf("[TEAM] logo upload failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload logo"})
		}
		team.LogoURL = url
	}

	if err := s.DB.Save(&team).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update team"})
	}
	return c.JSON(team)
}

func (s *TeamService) DeleteTeam(c *fiber.Ctx) error {
	var count int64
	s.DB.Model(&models.Match{}).
		Where("home_team_id = ? OR away_team_id = ?", c.Params("id"), c.Params("id")).
		Count(&count)
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "team still has matches"})
	}

	result := s.DB.Where("id = ?", c.Params("id")).Delete(&models.Team{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete team"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "team not found"})
	}
	return c.JSON(fiber.Map{"deleted": c.Params("id")})
}
