package services

import (
	"errors"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"gukina-api/models"
	"gukina-api/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type LeagueService struct {
	DB *gorm.DB
}

func NewLeagueService(db *gorm.DB) *LeagueService {
	return &LeagueService{DB: db}
}

func (s *LeagueService) CreateLeague(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	countryID := c.FormValue("country_id")
	if name == "" || countryID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and country_id are required"})
	}

	var country models.Country
	if err := s.DB.First(&country, "id = ?", countryID).Error; err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "country_id not found"})
	}

	priority := 0
	if p := c.FormValue("priority"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			priority = n
		} else {
			return c.Status(400).JSON(fiber.Map{"error": "priority must be an integer"})
		}
	}

	league := models.League{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug.Make(name),
		CountryID: countryID,
		Priority:  priority,
		IsActive:  true,
	}

	if logo, err := c.FormFile("logo"); err == nil && logo.Size > 0 {
		ext := filepath.Ext(logo.Filename)
		if ext == "" {
			ext = ".png"
		}
		url, err := utils.StoreUpload(logo, "leagues/"+uuid.NewString()+ext)
		if err != nil {
			log.Printf("[LEAGUE] logo upload failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload logo"})
		}
		league.LogoURL = url
	}

	if err := s.DB.Create(&league).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create league"})
	}
	return c.Status(201).JSON(league)
}

// GetLeagues lists leagues for the site navigation, highest priority
// first. GET /leagues?country_id=&active=true
func (s *LeagueService) GetLeagues(c *fiber.Ctx) error {
	db := s.DB.Preload("Country")
	if countryID := c.Query("country_id"); countryID != "" {
		db = db.Where("country_id = ?", countryID)
	}
	if c.Query("active") == "true" {
		db = db.Where("is_active = ?", true)
	}

	var leagues []models.League
	if err := db.Order("priority DESC, name ASC").Find(&leagues).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch leagues"})
	}
	return c.JSON(leagues)
}

func (s *LeagueService) GetLeagueByID(c *fiber.Ctx) error {
	var league models.League
	// public pages link by slug, the admin UI by id
	err := s.DB.Preload("Country").
		Where("id = ? OR slug = ?", c.Params("id"), c.Params("id")).
		First(&league).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "league not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch league"})
	}
	return c.JSON(league)
}

func (s *LeagueService) UpdateLeague(c *fiber.Ctx) error {
	var league models.League
	if err := s.DB.First(&league, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "league not found"})
	}

	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		league.Name = name
		league.Slug = slug.Make(name)
	}
	if countryID := c.FormValue("country_id"); countryID != "" {
		var country models.Country
		if err := s.DB.First(&country, "id = ?", countryID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "country_id not found"})
		}
		league.CountryID = countryID
	}
	if p := c.FormValue("priority"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "priority must be an integer"})
		}
		league.Priority = n
	}
	if active := c.FormValue("is_active"); active != "" {
		league.IsActive = strings.ToLower(active) == "true"
	}
	if logo, err := c.FormFile("logo"); err == nil && logo.Size > 0 {
		ext := filepath.Ext(logo.Filename)
		if ext == "" {
			ext = ".png"
		}
		url, err := utils.StoreUpload(logo, "leagues/"+uuid.NewString()+ext)
		if err != nil {
			log.Printf("[LEAGUE] logo upload failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload logo"})
		}
		league.LogoURL = url
	}

	if err := s.DB.Save(&league).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update league"})
	}
	return c.JSON(league)
}

func (s *LeagueService) DeleteLeague(c *fiber.Ctx) error {
	var count int64
	s.DB.Model(&models.Match{}).Where("league_id = ?", c.Params("id")).Count(&count)
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "league still has matches"})
	}

	result := s.DB.Where("id = ?", c.Params("id")).Delete(&models.League{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete league"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "league not found"})
	}
	return c.JSON(fiber.Map{"deleted": c.Params("id")})
}
