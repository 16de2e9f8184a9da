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
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type CountryService struct {
	DB *gorm.DB
}

func NewCountryService(db *gorm.DB) *CountryService {
	return &CountryService{DB: db}
}

var titleCaser = cases.Title(language.English)

// normalizeCountryName keeps stored names consistent regardless of how
// the admin typed them ("rwanda" → "Rwanda").
func normalizeCountryName(name string) string {
	return titleCaser.String(strings.TrimSpace(name))
}

func (s *CountryService) CreateCountry(c *fiber.Ctx) error {
	name := normalizeCountryName(c.FormValue("name"))
	code := strings.ToUpper(strings.TrimSpace(c.FormValue("code")))
	if name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	country := models.Country{
		ID:   uuid.NewString(),
		Name: name,
		Code: code,
	}

	if flag, err := c.FormFile("flag"); err == nil && flag.Size > 0 {
		ext := filepath.Ext(flag.Filename)
		if ext == "" {
			ext = ".png"
		}
		url, err := utils.StoreUpload(flag, "flags/"+uuid.NewString()+ext)
		if err != nil {
			log.Printf("[COUNTRY] flag upload failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload flag"})
		}
		country.FlagURL = url
	}

	if err := s.DB.Create(&country).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create country"})
	}
	return c.Status(201).JSON(country)
}

func (s *CountryService) GetCountries(c *fiber.Ctx) error {
	var countries []models.Country
	if err := s.DB.Order("name ASC").Find(&countries).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch countries"})
	}
	return c.JSON(countries)
}

func (s *CountryService) GetCountryByID(c *fiber.Ctx) error {
	var country models.Country
	err := s.DB.Preload("Leagues", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true).Order("priority DESC")
	}).First(&country, "id = ?", c.Params("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "country not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch country"})
	}
	return c.JSON(country)
}

func (s *CountryService) UpdateCountry(c *fiber.Ctx) error {
	var country models.Country
	if err := s.DB.First(&country, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "country not found"})
	}

	if name := c.FormValue("name"); name != "" {
		country.Name = normalizeCountryName(name)
	}
	if code := c.FormValue("code"); code != "" {
		country.Code = strings.ToUpper(strings.TrimSpace(code))
	}
	if flag, err := c.FormFile("flag"); err == nil && flag.Size > 0 {
		ext := filepath.Ext(flag.Filename)
		if ext == "" {
			ext = ".png"
		}
		url, err := utils.StoreUpload(flag, "flags/"+uuid.NewString()+ext)
		if err != nil {
			log.Printf("[COUNTRY] flag upload failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload flag"})
		}
		country.FlagURL = url
	}

	if err := s.DB.Save(&country).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update country"})
	}
	return c.JSON(country)
}

func (s *CountryService) DeleteCountry(c *fiber.Ctx) error {
	var count int64
	s.DB.Model(&models.League{}).Where("country_id = ?", c.Params("id")).Count(&count)
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "country still has leagues"})
	}

	result := s.DB.Where("id = ?", c.Params("id")).Delete(&models.Country{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete country"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "country not found"})
	}
	return c.JSON(fiber.Map{"deleted": c.Params("id")})
}
