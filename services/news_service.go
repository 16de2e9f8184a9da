package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"gukina-api/models"
	"gukina-api/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type NewsService struct {
	DB *gorm.DB
}

func NewNewsService(db *gorm.DB) *NewsService {
	return &NewsService{DB: db}
}

// uniqueSlug appends a short suffix when the natural slug is taken.
func (s *NewsService) uniqueSlug(title string) string {
	base := slug.Make(title)
	var count int64
	s.DB.Model(&models.News{}).Where("slug = ?", base).Count(&count)
	if count == 0 {
		return base
	}
	return base + "-" + uuid.NewString()[:8]
}

func (s *NewsService) CreateNews(c *fiber.Ctx) error {
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title is required"})
	}

	article := models.News{
		ID:      uuid.NewString(),
		Title:   title,
		Slug:    s.uniqueSlug(title),
		Excerpt: c.FormValue("excerpt"),
		Content: c.FormValue("content"),
		Status:  "draft",
	}
	if leagueID := c.FormValue("league_id"); leagueID != "" {
		article.LeagueID = &leagueID
	}
	if teamID := c.FormValue("team_id"); teamID != "" {
		article.TeamID = &teamID
	}

	if image, err := c.FormFile("image"); err == nil && image.Size > 0 {
		ext := filepath.Ext(image.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		url, err := utils.StoreUpload(image, "news/"+uuid.NewString()+ext)
		if err != nil {
			log.Printf("[NEWS] image upload failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload image"})
		}
		article.ImageURL = url
	} else if imageURL := c.FormValue("image_url"); imageURL != "" {
		// admin pasted an external URL: import a copy so the article
		// doesn't break when the source disappears
		url, err := s.importImage(imageURL)
		if err != nil {
			log.Printf("[NEWS] image import from %s failed: %v", imageURL, err)
			return c.Status(400).JSON(fiber.Map{"error": "failed to import image from url"})
		}
		article.ImageURL = url
	}

	if err := s.DB.Create(&article).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create article"})
	}
	return c.Status(201).JSON(article)
}

// importImage downloads an external image and re-hosts it.
func (s *NewsService) importImage(srcURL string) (string, error) {
	resp, err := utils.HTTPClient.Get(srcURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("source returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20)) // 10MB cap
	if err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	ext := ".jpg"
	if strings.Contains(contentType, "png") {
		ext = ".png"
	} else if strings.Contains(contentType, "webp") {
		ext = ".webp"
	}

	key := "news/" + uuid.NewString() + ext
	if utils.R2Ready() {
		return utils.UploadBytesToR2(data, contentType, key)
	}
	return "", fmt.Errorf("image import requires R2 storage")
}

// GetPublishedNews is the public feed, newest first.
// GET /news?league_id=&team_id=&limit=20
func (s *NewsService) GetPublishedNews(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	db := s.DB.Preload("League").Preload("Team").
		Where("status = ?", "published")
	if leagueID := c.Query("league_id"); leagueID != "" {
		db = db.Where("league_id = ?", leagueID)
	}
	if teamID := c.Query("team_id"); teamID != "" {
		db = db.Where("team_id = ?", teamID)
	}

	var articles []models.News
	if err := db.Order("published_at DESC").Limit(limit).Find(&articles).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch news"})
	}
	return c.JSON(articles)
}

// GetNewsBySlug serves one published article to the public site.
func (s *NewsService) GetNewsBySlug(c *fiber.Ctx) error {
	var article models.News
	err := s.DB.Preload("League").Preload("Team").
		Where("slug = ? AND status = ?", c.Params("slug"), "published").
		First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "article not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch article"})
	}
	return c.JSON(article)
}

// GetAllNews is the admin view, every status included.
func (s *NewsService) GetAllNews(c *fiber.Ctx) error {
	var articles []models.News
	err := s.DB.Preload("League").Preload("Team").
		Order("created_at DESC").Find(&articles).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch news"})
	}
	return c.JSON(articles)
}

// applyNewsPatch applies submitted form fields to an article. A field
// that was not submitted is left alone; a submitted empty value clears
// it, so the admin can blank an excerpt or detach a league/team.
func applyNewsPatch(article *models.News, fields map[string][]string) {
	get := func(name string) (string, bool) {
		vals, ok := fields[name]
		if !ok || len(vals) == 0 {
			return "", false
		}
		return vals[0], true
	}

	if excerpt, ok := get("excerpt"); ok {
		article.Excerpt = excerpt
	}
	if content, ok := get("content"); ok {
		article.Content = content
	}
	if leagueID, ok := get("league_id"); ok {
		if leagueID == "" {
			article.LeagueID = nil
		} else {
			article.LeagueID = &leagueID
		}
	}
	if teamID, ok := get("team_id"); ok {
		if teamID == "" {
			article.TeamID = nil
		} else {
			article.TeamID = &teamID
		}
	}
}

func (s *NewsService) UpdateNews(c *fiber.Ctx) error {
	var article models.News
	if err := s.DB.First(&article, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "article not found"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	// title keeps its own handling: it cannot be cleared and a rename
	// needs a fresh unique slug
	if vals, ok := form.Value["title"]; ok && len(vals) > 0 {
		title := strings.TrimSpace(vals[0])
		if title == "" {
			return c.Status(400).JSON(fiber.Map{"error": "title cannot be empty"})
		}
		if title != article.Title {
			article.Title = title
			article.Slug = s.uniqueSlug(title)
		}
	}
	applyNewsPatch(&article, form.Value)

	if image, err := c.FormFile("image"); err == nil && image.Size > 0 {
		ext := filepath.Ext(image.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		url, err := utils.StoreUpload(image, "news/"+uuid.NewString()+ext)
		if err != nil {
			log.Printf("[NEWS] image upload failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload image"})
		}
		article.ImageURL = url
	}

	if err := s.DB.Save(&article).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update article"})
	}
	return c.JSON(article)
}

// PublishNow flips an article straight to published.
func (s *NewsService) PublishNow(c *fiber.Ctx) error {
	var article models.News
	if err := s.DB.First(&article, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "article not found"})
	}

	now := time.Now()
	article.Status = "published"
	article.PublishAt = nil
	article.PublishedAt = &now
	if err := s.DB.Save(&article).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to publish article"})
	}
	return c.JSON(article)
}

// SchedulePublish queues an article for the publish scheduler.
// POST /admin/news/:id/publish/schedule {"publish_at": "2026-09-01T08:00:00Z"}
func (s *NewsService) SchedulePublish(c *fiber.Ctx) error {
	var article models.News
	if err := s.DB.First(&article, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "article not found"})
	}

	var input struct {
		PublishAt time.Time `json:"publish_at"`
	}
	if err := c.BodyParser(&input); err != nil || input.PublishAt.IsZero() {
		return c.Status(400).JSON(fiber.Map{"error": "publish_at is required (RFC3339)"})
	}
	if input.PublishAt.Before(time.Now()) {
		return c.Status(400).JSON(fiber.Map{"error": "publish_at must be in the future"})
	}

	article.Status = "scheduled"
	article.PublishAt = &input.PublishAt
	if err := s.DB.Save(&article).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to schedule article"})
	}
	return c.JSON(article)
}

func (s *NewsService) CancelScheduledPublish(c *fiber.Ctx) error {
	var article models.News
	if err := s.DB.First(&article, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "article not found"})
	}
	if article.Status != "scheduled" {
		return c.Status(400).JSON(fiber.Map{"error": "article is not scheduled"})
	}

	article.Status = "draft"
	article.PublishAt = nil
	if err := s.DB.Save(&article).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to cancel schedule"})
	}
	return c.JSON(article)
}

func (s *NewsService) DeleteNews(c *fiber.Ctx) error {
	result := s.DB.Where("id = ?", c.Params("id")).Delete(&models.News{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete article"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "article not found"})
	}
	return c.JSON(fiber.Map{"deleted": c.Params("id")})
}
