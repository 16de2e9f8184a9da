// services/scheduler.go
package services

import (
	"log"
	"time"

	"gukina-api/models"

	"github.com/go-co-op/gocron/v2"
)

// StartPublishScheduler publishes scheduled news articles when their
// time arrives. The returned scheduler is shut down by the caller.
func (s *NewsService) StartPublishScheduler() gocron.Scheduler {
	sched, _ := gocron.NewScheduler()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var articles []models.News
			now := time.Now()
			err := s.DB.Where("status = ? AND publish_at <= ?", "scheduled", now).
				Find(&articles).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, a := range articles {
				a.Status = "published"
				a.PublishAt = nil
				a.PublishedAt = &now
				if err := s.DB.Save(&a).Error; err != nil {
					log.Printf("[Scheduler] Failed to publish article %s: %v", a.ID, err)
				} else {
					log.Printf("[Scheduler] Auto-published article: %s", a.Title)
				}
			}
		}),
	)

	sched.Start()
	return sched
}
