package workers

import (
	"context"
	"log"
	"time"

	"gukina-api/models"
	"gukina-api/services"

	"gorm.io/gorm"
)

// LiveMinuteWorker keeps stored match minutes and standings live-flags
// in sync while matches are in play. The SSE stream and site clients
// derive the minute locally; this worker only refreshes the persisted
// fallback (current_minute) and the is_live columns.
type LiveMinuteWorker struct {
	DB *gorm.DB
}

func NewLiveMinuteWorker(db *gorm.DB) *LiveMinuteWorker {
	return &LiveMinuteWorker{DB: db}
}

// PollLiveMatches runs until ctx is canceled.
func PollLiveMatches(ctx context.Context, w *LiveMinuteWorker, pollInterval time.Duration) {
	log.Println("Starting live minute polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Live minute polling stopped.")
			return
		case <-ticker.C:
			if err := w.sweep(); err != nil {
				log.Printf("[LIVE] sweep failed: %v", err)
			}
		}
	}
}

func (w *LiveMinuteWorker) sweep() error {
	var matches []models.Match
	err := w.DB.
		Where("status IN ?", []string{models.StatusLive, models.StatusHalftime}).
		Find(&matches).Error
	if err != nil {
		return err
	}

	now := time.Now()
	type scopeKey struct{ league, season string }
	liveByScope := make(map[scopeKey]map[string]bool)

	for i := range matches {
		m := &matches[i]

		minute := services.ComputeLiveMinute(m, now)
		if minute != m.CurrentMinute {
			if err := w.DB.Model(&models.Match{}).Where("id = ?", m.ID).
				Update("current_minute", minute).Error; err != nil {
				log.Printf("[LIVE] failed to persist minute for %s: %v", m.ID, err)
			}
		}

		if m.IsLeagued() && m.LeagueID != nil {
			key := scopeKey{*m.LeagueID, m.Season}
			if liveByScope[key] == nil {
				liveByScope[key] = make(map[string]bool)
			}
			if m.HomeTeamID != nil {
				liveByScope[key][*m.HomeTeamID] = true
			}
			if m.AwayTeamID != nil {
				liveByScope[key][*m.AwayTeamID] = true
			}
		}
	}

	// clear stale flags first, then raise the current ones
	if err := w.DB.Model(&models.Standing{}).Where("is_live = ?", true).
		Update("is_live", false).Error; err != nil {
		return err
	}
	for key, teams := range liveByScope {
		ids := make([]string, 0, len(teams))
		for id := range teams {
			ids = append(ids, id)
		}
		err := w.DB.Model(&models.Standing{}).
			Where("league_id = ? AND season = ? AND team_id IN ?", key.league, key.season, ids).
			Update("is_live", true).Error
		if err != nil {
			log.Printf("[LIVE] failed to flag live teams league=%s season=%s: %v", key.league, key.season, err)
		}
	}
	return nil
}
