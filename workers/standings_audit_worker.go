package workers

import (
	"context"
	"log"
	"time"

	"gukina-api/models"
	"gukina-api/services"

	"gorm.io/gorm"
)

// StandingsAuditWorker periodically compares stored standings against a
// fresh fold of the ended matches for each scope and rebuilds any scope
// that has drifted (edited matches, partial writes, missed updates).
type StandingsAuditWorker struct {
	db        *gorm.DB
	standings *services.StandingsService
	interval  time.Duration
}

func NewStandingsAuditWorker(db *gorm.DB, standings *services.StandingsService) *StandingsAuditWorker {
	return &StandingsAuditWorker{
		db:        db,
		standings: standings,
		interval:  1 * time.Hour,
	}
}

func (w *StandingsAuditWorker) Start(ctx context.Context) {
	log.Println("Starting standings audit worker...")
	go w.run(ctx)
}

func (w *StandingsAuditWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.sweep(); err != nil {
				log.Printf("[AUDIT] sweep failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("Standings audit worker stopped")
			return
		}
	}
}

type standingsScope struct {
	LeagueID string
	Season   string
}

func (w *StandingsAuditWorker) sweep() error {
	var scopes []standingsScope
	err := w.db.Model(&models.Match{}).
		Select("league_id, season").
		Where("kind = ? AND status = ? AND league_id IS NOT NULL", models.MatchKindLeagued, models.StatusEnded).
		Group("league_id, season").
		Scan(&scopes).Error
	if err != nil {
		return err
	}

	var drifted int
	for _, scope := range scopes {
		ok, err := w.scopeConsistent(scope.LeagueID, scope.Season)
		if err != nil {
			log.Printf("[AUDIT] check failed league=%s season=%s: %v", scope.LeagueID, scope.Season, err)
			continue
		}
		if ok {
			continue
		}

		drifted++
		log.Printf("[AUDIT] drift detected league=%s season=%s, rebuilding", scope.LeagueID, scope.Season)
		if _, err := w.standings.RecalculateStandings(scope.LeagueID, scope.Season); err != nil {
			log.Printf("[AUDIT] rebuild failed league=%s season=%s: %v", scope.LeagueID, scope.Season, err)
		}
	}

	if drifted > 0 {
		log.Printf("[AUDIT] swept %d scope(s), rebuilt %d", len(scopes), drifted)
	}
	return nil
}

// scopeConsistent refolds the scope in memory and compares the counter
// columns against the stored rows.
func (w *StandingsAuditWorker) scopeConsistent(leagueID, season string) (bool, error) {
	expected, err := services.ComputeScopeTable(w.db, leagueID, season)
	if err != nil {
		return false, err
	}

	var stored []models.Standing
	err = w.db.Where("league_id = ? AND season = ?", leagueID, season).Find(&stored).Error
	if err != nil {
		return false, err
	}

	if len(expected) != len(stored) {
		return false, nil
	}

	byTeam := make(map[string]models.Standing, len(stored))
	for _, r := range stored {
		byTeam[r.TeamID] = r
	}
	for _, e := range expected {
		s, ok := byTeam[e.TeamID]
		if !ok {
			return false, nil
		}
		if s.Played != e.Played || s.Won != e.Won || s.Drawn != e.Drawn || s.Lost != e.Lost ||
			s.GoalsFor != e.GoalsFor || s.GoalsAgainst != e.GoalsAgainst ||
			s.Points != e.Points || s.Position != e.Position {
			return false, nil
		}
	}
	return true, nil
}
