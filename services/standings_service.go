package services

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"gukina-api/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrRecalcInProgress is returned when a second recalculation is
// requested for a (league, season) scope that is already being rebuilt.
var ErrRecalcInProgress = errors.New("recalculation already in progress for this league and season")

type StandingsService struct {
	DB    *gorm.DB
	cache *QueryCache

	mu     sync.Mutex
	scopes map[string]*sync.Mutex
}

func NewStandingsService(db *gorm.DB) *StandingsService {
	return &StandingsService{
		DB:     db,
		cache:  NewQueryCache(30 * time.Second),
		scopes: make(map[string]*sync.Mutex),
	}
}

// Close releases the service's cache resources.
func (s *StandingsService) Close() {
	s.cache.Close()
}

// scopeLock returns the mutex serializing writes for one league+season.
// Different scopes lock independently.
func (s *StandingsService) scopeLock(leagueID, season string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := leagueID + "|" + season
	lock, ok := s.scopes[key]
	if !ok {
		lock = &sync.Mutex{}
		s.scopes[key] = lock
	}
	return lock
}

// ---------------------------------------------------------------------
// Pure table computation
// ---------------------------------------------------------------------

// applyResultToRow folds one finished match into a team's row.
func applyResultToRow(row *models.Standing, scored, conceded int) {
	row.Played++
	row.GoalsFor += scored
	row.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		row.Won++
		row.AppendForm('W')
	case scored < conceded:
		row.Lost++
		row.AppendForm('L')
	default:
		row.Drawn++
		row.AppendForm('D')
	}
	row.Points = row.Won*3 + row.Drawn
}

// foldable filters what the fold accepts: ended, leagued, with both
// team references present. Anything else is skipped with a log line —
// one bad row must not abort a whole rebuild.
func foldable(m *models.Match) bool {
	if !m.IsLeagued() || m.Status != models.StatusEnded {
		return false
	}
	if m.HomeTeamID == nil || m.AwayTeamID == nil || m.LeagueID == nil || m.Season == "" {
		log.Printf("[STANDINGS] skipping malformed match %s (missing references)", m.ID)
		return false
	}
	return true
}

// BuildTable folds ended matches (in the given order — callers pass
// them sorted by match date ascending so form comes out chronological)
// into a ranked table for one league+season. teamNames is used for the
// deterministic final tie-break.
func BuildTable(leagueID, season string, matches []models.Match, teamNames map[string]string) []models.Standing {
	index := make(map[string]*models.Standing)
	row := func(teamID string) *models.Standing {
		r, ok := index[teamID]
		if !ok {
			r = &models.Standing{LeagueID: leagueID, Season: season, TeamID: teamID}
			index[teamID] = r
		}
		return r
	}

	for i := range matches {
		m := &matches[i]
		if !foldable(m) {
			continue
		}
		applyResultToRow(row(*m.HomeTeamID), m.HomeScore, m.AwayScore)
		applyResultToRow(row(*m.AwayTeamID), m.AwayScore, m.HomeScore)
	}

	rows := make([]models.Standing, 0, len(index))
	for _, r := range index {
		rows = append(rows, *r)
	}
	RankTable(rows, teamNames)
	return rows
}

// RankTable sorts rows by points, then goal difference, then goals
// scored, then team name (team ID as a last resort), and assigns
// 1-based positions. It also fills the derived goal difference.
func RankTable(rows []models.Standing, teamNames map[string]string) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Diff() != b.Diff() {
			return a.Diff() > b.Diff()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		an, bn := teamNames[a.TeamID], teamNames[b.TeamID]
		if an != bn {
			return an < bn
		}
		return a.TeamID < b.TeamID
	})
	for i := range rows {
		rows[i].Position = i + 1
		rows[i].GoalDifference = rows[i].Diff()
	}
}

// ---------------------------------------------------------------------
// Storage-backed operations
// ---------------------------------------------------------------------

func scopeTeamNames(tx *gorm.DB, matches []models.Match) (map[string]string, error) {
	idSet := make(map[string]bool)
	for i := range matches {
		if matches[i].HomeTeamID != nil {
			idSet[*matches[i].HomeTeamID] = true
		}
		if matches[i].AwayTeamID != nil {
			idSet[*matches[i].AwayTeamID] = true
		}
	}
	names := make(map[string]string, len(idSet))
	if len(idSet) == 0 {
		return names, nil
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	var teams []models.Team
	if err := tx.Where("id IN ?", ids).Find(&teams).Error; err != nil {
		return nil, err
	}
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	return names, nil
}

// ComputeScopeTable rebuilds the table for a scope in memory, without
// writing anything. Used by the recalculation path and the audit worker.
func ComputeScopeTable(tx *gorm.DB, leagueID, season string) ([]models.Standing, error) {
	var matches []models.Match
	err := tx.
		Where("league_id = ? AND season = ? AND kind = ? AND status = ?",
			leagueID, season, models.MatchKindLeagued, models.StatusEnded).
		Order("match_date ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	names, err := scopeTeamNames(tx, matches)
	if err != nil {
		return nil, err
	}
	return BuildTable(leagueID, season, matches, names), nil
}

// RecalculateStandings deletes and rebuilds every standing row for one
// league+season from the stored ended matches. This is the
// authoritative path: it cannot drift from the match records. An empty
// result (no ended matches yet) is valid, not an error.
func (s *StandingsService) RecalculateStandings(leagueID, season string) ([]models.Standing, error) {
	lock := s.scopeLock(leagueID, season)
	if !lock.TryLock() {
		return nil, ErrRecalcInProgress
	}
	defer lock.Unlock()

	var rows []models.Standing
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// delete-then-insert inside one transaction: a failure cannot
		// leave the scope with an empty table
		if err := tx.Unscoped().
			Where("league_id = ? AND season = ?", leagueID, season).
			Delete(&models.Standing{}).Error; err != nil {
			return err
		}
		var err error
		rows, err = ComputeScopeTable(tx, leagueID, season)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	s.cache.Clear()
	log.Printf("[STANDINGS] recalculated league=%s season=%s (%d rows)", leagueID, season, len(rows))
	return rows, nil
}

// ApplyMatchResult folds one match into the stored table incrementally.
// Policy: it fires only once, when the match reaches "ended" — live
// score changes do not touch the counters (the site derives live state
// separately). Re-applying the same ended match double-counts, so score
// corrections after full time go through RecalculateStandings instead.
func (s *StandingsService) ApplyMatchResult(m *models.Match) error {
	if m == nil || !m.IsLeagued() || m.Status != models.StatusEnded {
		return nil
	}
	if m.HomeTeamID == nil || m.AwayTeamID == nil || m.LeagueID == nil || m.Season == "" {
		log.Printf("[STANDINGS] ignoring malformed match %s on incremental update", m.ID)
		return nil
	}

	leagueID, season := *m.LeagueID, m.Season
	lock := s.scopeLock(leagueID, season)
	lock.Lock()
	defer lock.Unlock()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		upsert := func(teamID string, scored, conceded int) error {
			var row models.Standing
			err := tx.Where("league_id = ? AND season = ? AND team_id = ?", leagueID, season, teamID).
				First(&row).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				row = models.Standing{LeagueID: leagueID, Season: season, TeamID: teamID}
			} else if err != nil {
				return err
			}
			applyResultToRow(&row, scored, conceded)
			return tx.Save(&row).Error
		}

		if err := upsert(*m.HomeTeamID, m.HomeScore, m.AwayScore); err != nil {
			return err
		}
		if err := upsert(*m.AwayTeamID, m.AwayScore, m.HomeScore); err != nil {
			return err
		}
		return s.reposition(tx, leagueID, season)
	})
	if err != nil {
		return err
	}

	s.cache.Clear()
	return nil
}

// reposition re-ranks every stored row in the scope after an update.
func (s *StandingsService) reposition(tx *gorm.DB, leagueID, season string) error {
	var rows []models.Standing
	if err := tx.Where("league_id = ? AND season = ?", leagueID, season).Find(&rows).Error; err != nil {
		return err
	}
	var teams []models.Team
	names := make(map[string]string)
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.TeamID)
	}
	if len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&teams).Error; err != nil {
			return err
		}
		for _, t := range teams {
			names[t.ID] = t.Name
		}
	}
	RankTable(rows, names)
	for _, r := range rows {
		if err := tx.Model(&models.Standing{}).Where("id = ?", r.ID).
			Update("position", r.Position).Error; err != nil {
			return err
		}
	}
	return nil
}

// liveTeams returns the set of team IDs with a match currently in play
// inside the scope.
func (s *StandingsService) liveTeams(leagueID, season string) (map[string]bool, error) {
	var matches []models.Match
	err := s.DB.
		Where("league_id = ? AND season = ? AND kind = ? AND status IN ?",
			leagueID, season, models.MatchKindLeagued,
			[]string{models.StatusLive, models.StatusHalftime}).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	live := make(map[string]bool)
	for i := range matches {
		if matches[i].HomeTeamID != nil {
			live[*matches[i].HomeTeamID] = true
		}
		if matches[i].AwayTeamID != nil {
			live[*matches[i].AwayTeamID] = true
		}
	}
	return live, nil
}

// ---------------------------------------------------------------------
// HTTP handlers
// ---------------------------------------------------------------------

// GetStandings returns the ranked table for a league+season.
// GET /leagues/:id/standings?season=2024
func (s *StandingsService) GetStandings(c *fiber.Ctx) error {
	leagueID := c.Params("id")
	season := c.Query("season", CurrentSeason(time.Now()))

	key := CacheKey("standings", []string{leagueID, season})
	if cached, ok := s.cache.Get(key); ok {
		return c.JSON(cached)
	}

	var rows []models.Standing
	err := s.DB.Preload("Team").
		Where("league_id = ? AND season = ?", leagueID, season).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		log.Printf("[STANDINGS] fetch failed league=%s season=%s: %v", leagueID, season, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch standings"})
	}

	live, err := s.liveTeams(leagueID, season)
	if err != nil {
		log.Printf("[STANDINGS] live lookup failed league=%s season=%s: %v", leagueID, season, err)
		live = map[string]bool{}
	}
	for i := range rows {
		rows[i].GoalDifference = rows[i].Diff()
		rows[i].IsLive = live[rows[i].TeamID]
	}

	// an empty table is a valid response: the season may simply have no
	// ended matches yet
	s.cache.Set(key, rows)
	return c.JSON(rows)
}

// Recalculate is the admin recovery action for a scope that looks
// wrong or is missing. POST /admin/leagues/:id/standings/recalculate?season=2024
func (s *StandingsService) Recalculate(c *fiber.Ctx) error {
	leagueID := c.Params("id")
	season := c.Query("season", CurrentSeason(time.Now()))

	rows, err := s.RecalculateStandings(leagueID, season)
	if err != nil {
		if errors.Is(err, ErrRecalcInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("[STANDINGS] recalculation failed league=%s season=%s: %v", leagueID, season, err)
		return c.Status(500).JSON(fiber.Map{"error": "recalculation failed"})
	}
	return c.JSON(fiber.Map{
		"league_id": leagueID,
		"season":    season,
		"rows":      len(rows),
		"standings": rows,
	})
}
