package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gukina-api/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatchService struct {
	DB        *gorm.DB
	Standings *StandingsService
}

func NewMatchService(db *gorm.DB, standings *StandingsService) *MatchService {
	return &MatchService{DB: db, Standings: standings}
}

// CurrentSeason is the default season key when a request omits one.
func CurrentSeason(now time.Time) string {
	return strconv.Itoa(now.Year())
}

// FallbackSeasons is shown for a league with no matches recorded yet:
// the current year and the three before it, newest first.
func FallbackSeasons(now time.Time) []string {
	seasons := make([]string, 0, 4)
	for y := now.Year(); y > now.Year()-4; y-- {
		seasons = append(seasons, strconv.Itoa(y))
	}
	return seasons
}

// ApplyStatusTransition mutates a match for an admin-triggered status
// change, recording the timestamps the live clock derives from.
func ApplyStatusTransition(m *models.Match, newStatus string, now time.Time) error {
	if _, ok := models.StatusDescriptors[newStatus]; !ok {
		return errors.New("unknown match status")
	}
	if m.Status == models.StatusEnded {
		return errors.New("match already ended")
	}
	if newStatus == m.Status {
		return nil
	}

	switch newStatus {
	case models.StatusLive:
		t := now
		if m.Status == models.StatusHalftime {
			// second-half restart
			m.HalfTimeStartTime = &t
		} else if m.LiveStartTime == nil {
			m.LiveStartTime = &t
		}
	case models.StatusHalftime, models.StatusEnded:
		// freeze the derived minute before the clock stops
		m.CurrentMinute = ComputeLiveMinute(m, now)
	}
	m.Status = newStatus
	return nil
}

// ---------------------------------------------------------------------
// CRUD
// ---------------------------------------------------------------------

func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	var match models.Match
	if err := c.BodyParser(&match); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	match.ID = uuid.NewString()
	if match.Kind == "" {
		match.Kind = models.MatchKindLeagued
	}
	if match.Status == "" {
		match.Status = models.StatusNotStarted
	}
	if match.Season == "" {
		match.Season = CurrentSeason(time.Now())
	}
	if err := match.Validate(); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	if match.IsLeagued() {
		if err := s.checkReferences(&match); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
	}

	if err := s.DB.Create(&match).Error; err != nil {
		log.Printf("[MATCH] create failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create match"})
	}

	// admins sometimes enter finished fixtures directly
	if err := s.Standings.ApplyMatchResult(&match); err != nil {
		log.Printf("[MATCH] standings update failed for %s: %v", match.ID, err)
	}

	match.Decorate(ComputeLiveMinute(&match, time.Now()))
	return c.Status(201).JSON(match)
}

func (s *MatchService) checkReferences(m *models.Match) error {
	var league models.League
	if err := s.DB.First(&league, "id = ?", *m.LeagueID).Error; err != nil {
		return errors.New("league_id not found")
	}
	var count int64
	s.DB.Model(&models.Team{}).Where("id IN ?", []string{*m.HomeTeamID, *m.AwayTeamID}).Count(&count)
	if count != 2 {
		return errors.New("home_team_id or away_team_id not found")
	}
	return nil
}

// GetMatches lists matches with optional filters.
// GET /matches?league_id=&season=&status=&team_id=&date=2024-05-12
func (s *MatchService) GetMatches(c *fiber.Ctx) error {
	db := s.DB.Preload("HomeTeam").Preload("AwayTeam").Preload("League")

	if leagueID := c.Query("league_id"); leagueID != "" {
		db = db.Where("league_id = ?", leagueID)
	}
	if season := c.Query("season"); season != "" {
		db = db.Where("season = ?", season)
	}
	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}
	if teamID := c.Query("team_id"); teamID != "" {
		db = db.Where("home_team_id = ? OR away_team_id = ?", teamID, teamID)
	}
	if dateStr := c.Query("date"); dateStr != "" {
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid date (use YYYY-MM-DD)"})
		}
		db = db.Where("match_date >= ? AND match_date < ?", day, day.AddDate(0, 0, 1))
	}

	var matches []models.Match
	if err := db.Order("match_date ASC").Find(&matches).Error; err != nil {
		log.Printf("[MATCH] list failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch matches"})
	}

	now := time.Now()
	for i := range matches {
		matches[i].Decorate(ComputeLiveMinute(&matches[i], now))
	}
	return c.JSON(matches)
}

// GetLiveMatches returns every match currently in play.
func (s *MatchService) GetLiveMatches(c *fiber.Ctx) error {
	var matches []models.Match
	err := s.DB.Preload("HomeTeam").Preload("AwayTeam").Preload("League").
		Where("status IN ?", []string{models.StatusLive, models.StatusHalftime}).
		Order("match_date ASC").
		Find(&matches).Error
	if err != nil {
		log.Printf("[MATCH] live list failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch live matches"})
	}

	now := time.Now()
	for i := range matches {
		matches[i].Decorate(ComputeLiveMinute(&matches[i], now))
	}
	return c.JSON(matches)
}

func (s *MatchService) GetMatchByID(c *fiber.Ctx) error {
	var match models.Match
	err := s.DB.Preload("HomeTeam").Preload("AwayTeam").Preload("League").
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("minute ASC")
		}).
		First(&match, "id = ?", c.Params("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch match"})
	}

	match.Decorate(ComputeLiveMinute(&match, time.Now()))
	return c.JSON(match)
}

// UpdateMatch edits scheduling and participants. Score and status have
// their own endpoints; edits to an already-ended match trigger a full
// scope recalculation since the incremental path cannot reverse a
// previous contribution.
func (s *MatchService) UpdateMatch(c *fiber.Ctx) error {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	wasEnded := match.Status == models.StatusEnded
	prevLeagueID := match.LeagueID
	prevSeason := match.Season

	var input struct {
		HomeTeamID   *string    `json:"home_team_id"`
		AwayTeamID   *string    `json:"away_team_id"`
		LeagueID     *string    `json:"league_id"`
		HomeTeamName *string    `json:"home_team_name"`
		AwayTeamName *string    `json:"away_team_name"`
		LeagueName   *string    `json:"league_name"`
		Season       *string    `json:"season"`
		Round        *string    `json:"round"`
		MatchDate    *time.Time `json:"match_date"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if input.HomeTeamID != nil {
		match.HomeTeamID = input.HomeTeamID
	}
	if input.AwayTeamID != nil {
		match.AwayTeamID = input.AwayTeamID
	}
	if input.LeagueID != nil {
		match.LeagueID = input.LeagueID
	}
	if input.HomeTeamName != nil {
		match.HomeTeamName = *input.HomeTeamName
	}
	if input.AwayTeamName != nil {
		match.AwayTeamName = *input.AwayTeamName
	}
	if input.LeagueName != nil {
		match.LeagueName = *input.LeagueName
	}
	if input.Season != nil {
		match.Season = *input.Season
	}
	if input.Round != nil {
		match.Round = *input.Round
	}
	if input.MatchDate != nil {
		match.MatchDate = *input.MatchDate
	}

	if err := match.Validate(); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	if match.IsLeagued() {
		if err := s.checkReferences(&match); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
	}

	if err := s.DB.Save(&match).Error; err != nil {
		log.Printf("[MATCH] update failed for %s: %v", match.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update match"})
	}

	if wasEnded && match.IsLeagued() {
		s.recalcScope(&match)
		// a match moved to another league or season leaves its old
		// contribution behind; that scope must be rebuilt too
		if movedScope(prevLeagueID, prevSeason, &match) {
			s.recalcScopeKey(*prevLeagueID, prevSeason)
		}
	}

	match.Decorate(ComputeLiveMinute(&match, time.Now()))
	return c.JSON(match)
}

// movedScope reports whether an edit relocated a match out of its
// previous league+season scope.
func movedScope(prevLeagueID *string, prevSeason string, m *models.Match) bool {
	if prevLeagueID == nil {
		return false
	}
	if m.LeagueID == nil {
		return true
	}
	return *prevLeagueID != *m.LeagueID || prevSeason != m.Season
}

// UpdateMatchStatus is the admin status-transition endpoint.
// PATCH /matches/:id/status {"status": "live"}
func (s *MatchService) UpdateMatchStatus(c *fiber.Ctx) error {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil || input.Status == "" {
		return c.Status(400).JSON(fiber.Map{"error": "status is required"})
	}

	if err := ApplyStatusTransition(&match, input.Status, time.Now()); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.DB.Save(&match).Error; err != nil {
		log.Printf("[MATCH] status update failed for %s: %v", match.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update status"})
	}

	// folds the result into the table once the match reaches full time
	if err := s.Standings.ApplyMatchResult(&match); err != nil {
		log.Printf("[MATCH] standings update failed for %s: %v", match.ID, err)
	}

	match.Decorate(ComputeLiveMinute(&match, time.Now()))
	return c.JSON(match)
}

// UpdateMatchScore records a score change during or after play.
// PATCH /matches/:id/score {"home_score": 2, "away_score": 1}
func (s *MatchService) UpdateMatchScore(c *fiber.Ctx) error {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}

	var input struct {
		HomeScore *int `json:"home_score"`
		AwayScore *int `json:"away_score"`
	}
	if err := c.BodyParser(&input); err != nil || input.HomeScore == nil || input.AwayScore == nil {
		return c.Status(400).JSON(fiber.Map{"error": "home_score and away_score are required"})
	}
	if *input.HomeScore < 0 || *input.AwayScore < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "scores must not be negative"})
	}

	match.HomeScore = *input.HomeScore
	match.AwayScore = *input.AwayScore
	if err := s.DB.Save(&match).Error; err != nil {
		log.Printf("[MATCH] score update failed for %s: %v", match.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update score"})
	}

	// a corrected final score invalidates accumulated counters, so the
	// ended case goes through the authoritative rebuild
	if match.Status == models.StatusEnded && match.IsLeagued() {
		s.recalcScope(&match)
	}

	match.Decorate(ComputeLiveMinute(&match, time.Now()))
	return c.JSON(match)
}

func (s *MatchService) DeleteMatch(c *fiber.Ctx) error {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", match.ID).Delete(&models.MatchEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&match).Error
	})
	if err != nil {
		log.Printf("[MATCH] delete failed for %s: %v", match.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete match"})
	}

	if match.Status == models.StatusEnded && match.IsLeagued() {
		s.recalcScope(&match)
	}
	return c.JSON(fiber.Map{"deleted": match.ID})
}

func (s *MatchService) recalcScope(m *models.Match) {
	if m.LeagueID == nil {
		return
	}
	s.recalcScopeKey(*m.LeagueID, m.Season)
}

func (s *MatchService) recalcScopeKey(leagueID, season string) {
	if _, err := s.Standings.RecalculateStandings(leagueID, season); err != nil {
		log.Printf("[MATCH] scope recalculation failed league=%s season=%s: %v", leagueID, season, err)
	}
}

// ---------------------------------------------------------------------
// Match events
// ---------------------------------------------------------------------

func (s *MatchService) AddMatchEvent(c *fiber.Ctx) error {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}

	var event models.MatchEvent
	if err := c.BodyParser(&event); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	event.ID = uuid.NewString()
	event.MatchID = match.ID
	if err := event.Validate(); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.DB.Create(&event).Error; err != nil {
		log.Printf("[MATCH] event create failed for %s: %v", match.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create event"})
	}
	return c.Status(201).JSON(event)
}

func (s *MatchService) DeleteMatchEvent(c *fiber.Ctx) error {
	result := s.DB.Where("id = ? AND match_id = ?", c.Params("event_id"), c.Params("id")).
		Delete(&models.MatchEvent{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete event"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "event not found"})
	}
	return c.JSON(fiber.Map{"deleted": c.Params("event_id")})
}

// ---------------------------------------------------------------------
// Seasons
// ---------------------------------------------------------------------

// GetLeagueSeasons lists the seasons a league has matches for, newest
// first, falling back to a recent-years window for empty leagues.
func (s *MatchService) GetLeagueSeasons(c *fiber.Ctx) error {
	var seasons []string
	err := s.DB.Model(&models.Match{}).
		Where("league_id = ?", c.Params("id")).
		Distinct().
		Order("season DESC").
		Pluck("season", &seasons).Error
	if err != nil {
		log.Printf("[MATCH] seasons lookup failed for league %s: %v", c.Params("id"), err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch seasons"})
	}
	if len(seasons) == 0 {
		seasons = FallbackSeasons(time.Now())
	}
	return c.JSON(fiber.Map{"seasons": seasons})
}

// ---------------------------------------------------------------------
// Live minute stream
// ---------------------------------------------------------------------

// streamState tracks the last emitted SSE frame so the ticker only
// pushes real changes: minute, status or score.
type streamState struct {
	minute    int
	status    string
	homeScore int
	awayScore int
}

func newStreamState() streamState {
	return streamState{minute: -1}
}

func (st *streamState) changed(m *models.Match, minute int) bool {
	if minute == st.minute && m.Status == st.status &&
		m.HomeScore == st.homeScore && m.AwayScore == st.awayScore {
		return false
	}
	st.minute = minute
	st.status = m.Status
	st.homeScore = m.HomeScore
	st.awayScore = m.AwayScore
	return true
}

// StreamLiveMinute pushes the derived minute over SSE. The minute is
// recomputed locally every second from the last snapshot; the snapshot
// itself is refetched every 30 seconds so status transitions are
// eventually observed. The stream tears down with the request context.
// GET /matches/:id/live
func (s *MatchService) StreamLiveMinute(c *fiber.Ctx) error {
	matchID := c.Params("id")

	var match models.Match
	if err := s.DB.First(&match, "id = ?", matchID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		tick := time.NewTicker(1 * time.Second)
		defer tick.Stop()
		refetch := time.NewTicker(30 * time.Second)
		defer refetch.Stop()

		snapshot := match
		state := newStreamState()

		emit := func() bool {
			minute := ComputeLiveMinute(&snapshot, time.Now())
			if !state.changed(&snapshot, minute) {
				return true
			}

			payload, _ := json.Marshal(fiber.Map{
				"match_id":   snapshot.ID,
				"minute":     minute,
				"status":     snapshot.Status,
				"home_score": snapshot.HomeScore,
				"away_score": snapshot.AwayScore,
			})
			fmt.Fprintf(w, "event: minute\ndata: %s\n\n", payload)
			return w.Flush() == nil
		}

		// initial keepalive + first value
		w.WriteString(":\n\n")
		w.Flush()
		if !emit() {
			return
		}

		for {
			select {
			case <-tick.C:
				// no I/O here: pure recomputation from the snapshot
				if !emit() {
					return // client disconnected
				}
			case <-refetch.C:
				var fresh models.Match
				if err := s.DB.First(&fresh, "id = ?", matchID).Error; err != nil {
					log.Printf("[LIVE] refetch failed for %s: %v", matchID, err)
					continue
				}
				snapshot = fresh
			case <-c.Context().Done():
				return
			}
		}
	})

	return nil
}
