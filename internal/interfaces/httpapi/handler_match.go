package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/crickarena/crickarena/internal/domain/match"
	"github.com/crickarena/crickarena/internal/usecase"
)

// ListMatches serves the home feed when no category is given and a single
// lifecycle bucket otherwise. Provider outages degrade to empty lists here;
// browsing must keep working while the feed is down.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		feed, err := h.matchService.Home(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "home feed unavailable", "error", err)
			feed = usecase.HomeFeed{}
		}
		writeSuccess(ctx, w, http.StatusOK, payload{
			"upcoming":  matchesToDTO(feed.Upcoming),
			"live":      matchesToDTO(feed.Live),
			"completed": matchesToDTO(feed.Completed),
			"series":    seriesToDTO(feed.Series),
		})
		return
	}

	matches, err := h.matchService.List(ctx, category)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			writeError(ctx, w, err)
			return
		}
		h.logger.ErrorContext(ctx, "list matches unavailable", "category", category, "error", err)
		matches = nil
	}

	writeSuccess(ctx, w, http.StatusOK, payload{"matches": matchesToDTO(matches)})
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchRef := strings.TrimSpace(r.PathValue("matchID"))
	detail, err := h.matchService.Detail(ctx, matchRef)
	if err != nil {
		h.logger.WarnContext(ctx, "match detail failed", "match_ref", matchRef, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload{
		"match":  matchToDTO(detail.Match),
		"squads": squadsToDTO(detail.Squads),
	})
}

func (h *Handler) GetMatchSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchSquad")
	defer span.End()

	matchRef := strings.TrimSpace(r.PathValue("matchID"))
	squads, err := h.matchService.Squads(ctx, matchRef)
	if err != nil {
		h.logger.WarnContext(ctx, "match squad failed", "match_ref", matchRef, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload{"squads": squadsToDTO(squads)})
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	offset := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			offset = parsed
		}
	}

	players, err := h.matchService.Players(ctx, search, offset)
	if err != nil {
		h.logger.ErrorContext(ctx, "list players unavailable", "search", search, "error", err)
		players = nil
	}

	writeSuccess(ctx, w, http.StatusOK, payload{"players": squadPlayersToDTO(players)})
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	profile, err := h.matchService.Player(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "player detail failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload{"player": playerProfileToDTO(profile)})
}

func (h *Handler) ListSeries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeries")
	defer span.End()

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	series, err := h.matchService.Series(ctx, search)
	if err != nil {
		h.logger.ErrorContext(ctx, "list series unavailable", "search", search, "error", err)
		series = nil
	}

	writeSuccess(ctx, w, http.StatusOK, payload{"series": seriesToDTO(series)})
}

type matchDTO struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	MatchType      string            `json:"matchType"`
	Status         string            `json:"status"`
	Category       string            `json:"category"`
	Venue          string            `json:"venue"`
	StartAt        string            `json:"startAt"`
	Teams          []string          `json:"teams"`
	SeriesID       string            `json:"seriesId"`
	FantasyEnabled bool              `json:"fantasyEnabled"`
	Scores         []inningsScoreDTO `json:"scores,omitempty"`
}

type inningsScoreDTO struct {
	Inning  string  `json:"inning"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Overs   float64 `json:"overs"`
}

type seriesDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	ODI       int    `json:"odi"`
	T20       int    `json:"t20"`
	Test      int    `json:"test"`
}

type squadDTO struct {
	TeamName string           `json:"teamName"`
	Players  []squadPlayerDTO `json:"players"`
}

type squadPlayerDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Country  string `json:"country"`
	TeamName string `json:"teamName,omitempty"`
}

type playerProfileDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	BattingStyle string `json:"battingStyle"`
	BowlingStyle string `json:"bowlingStyle"`
	Country      string `json:"country"`
	PlaceOfBirth string `json:"placeOfBirth"`
}

func matchToDTO(v match.Match) matchDTO {
	scores := make([]inningsScoreDTO, 0, len(v.Scores))
	for _, s := range v.Scores {
		scores = append(scores, inningsScoreDTO{
			Inning:  s.Inning,
			Runs:    s.Runs,
			Wickets: s.Wickets,
			Overs:   s.Overs,
		})
	}

	return matchDTO{
		ID:             v.ID,
		Name:           v.Name,
		MatchType:      v.MatchType,
		Status:         v.Status,
		Category:       match.Category(v),
		Venue:          v.Venue,
		StartAt:        match.FormatIST(v.StartAt),
		Teams:          append([]string(nil), v.Teams...),
		SeriesID:       v.SeriesID,
		FantasyEnabled: v.FantasyEnabled,
		Scores:         scores,
	}
}

func matchesToDTO(matches []match.Match) []matchDTO {
	items := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchToDTO(m))
	}
	return items
}

func seriesToDTO(series []match.Series) []seriesDTO {
	items := make([]seriesDTO, 0, len(series))
	for _, s := range series {
		items = append(items, seriesDTO{
			ID:        s.ID,
			Name:      s.Name,
			StartDate: s.StartDate,
			EndDate:   s.EndDate,
			ODI:       s.ODI,
			T20:       s.T20,
			Test:      s.Test,
		})
	}
	return items
}

func squadsToDTO(squads []match.Squad) []squadDTO {
	items := make([]squadDTO, 0, len(squads))
	for _, s := range squads {
		items = append(items, squadDTO{
			TeamName: s.TeamName,
			Players:  squadPlayersToDTO(s.Players),
		})
	}
	return items
}

func squadPlayersToDTO(players []match.SquadPlayer) []squadPlayerDTO {
	items := make([]squadPlayerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, squadPlayerDTO{
			ID:       p.ID,
			Name:     p.Name,
			Role:     p.Role,
			Country:  p.Country,
			TeamName: p.TeamName,
		})
	}
	return items
}

func playerProfileToDTO(v match.PlayerProfile) playerProfileDTO {
	return playerProfileDTO{
		ID:           v.ID,
		Name:         v.Name,
		Role:         v.Role,
		BattingStyle: v.BattingStyle,
		BowlingStyle: v.BowlingStyle,
		Country:      v.Country,
		PlaceOfBirth: v.PlaceOfBirth,
	}
}
