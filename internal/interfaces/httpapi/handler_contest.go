package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/crickarena/crickarena/internal/domain/contest"
	"github.com/crickarena/crickarena/internal/usecase"
)

func (h *Handler) ListContests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListContests")
	defer span.End()

	matchRef := strings.TrimSpace(r.URL.Query().Get("match"))
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	contests, err := h.contestService.List(ctx, matchRef, status)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]contestDTO, 0, len(contests))
	for _, c := range contests {
		items = append(items, contestToDTO(c))
	}

	writeSuccess(ctx, w, http.StatusOK, payload{"contests": items})
}

func (h *Handler) GetContest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetContest")
	defer span.End()

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	item, err := h.contestService.Get(ctx, contestID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload{"contest": contestToDTO(item)})
}

func (h *Handler) JoinContest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinContest")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req joinContestRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	entry, err := h.contestService.Join(ctx, principal.UserID, usecase.JoinContestInput{
		ContestPublicID: req.ContestID,
		TeamPublicID:    req.TeamID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join contest failed",
			"user_id", principal.UserID, "contest_id", req.ContestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, payload{"entry": entryToDTO(entry, req.ContestID, req.TeamID)})
}

// GetContestLeaderboard is public; a signed-in caller additionally gets their
// own row when it falls outside the page.
func (h *Handler) GetContestLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetContestLeaderboard")
	defer span.End()

	principalUserID := ""
	if principal, ok := principalFromContext(ctx); ok {
		principalUserID = principal.UserID
	}

	contestID := strings.TrimSpace(r.PathValue("contestID"))
	board, err := h.contestService.Leaderboard(ctx, contestID, principalUserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows := make([]leaderboardRowDTO, 0, len(board.Rows))
	for _, row := range board.Rows {
		rows = append(rows, leaderboardRowToDTO(row))
	}

	var own *leaderboardRowDTO
	if board.Own != nil {
		dto := leaderboardRowToDTO(*board.Own)
		own = &dto
	}

	writeSuccess(ctx, w, http.StatusOK, payload{
		"contest":     contestToDTO(board.Contest),
		"leaderboard": rows,
		"ownEntry":    own,
	})
}

type joinContestRequest struct {
	ContestID string `json:"contestId" validate:"required"`
	TeamID    string `json:"teamId" validate:"required"`
}

type contestDTO struct {
	ID             string  `json:"id"`
	MatchID        string  `json:"matchId"`
	Name           string  `json:"name"`
	TemplateCode   string  `json:"templateCode"`
	EntryFee       float64 `json:"entryFee"`
	PrizePool      float64 `json:"prizePool"`
	MaxEntries     int     `json:"maxEntries"`
	CurrentEntries int     `json:"currentEntries"`
	Status         string  `json:"status"`
}

type entryDTO struct {
	ContestID string  `json:"contestId"`
	TeamID    string  `json:"teamId"`
	Points    float64 `json:"points"`
	Rank      *int    `json:"rank"`
	JoinedAt  string  `json:"joinedAt"`
}

type leaderboardRowDTO struct {
	Rank     int     `json:"rank"`
	UserID   string  `json:"userId"`
	UserName string  `json:"userName"`
	TeamID   string  `json:"teamId"`
	TeamName string  `json:"teamName"`
	Points   float64 `json:"points"`
}

func contestToDTO(v contest.Contest) contestDTO {
	return contestDTO{
		ID:             v.PublicID,
		MatchID:        v.MatchRef,
		Name:           v.Name,
		TemplateCode:   v.TemplateCode,
		EntryFee:       v.EntryFee,
		PrizePool:      v.PrizePool,
		MaxEntries:     v.MaxEntries,
		CurrentEntries: v.CurrentEntries,
		Status:         v.Status,
	}
}

func entryToDTO(v contest.Entry, contestPublicID, teamPublicID string) entryDTO {
	return entryDTO{
		ContestID: contestPublicID,
		TeamID:    teamPublicID,
		Points:    v.Points,
		Rank:      v.Rank,
		JoinedAt:  v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func leaderboardRowToDTO(v contest.LeaderboardRow) leaderboardRowDTO {
	return leaderboardRowDTO{
		Rank:     v.Rank,
		UserID:   v.UserPublicID,
		UserName: v.UserName,
		TeamID:   v.TeamPublicID,
		TeamName: v.TeamName,
		Points:   v.Points,
	}
}
