package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/crickarena/crickarena/internal/domain/team"
	"github.com/crickarena/crickarena/internal/usecase"
)

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createTeamRequest
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

	players := make([]usecase.TeamPlayerInput, 0, len(req.Players))
	for _, p := range req.Players {
		players = append(players, usecase.TeamPlayerInput{
			PlayerRef:     p.PlayerRef,
			PlayerName:    p.PlayerName,
			Role:          p.Role,
			TeamName:      p.TeamName,
			CreditCost:    p.CreditCost,
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
		})
	}

	created, err := h.teamService.Create(ctx, principal.UserID, usecase.CreateTeamInput{
		MatchRef: req.MatchID,
		Name:     req.Name,
		Players:  players,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create team failed", "user_id", principal.UserID, "match_ref", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, payload{"team": teamToDTO(created)})
}

func (h *Handler) ListMyTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyTeams")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matchRef := strings.TrimSpace(r.URL.Query().Get("match"))
	teams, err := h.teamService.List(ctx, principal.UserID, matchRef)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, payload{"teams": items})
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	item, err := h.teamService.Get(ctx, principal.UserID, teamID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload{"team": teamToDTO(item)})
}

func (h *Handler) RenameTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RenameTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req renameTeamRequest
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

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	item, err := h.teamService.Rename(ctx, principal.UserID, teamID, req.Name)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload{"team": teamToDTO(item)})
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	if err := h.teamService.Delete(ctx, principal.UserID, teamID); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload{"message": "team deleted"})
}

type createTeamRequest struct {
	MatchID string                    `json:"matchId" validate:"required"`
	Name    string                    `json:"name" validate:"omitempty,max=60"`
	Players []createTeamPlayerRequest `json:"players" validate:"required,min=1,dive"`
}

type createTeamPlayerRequest struct {
	PlayerRef     string  `json:"playerId" validate:"required"`
	PlayerName    string  `json:"playerName" validate:"required"`
	Role          string  `json:"role" validate:"required"`
	TeamName      string  `json:"teamName"`
	CreditCost    float64 `json:"creditCost" validate:"gte=0"`
	IsCaptain     bool    `json:"isCaptain"`
	IsViceCaptain bool    `json:"isViceCaptain"`
}

type renameTeamRequest struct {
	Name string `json:"name" validate:"required,max=60"`
}

type teamDTO struct {
	ID          string          `json:"id"`
	MatchID     string          `json:"matchId"`
	Name        string          `json:"name"`
	CreditsUsed float64         `json:"creditsUsed"`
	TotalPoints float64         `json:"totalPoints"`
	Rank        *int            `json:"rank"`
	Players     []teamPlayerDTO `json:"players"`
	CreatedAt   string          `json:"createdAt"`
}

type teamPlayerDTO struct {
	PlayerRef     string  `json:"playerId"`
	PlayerName    string  `json:"playerName"`
	Role          string  `json:"role"`
	TeamName      string  `json:"teamName"`
	CreditCost    float64 `json:"creditCost"`
	IsCaptain     bool    `json:"isCaptain"`
	IsViceCaptain bool    `json:"isViceCaptain"`
	Points        float64 `json:"points"`
}

func teamToDTO(v team.Team) teamDTO {
	players := make([]teamPlayerDTO, 0, len(v.Players))
	for _, p := range v.Players {
		players = append(players, teamPlayerDTO{
			PlayerRef:     p.PlayerRef,
			PlayerName:    p.PlayerName,
			Role:          p.Role,
			TeamName:      p.TeamName,
			CreditCost:    p.CreditCost,
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
			Points:        p.Points,
		})
	}

	return teamDTO{
		ID:          v.PublicID,
		MatchID:     v.MatchRef,
		Name:        v.Name,
		CreditsUsed: v.CreditsUsed,
		TotalPoints: v.TotalPoints,
		Rank:        v.Rank,
		Players:     players,
		CreatedAt:   v.CreatedAt.UTC().Format(time.RFC3339),
	}
}
