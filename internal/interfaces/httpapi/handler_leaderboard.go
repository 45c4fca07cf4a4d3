package httpapi

import (
	"net/http"

	"github.com/crickarena/crickarena/internal/domain/user"
)

// GetGlobalLeaderboard is public. Anonymous callers get currentUserRank null;
// signed-in callers outside the page get their exact rank.
func (h *Handler) GetGlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGlobalLeaderboard")
	defer span.End()

	principalUserID := ""
	if principal, ok := principalFromContext(ctx); ok {
		principalUserID = principal.UserID
	}

	board, err := h.leaderboardService.Global(ctx, principalUserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "global leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	rows := make([]rankedUserDTO, 0, len(board.Rows))
	for _, row := range board.Rows {
		rows = append(rows, rankedUserToDTO(row))
	}

	writeSuccess(ctx, w, http.StatusOK, payload{
		"leaderboard":     rows,
		"currentUserRank": board.CurrentUserRank,
	})
}

type rankedUserDTO struct {
	Rank           int     `json:"rank"`
	UserID         string  `json:"userId"`
	FullName       string  `json:"fullName"`
	State          string  `json:"state"`
	Level          int     `json:"level"`
	TotalPoints    float64 `json:"totalPoints"`
	ContestsJoined int     `json:"contestsJoined"`
	ContestsWon    int     `json:"contestsWon"`
}

func rankedUserToDTO(v user.RankedUser) rankedUserDTO {
	return rankedUserDTO{
		Rank:           v.Rank,
		UserID:         v.UserPublicID,
		FullName:       v.FullName,
		State:          v.State,
		Level:          v.Level,
		TotalPoints:    v.TotalPoints,
		ContestsJoined: v.ContestsJoined,
		ContestsWon:    v.ContestsWon,
	}
}
