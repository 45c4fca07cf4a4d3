package httpapi

import (
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/crickarena/crickarena/internal/domain/user"
	"github.com/crickarena/crickarena/internal/usecase"
)

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyProfile")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	profile, err := h.userService.Profile(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "load profile failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload{
		"user":  userToDTO(profile.User),
		"stats": statsToDTO(profile.Stats),
	})
}

func (h *Handler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMyProfile")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req updateProfileRequest
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

	input := usecase.UpdateProfileInput{
		FullName: req.FullName,
		Mobile:   req.Mobile,
		State:    req.State,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: date of birth must be YYYY-MM-DD", usecase.ErrInvalidInput))
			return
		}
		input.DateOfBirth = &dob
	}

	profile, err := h.userService.UpdateProfile(ctx, principal.UserID, input)
	if err != nil {
		h.logger.WarnContext(ctx, "update profile failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload{
		"user":  userToDTO(profile.User),
		"stats": statsToDTO(profile.Stats),
	})
}

func (h *Handler) GetMyStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyStats")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	profile, err := h.userService.Profile(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "load stats failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload{"stats": statsToDTO(profile.Stats)})
}

type updateProfileRequest struct {
	FullName    *string `json:"fullName" validate:"omitempty,max=120"`
	Mobile      *string `json:"mobile" validate:"omitempty,len=10"`
	State       *string `json:"state" validate:"omitempty,max=80"`
	DateOfBirth *string `json:"dateOfBirth"`
}

type statsDTO struct {
	TotalPoints    float64 `json:"totalPoints"`
	ContestsJoined int     `json:"contestsJoined"`
	ContestsWon    int     `json:"contestsWon"`
	TeamsCreated   int     `json:"teamsCreated"`
	Level          int     `json:"level"`
	XP             int     `json:"xp"`
}

func statsToDTO(v user.Stats) statsDTO {
	return statsDTO{
		TotalPoints:    v.TotalPoints,
		ContestsJoined: v.ContestsJoined,
		ContestsWon:    v.ContestsWon,
		TeamsCreated:   v.TeamsCreated,
		Level:          v.Level,
		XP:             v.XP,
	}
}
