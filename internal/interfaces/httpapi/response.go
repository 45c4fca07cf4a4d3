package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/crickarena/crickarena/internal/domain/contest"
	"github.com/crickarena/crickarena/internal/domain/team"
	"github.com/crickarena/crickarena/internal/usecase"
)

// payload carries the response body fields inlined next to the success flag.
type payload map[string]any

// writeSuccess renders {"success": true, ...fields}.
func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, fields payload) {
	body := make(map[string]any, len(fields)+1)
	body["success"] = true
	for key, value := range fields {
		body[key] = value
	}
	writeJSON(ctx, w, status, body)
}

// writeError renders {"success": false, "error": message} with the mapped
// status code. Internal failures never leak their error text.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := mapError(err)
	writeJSON(ctx, w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeJSON(ctx, w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   "internal server error",
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(body); err != nil {
		http.Error(w, `{"success":false,"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, team.ErrTeamLimitReached),
		errors.Is(err, team.ErrInvalidTeamSize),
		errors.Is(err, team.ErrUnknownPlayerRole),
		errors.Is(err, contest.ErrContestFull),
		errors.Is(err, contest.ErrAlreadyJoined),
		errors.Is(err, contest.ErrNotJoinable):
		return http.StatusBadRequest, errMessage(err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusUnauthorized, errMessage(err)
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden, errMessage(err)
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound, errMessage(err)
	case errors.Is(err, usecase.ErrConflict):
		return http.StatusConflict, errMessage(err)
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable, errMessage(err)
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// errMessage strips the sentinel prefix ("invalid input: ...") so clients get
// the human part of the message.
func errMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		usecase.ErrInvalidInput,
		usecase.ErrUnauthorized,
		usecase.ErrForbidden,
		usecase.ErrNotFound,
		usecase.ErrConflict,
		usecase.ErrDependencyUnavailable,
	} {
		prefix := sentinel.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
