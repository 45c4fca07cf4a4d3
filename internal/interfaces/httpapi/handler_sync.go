package httpapi

import (
	"net/http"
	"strings"

	"github.com/crickarena/crickarena/internal/usecase"
)

// RunContestSync triggers the contest lifecycle job. External schedulers hit
// this endpoint; the action query parameter selects a single phase.
func (h *Handler) RunContestSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunContestSync")
	defer span.End()

	action := strings.TrimSpace(r.URL.Query().Get("action"))
	if action == "" {
		action = usecase.SyncActionAll
	}

	report, err := h.syncService.Run(ctx, action)
	if err != nil {
		h.logger.ErrorContext(ctx, "contest sync failed", "action", action, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "contest sync finished",
		"action", report.Action,
		"contests_created", report.ContestsCreated,
		"status_updates", report.StatusUpdates,
		"entries_scored", report.EntriesScored,
		"contests_ranked", report.ContestsRanked,
		"errors", len(report.Errors),
		"duration_ms", report.DurationMs,
	)

	writeSuccess(ctx, w, http.StatusOK, payload{"report": report})
}
