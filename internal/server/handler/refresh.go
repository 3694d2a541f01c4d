package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/propscan/propscan/internal/domain"
	"github.com/propscan/propscan/internal/service"
)

// RefreshHandler triggers a scrape-and-replace cycle over the API.
type RefreshHandler struct {
	svc    *service.RefreshService
	logger *slog.Logger
}

// NewRefreshHandler creates a RefreshHandler.
func NewRefreshHandler(svc *service.RefreshService, logger *slog.Logger) *RefreshHandler {
	return &RefreshHandler{svc: svc, logger: logHandler(logger, "refresh")}
}

// Trigger refreshes one book when the book query parameter is set, or every
// registered book otherwise. The call is synchronous: it returns once the
// new boards are stored.
// POST /api/refresh?book=fanduel
func (h *RefreshHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if raw := r.URL.Query().Get("book"); raw != "" {
		result, err := h.svc.RefreshBook(ctx, domain.NewBook(raw))
		if err != nil {
			h.writeRefreshError(w, r, raw, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	results, err := h.svc.RefreshAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "refresh all failed",
			slog.String("error", err.Error()),
		)
		// Partial results still matter to the operator.
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   err.Error(),
			"results": emptyIfNil(results),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *RefreshHandler) writeRefreshError(w http.ResponseWriter, r *http.Request, book string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "unknown sportsbook: "+book)
	case errors.Is(err, domain.ErrLockHeld):
		writeError(w, http.StatusConflict, "a refresh for this sportsbook is already running")
	default:
		h.logger.ErrorContext(r.Context(), "refresh failed",
			slog.String("book", book),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "refresh failed")
	}
}
