package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/propscan/propscan/internal/domain"
	"github.com/propscan/propscan/internal/normalize"
	"github.com/propscan/propscan/internal/service"
)

// PropsHandler serves the raw record endpoints: the per-date board, the
// today summary, and player history.
type PropsHandler struct {
	svc    *service.AnalysisService
	loc    *time.Location
	logger *slog.Logger
}

// NewPropsHandler creates a PropsHandler. The location decides what "today"
// means for the summary endpoint; boards are keyed by Eastern game dates.
func NewPropsHandler(svc *service.AnalysisService, loc *time.Location, logger *slog.Logger) *PropsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PropsHandler{svc: svc, loc: loc, logger: logHandler(logger, "props")}
}

// GetToday responds with the board summary for today's slate.
// GET /api/today
func (h *PropsHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	date := time.Now().In(h.loc).Format(domain.GameDateLayout)

	summary, err := h.svc.Summary(r.Context(), date)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "summary failed",
			slog.String("game_date", date),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListProps responds with every stored record for a date, optionally
// filtered by the book query parameter.
// GET /api/props/{date}?book=draftkings
func (h *PropsHandler) ListProps(w http.ResponseWriter, r *http.Request) {
	date := pathParam(r, "date")
	book := domain.NewBook(r.URL.Query().Get("book"))

	records, err := h.svc.PropsForDate(r.Context(), date, book)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDate) {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		h.logger.ErrorContext(r.Context(), "list props failed",
			slog.String("game_date", date),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list props")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"game_date": date,
		"count":     len(records),
		"props":     emptyIfNil(records),
	})
}

// PlayerHistory responds with a player's stored lines for one market over a
// trailing window.
// GET /api/players/{player}/history?prop_type=points&days=30
func (h *PropsHandler) PlayerHistory(w http.ResponseWriter, r *http.Request) {
	player := normalize.PlayerName(pathParam(r, "player"))
	propType := normalize.PropType(r.URL.Query().Get("prop_type"))
	days := queryInt(r, "days", 30)

	if player == "" {
		writeError(w, http.StatusBadRequest, "player is required")
		return
	}

	records, err := h.svc.PlayerHistory(r.Context(), player, propType, days)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "player history failed",
			slog.String("player", player),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"player":    player,
		"prop_type": propType,
		"days":      days,
		"count":     len(records),
		"history":   emptyIfNil(records),
	})
}

// emptyIfNil keeps empty result sets rendering as [] instead of null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
