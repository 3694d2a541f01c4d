package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/propscan/propscan/internal/domain"
	"github.com/propscan/propscan/internal/service"
)

// AnalysisHandler serves the three detector endpoints.
type AnalysisHandler struct {
	svc    *service.AnalysisService
	logger *slog.Logger
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(svc *service.AnalysisService, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{svc: svc, logger: logHandler(logger, "analysis")}
}

// Arbitrage responds with the guaranteed-profit opportunities for a date.
// GET /api/arbitrage/{date}
func (h *AnalysisHandler) Arbitrage(w http.ResponseWriter, r *http.Request) {
	respond(h, w, r, "opportunities", func(ctx context.Context, date string) (any, int, error) {
		opps, err := h.svc.Arbitrage(ctx, date)
		return emptyIfNil(opps), len(opps), err
	})
}

// Discrepancies responds with the cross-book line gaps for a date.
// GET /api/discrepancies/{date}
func (h *AnalysisHandler) Discrepancies(w http.ResponseWriter, r *http.Request) {
	respond(h, w, r, "discrepancies", func(ctx context.Context, date string) (any, int, error) {
		discs, err := h.svc.LineDiscrepancies(ctx, date)
		return emptyIfNil(discs), len(discs), err
	})
}

// BestOdds responds with the same-line price edges for a date.
// GET /api/best-odds/{date}
func (h *AnalysisHandler) BestOdds(w http.ResponseWriter, r *http.Request) {
	respond(h, w, r, "edges", func(ctx context.Context, date string) (any, int, error) {
		edges, err := h.svc.BestOdds(ctx, date)
		return emptyIfNil(edges), len(edges), err
	})
}

// respond runs one detector for the {date} path parameter and writes the
// shared response envelope.
func respond(h *AnalysisHandler, w http.ResponseWriter, r *http.Request, field string, run func(context.Context, string) (any, int, error)) {
	date := pathParam(r, "date")

	results, count, err := run(r.Context(), date)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDate) {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		h.logger.ErrorContext(r.Context(), "detector failed",
			slog.String("detector", field),
			slog.String("game_date", date),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"game_date": date,
		"count":     count,
		field:       results,
	})
}
