package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerly/ledgerly/internal/platform/httpx"
	"github.com/ledgerly/ledgerly/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/balances", h.balances)
		r.Get("/daily", h.daily)
		r.Get("/monthly", h.monthly)
		r.Get("/banks", h.banks)
		r.Get("/gst", h.gst)
	})
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	b, err := h.service.Balances(r.Context(), id)
	if err != nil {
		h.logger.Error("balance report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	day := time.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: date must be YYYY-MM-DD", shared.ErrValidation))
			return
		}
		day = parsed
	}
	sum, err := h.service.Daily(r.Context(), id, day)
	if err != nil {
		h.logger.Error("daily report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	now := time.Now()
	year, month := now.Year(), now.Month()
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := time.Parse("2006-01", v)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: month must be YYYY-MM", shared.ErrValidation))
			return
		}
		year, month = parsed.Year(), parsed.Month()
	}
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid year", shared.ErrValidation))
			return
		}
		year = parsed
	}
	sum, err := h.service.Monthly(r.Context(), id, year, month)
	if err != nil {
		h.logger.Error("monthly report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

func (h *Handler) banks(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	rows, err := h.service.Banks(r.Context(), id)
	if err != nil {
		h.logger.Error("bank report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (h *Handler) gst(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	from, to, err := rangeFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sum, err := h.service.GST(r.Context(), id, from, to)
	if err != nil {
		h.logger.Error("gst report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sum)
}

func rangeFromRequest(r *http.Request) (from, to time.Time, err error) {
	from, err = time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		return from, to, fmt.Errorf("%w: from must be YYYY-MM-DD", shared.ErrValidation)
	}
	to, err = time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		return from, to, fmt.Errorf("%w: to must be YYYY-MM-DD", shared.ErrValidation)
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("%w: to before from", shared.ErrValidation)
	}
	return from, to.Add(24*time.Hour - time.Second), nil
}
