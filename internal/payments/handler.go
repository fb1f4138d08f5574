package payments

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerly/ledgerly/internal/platform/httpx"
	"github.com/ledgerly/ledgerly/internal/posting"
	"github.com/ledgerly/ledgerly/internal/shared"
)

// Handler exposes payment allocation and outstanding reporting.
type Handler struct {
	logger    *slog.Logger
	allocator *Allocator
	validate  *validator.Validate
}

// NewHandler builds a payments Handler.
func NewHandler(logger *slog.Logger, allocator *Allocator) *Handler {
	return &Handler{logger: logger, allocator: allocator, validate: validator.New()}
}

// MountRoutes registers the symmetric receivable/payable blocks.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/receive", h.allocate(SideReceivable))
		r.Post("/pay", h.allocate(SidePayable))
		r.Get("/receivable", h.outstanding(SideReceivable))
		r.Get("/payable", h.outstanding(SidePayable))
		r.Get("/receivable/history", h.history(SideReceivable))
		r.Get("/payable/history", h.history(SidePayable))
	})
}

type allocateRequest struct {
	PartyID      *int64  `json:"party_id"`
	PartyName    string  `json:"party_name" validate:"max=128"`
	PartyContact string  `json:"party_contact" validate:"max=64"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	PaymentType  string  `json:"payment_type" validate:"required,oneof=Cash Online"`
	BankID       *int64  `json:"bank_id"`
	Date         string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) allocate(side Side) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := shared.IdentityFromContext(r.Context())
		var req allocateRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: malformed body", shared.ErrValidation))
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %v", shared.ErrValidation, err))
			return
		}
		var date time.Time
		if req.Date != "" {
			date, _ = time.Parse("2006-01-02", req.Date)
		}
		result, err := h.allocator.Allocate(r.Context(), id, AllocateInput{
			Side:   side,
			Party:  PartyMatch{PartyID: req.PartyID, Name: req.PartyName, Contact: req.PartyContact},
			Amount: req.Amount,
			Method: posting.PaymentMethod(req.PaymentType),
			BankID: req.BankID,
			Date:   date,
		})
		if err != nil {
			h.logger.Error("allocate payment", slog.Any("error", err), slog.String("side", string(side)))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, result)
	}
}

func (h *Handler) outstanding(side Side) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := shared.IdentityFromContext(r.Context())
		rows, err := h.allocator.Outstanding(r.Context(), id, side)
		if err != nil {
			h.logger.Error("outstanding summary", slog.Any("error", err), slog.String("side", string(side)))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"data": rows})
	}
}

func (h *Handler) history(side Side) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := shared.IdentityFromContext(r.Context())
		page, perPage := shared.PageFromRequest(r, 10)
		rows, pagination, err := h.allocator.History(r.Context(), id, side, page, perPage)
		if err != nil {
			h.logger.Error("payment history", slog.Any("error", err), slog.String("side", string(side)))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, httpx.Listing{Data: rows, Pagination: pagination})
	}
}
