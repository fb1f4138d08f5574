package ledger

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerly/ledgerly/internal/platform/httpx"
	"github.com/ledgerly/ledgerly/internal/shared"
)

// Handler exposes the cash/bank/credit ledger surface.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a ledger Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/ledger", func(r chi.Router) {
		r.Get("/cash/balance", h.cashBalance)
		r.Get("/cash/entries", h.listCash)
		r.Post("/cash/entries", h.addCashEntry)
		r.Get("/banks/{bankID}/entries", h.listBank)
		r.Post("/banks/{bankID}/entries", h.addBankEntry)
		r.Get("/credit/entries", h.listCredit)
	})
}

type manualEntryRequest struct {
	Type        string  `json:"type" validate:"required,oneof=Deposit Withdraw"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	TxnDate     string  `json:"txn_date" validate:"omitempty,datetime=2006-01-02"`
	Description string  `json:"description" validate:"max=255"`
}

func (h *Handler) cashBalance(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	balance, err := h.service.CashBalance(r.Context(), id)
	if err != nil {
		h.logger.Error("cash balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"current_balance": balance})
}

func (h *Handler) addCashEntry(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	in, err := h.decodeManualEntry(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entryID, err := h.service.AddCashEntry(r.Context(), id, in)
	if err != nil {
		h.logger.Error("add cash entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": entryID})
}

func (h *Handler) addBankEntry(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	bankID, err := strconv.ParseInt(chi.URLParam(r, "bankID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bank id")
		return
	}
	in, err := h.decodeManualEntry(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	in.BankID = bankID
	entryID, err := h.service.AddBankEntry(r.Context(), id, in)
	if err != nil {
		h.logger.Error("add bank entry", slog.Any("error", err), slog.Int64("bank_id", bankID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": entryID})
}

func (h *Handler) listCash(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	page, perPage := shared.PageFromRequest(r, 20)
	entries, pagination, err := h.service.ListCash(r.Context(), id, page, perPage)
	if err != nil {
		h.logger.Error("list cash ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Listing{Data: entries, Pagination: pagination})
}

func (h *Handler) listBank(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	bankID, err := strconv.ParseInt(chi.URLParam(r, "bankID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bank id")
		return
	}
	page, perPage := shared.PageFromRequest(r, 20)
	entries, pagination, err := h.service.ListBank(r.Context(), id, bankID, page, perPage)
	if err != nil {
		h.logger.Error("list bank ledger", slog.Any("error", err), slog.Int64("bank_id", bankID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Listing{Data: entries, Pagination: pagination})
}

func (h *Handler) listCredit(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	page, perPage := shared.PageFromRequest(r, 20)
	creditType := CreditType(r.URL.Query().Get("type"))
	entries, pagination, err := h.service.ListCredit(r.Context(), id, creditType, page, perPage)
	if err != nil {
		h.logger.Error("list credit ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Listing{Data: entries, Pagination: pagination})
}

func (h *Handler) decodeManualEntry(r *http.Request) (ManualEntryInput, error) {
	var req manualEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return ManualEntryInput{}, fmt.Errorf("%w: malformed body", shared.ErrValidation)
	}
	if err := h.validate.Struct(req); err != nil {
		return ManualEntryInput{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	var txnDate time.Time
	if req.TxnDate != "" {
		txnDate, _ = time.Parse("2006-01-02", req.TxnDate)
	}
	return ManualEntryInput{
		Kind:        EntryKind(req.Type),
		Amount:      req.Amount,
		TxnDate:     txnDate,
		Description: req.Description,
	}, nil
}
