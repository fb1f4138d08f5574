package posting

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

// Handler exposes the document mutation surface for all five kinds.
type Handler struct {
	logger   *slog.Logger
	engine   *Engine
	validate *validator.Validate
}

// NewHandler builds a posting Handler.
func NewHandler(logger *slog.Logger, engine *Engine) *Handler {
	return &Handler{logger: logger, engine: engine, validate: validator.New()}
}

// MountRoutes registers one CRUD block per document kind.
func (h *Handler) MountRoutes(r chi.Router) {
	mount := func(prefix string, kind DocumentKind) {
		r.Route(prefix, func(r chi.Router) {
			r.Get("/", h.list(kind))
			r.Post("/", h.create(kind))
			r.Get("/{id}", h.get)
			r.Put("/{id}", h.update(kind))
			r.Delete("/{id}", h.remove)
		})
	}
	mount("/sales", KindSale)
	mount("/purchases", KindPurchase)
	mount("/expenses", KindExpense)
	mount("/income", KindIncome)
	mount("/director-loans", KindDirectorLoan)
}

type documentRequest struct {
	Number       string  `json:"number" validate:"max=64"`
	Date         string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	PartyID      *int64  `json:"party_id"`
	PartyName    string  `json:"party_name" validate:"max=128"`
	PartyContact string  `json:"party_contact" validate:"max=64"`
	Category     string  `json:"category" validate:"max=64"`
	FinalAmount  float64 `json:"final_amount" validate:"required,gt=0"`
	PaymentType  string  `json:"payment_type" validate:"required,oneof=Cash Online Mixed Credit"`
	CashPaid     float64 `json:"cash_paid" validate:"gte=0"`
	OnlinePaid   float64 `json:"online_paid" validate:"gte=0"`
	LoanFlow     string  `json:"loan_flow" validate:"omitempty,oneof=Received Given"`
	BankID       *int64  `json:"bank_id"`
	Remarks      string  `json:"remarks" validate:"max=255"`
}

func (h *Handler) decode(r *http.Request, kind DocumentKind) (CreateInput, error) {
	var req documentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return CreateInput{}, fmt.Errorf("%w: malformed body", shared.ErrValidation)
	}
	if err := h.validate.Struct(req); err != nil {
		return CreateInput{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse("2006-01-02", req.Date)
	}
	return CreateInput{
		Kind:         kind,
		Number:       req.Number,
		Date:         date,
		PartyID:      req.PartyID,
		PartyName:    req.PartyName,
		PartyContact: req.PartyContact,
		Category:     req.Category,
		FinalAmount:  req.FinalAmount,
		PaymentType:  PaymentMethod(req.PaymentType),
		CashPaid:     req.CashPaid,
		OnlinePaid:   req.OnlinePaid,
		LoanFlow:     LoanFlow(req.LoanFlow),
		BankID:       req.BankID,
		Remarks:      req.Remarks,
	}, nil
}

func (h *Handler) create(kind DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := shared.IdentityFromContext(r.Context())
		in, err := h.decode(r, kind)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		doc, err := h.engine.Create(r.Context(), id, in)
		if err != nil {
			h.logger.Error("create document", slog.Any("error", err), slog.String("kind", string(kind)))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, doc)
	}
}

func (h *Handler) update(kind DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := shared.IdentityFromContext(r.Context())
		docID, err := parseID(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		in, err := h.decode(r, kind)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		doc, err := h.engine.Update(r.Context(), id, docID, in)
		if err != nil {
			h.logger.Error("update document", slog.Any("error", err), slog.Int64("id", docID))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	docID, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.engine.Delete(r.Context(), id, docID); err != nil {
		h.logger.Error("delete document", slog.Any("error", err), slog.Int64("id", docID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": docID})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	docID, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, err := h.engine.Get(r.Context(), id, docID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) list(kind DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := shared.IdentityFromContext(r.Context())
		page, perPage := shared.PageFromRequest(r, 10)
		docs, pagination, err := h.engine.List(r.Context(), id, kind, page, perPage)
		if err != nil {
			h.logger.Error("list documents", slog.Any("error", err), slog.String("kind", string(kind)))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, httpx.Listing{Data: docs, Pagination: pagination})
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid document id", shared.ErrValidation)
	}
	return id, nil
}
