package banks

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerly/ledgerly/internal/platform/httpx"
	"github.com/ledgerly/ledgerly/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/banks", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

type bankRequest struct {
	Name           string  `json:"bank_name" validate:"required,max=128"`
	AccountNumber  string  `json:"account_number" validate:"required,max=32"`
	HolderName     string  `json:"holder_name" validate:"max=128"`
	IFSC           string  `json:"ifsc_code" validate:"max=16"`
	AccountBalance float64 `json:"account_balance" validate:"gte=0"`
}

func (h *Handler) decode(r *http.Request) (Bank, error) {
	var req bankRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return Bank{}, fmt.Errorf("%w: malformed body", shared.ErrValidation)
	}
	if err := h.validate.Struct(req); err != nil {
		return Bank{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return Bank{
		Name:           req.Name,
		AccountNumber:  req.AccountNumber,
		HolderName:     req.HolderName,
		IFSC:           req.IFSC,
		AccountBalance: req.AccountBalance,
	}, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	banks, err := h.service.List(r.Context(), id)
	if err != nil {
		h.logger.Error("list banks", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": banks})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	bankID, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	bank, err := h.service.Get(r.Context(), id, bankID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bank)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	bank, err := h.decode(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), id, bank)
	if err != nil {
		h.logger.Error("create bank", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	bankID, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	bank, err := h.decode(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	bank.ID = bankID
	if err := h.service.Update(r.Context(), id, bank); err != nil {
		h.logger.Error("update bank", slog.Any("error", err), slog.Int64("id", bankID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": bankID})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	bankID, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id, bankID); err != nil {
		h.logger.Error("delete bank", slog.Any("error", err), slog.Int64("id", bankID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": bankID})
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid bank id", shared.ErrValidation)
	}
	return id, nil
}
