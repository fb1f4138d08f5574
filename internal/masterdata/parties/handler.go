package parties

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
	r.Route("/parties", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

type partyRequest struct {
	Type    string `json:"type" validate:"required,oneof=Customer Supplier"`
	Name    string `json:"name" validate:"required,max=128"`
	Contact string `json:"contact" validate:"max=64"`
	Address string `json:"address" validate:"max=255"`
	GSTIN   string `json:"gst_number" validate:"max=20"`
}

func (h *Handler) decode(r *http.Request) (Party, error) {
	var req partyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return Party{}, fmt.Errorf("%w: malformed body", shared.ErrValidation)
	}
	if err := h.validate.Struct(req); err != nil {
		return Party{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return Party{
		Type:    PartyType(req.Type),
		Name:    req.Name,
		Contact: req.Contact,
		Address: req.Address,
		GSTIN:   req.GSTIN,
	}, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	page, perPage := shared.PageFromRequest(r, 20)
	p := shared.NewPagination(page, perPage, 0)
	filters := ListFilters{
		Type:   PartyType(r.URL.Query().Get("type")),
		Search: r.URL.Query().Get("search"),
		Limit:  p.PerPage,
		Offset: p.Offset(),
	}
	rows, total, err := h.service.List(r.Context(), id, filters)
	if err != nil {
		h.logger.Error("list parties", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.Listing{Data: rows, Pagination: shared.NewPagination(p.Page, p.PerPage, total)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	partyID, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	party, err := h.service.Get(r.Context(), id, partyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, party)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	party, err := h.decode(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), id, party)
	if err != nil {
		h.logger.Error("create party", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	partyID, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	party, err := h.decode(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	party.ID = partyID
	if err := h.service.Update(r.Context(), id, party); err != nil {
		h.logger.Error("update party", slog.Any("error", err), slog.Int64("id", partyID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": partyID})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	partyID, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id, partyID); err != nil {
		h.logger.Error("delete party", slog.Any("error", err), slog.Int64("id", partyID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": partyID})
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid party id", shared.ErrValidation)
	}
	return id, nil
}
