package handlers

import (
	"net/http"

	"github.com/dom/mama-respira/internal/api/middleware"
	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BitacoraHandler struct {
	bitacoraService *service.BitacoraService
	log             *zap.Logger
}

func NewBitacoraHandler(bitacoraService *service.BitacoraService, log *zap.Logger) *BitacoraHandler {
	return &BitacoraHandler{bitacoraService: bitacoraService, log: log}
}

func (h *BitacoraHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	var req service.BitacoraInput
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	b, err := h.bitacoraService.Create(r.Context(), user, req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, b)
}

func (h *BitacoraHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	list, err := h.bitacoraService.List(r.Context(), user, queryLimit(r))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if list == nil {
		list = []*domain.Bitacora{}
	}

	respondJSON(w, r, http.StatusOK, list)
}

// Today answers null when the caller has not logged the current day yet.
func (h *BitacoraHandler) Today(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	b, err := h.bitacoraService.Today(r.Context(), user)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, b)
}

func (h *BitacoraHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	b, err := h.bitacoraService.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, b)
}

func (h *BitacoraHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	var req service.BitacoraInput
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	b, err := h.bitacoraService.Update(r.Context(), user, chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, b)
}
