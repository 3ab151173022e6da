package handlers

import (
	"net/http"

	"github.com/dom/mama-respira/internal/api/middleware"
	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/service"
	"go.uber.org/zap"
)

type CheckinHandler struct {
	checkinService *service.CheckinService
	log            *zap.Logger
}

func NewCheckinHandler(checkinService *service.CheckinService, log *zap.Logger) *CheckinHandler {
	return &CheckinHandler{checkinService: checkinService, log: log}
}

func (h *CheckinHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	var req service.CheckinInput
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	c, err := h.checkinService.Create(r.Context(), user, req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, c)
}

func (h *CheckinHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	list, err := h.checkinService.List(r.Context(), user, queryLimit(r))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if list == nil {
		list = []*domain.Checkin{}
	}

	respondJSON(w, r, http.StatusOK, list)
}
