package handlers

import (
	"fmt"
	"net/http"

	"github.com/dom/mama-respira/internal/api/middleware"
	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CoachHandler serves the coach dashboard. Every route is coach-gated by
// the router.
type CoachHandler struct {
	authService         *service.AuthService
	conversationService *service.ConversationService
	bitacoraService     *service.BitacoraService
	checkinService      *service.CheckinService
	log                 *zap.Logger
}

func NewCoachHandler(
	authService *service.AuthService,
	conversationService *service.ConversationService,
	bitacoraService *service.BitacoraService,
	checkinService *service.CheckinService,
	log *zap.Logger,
) *CoachHandler {
	return &CoachHandler{
		authService:         authService,
		conversationService: conversationService,
		bitacoraService:     bitacoraService,
		checkinService:      checkinService,
		log:                 log,
	}
}

// UpdateRoleRequest is validated by the service so an unknown role maps
// to the same error everywhere.
type UpdateRoleRequest struct {
	Role domain.Role `json:"role" validate:"required"`
}

func (h *CoachHandler) Clients(w http.ResponseWriter, r *http.Request) {
	coach, _ := middleware.CurrentUser(r.Context())

	convs, err := h.conversationService.ListClientConversations(r.Context(), coach)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if convs == nil {
		convs = []*domain.Conversation{}
	}

	respondJSON(w, r, http.StatusOK, convs)
}

func (h *CoachHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req UpdateRoleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	user, err := h.authService.SetRole(r.Context(), userID, req.Role)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, RoleResponse{
		Message: fmt.Sprintf("Rol actualizado a %s", user.Role),
		Role:    user.Role,
	})
}

func (h *CoachHandler) ClientBitacoras(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	list, err := h.bitacoraService.ListForClient(r.Context(), userID, queryLimit(r))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if list == nil {
		list = []*domain.Bitacora{}
	}

	respondJSON(w, r, http.StatusOK, list)
}

func (h *CoachHandler) ClientCheckins(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	list, err := h.checkinService.ListForClient(r.Context(), userID, queryLimit(r))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if list == nil {
		list = []*domain.Checkin{}
	}

	respondJSON(w, r, http.StatusOK, list)
}
