package handlers

import (
	"net/http"

	"github.com/dom/mama-respira/internal/api/middleware"
	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type MessageHandler struct {
	messageService *service.MessageService
	authService    *service.AuthService
	log            *zap.Logger
}

func NewMessageHandler(messageService *service.MessageService, authService *service.AuthService, log *zap.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		authService:    authService,
		log:            log,
	}
}

// SendMessageRequest leaves content checks to the service so empty and
// oversized messages get the same errors on every transport.
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content"`
}

type CoachIDResponse struct {
	CoachID   string `json:"coach_id"`
	CoachName string `json:"coach_name"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	var req SendMessageRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	msg, err := h.messageService.Send(r.Context(), user, req.ReceiverID, req.Content)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, msg)
}

func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())
	otherID := chi.URLParam(r, "otherUserId")

	msgs, err := h.messageService.GetConversation(r.Context(), user, otherID, queryLimit(r))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if msgs == nil {
		msgs = []*domain.DirectMessage{}
	}

	respondJSON(w, r, http.StatusOK, msgs)
}

func (h *MessageHandler) CoachID(w http.ResponseWriter, r *http.Request) {
	coach, err := h.authService.GetCoach(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, CoachIDResponse{
		CoachID:   coach.UserID,
		CoachName: coach.Name,
	})
}

func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	n, err := h.messageService.UnreadCount(r.Context(), user.UserID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, UnreadCountResponse{UnreadCount: n})
}
