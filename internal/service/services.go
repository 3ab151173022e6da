package service

import (
	"github.com/dom/mama-respira/internal/auth"
	"github.com/dom/mama-respira/internal/completion"
	"github.com/dom/mama-respira/internal/config"
	"github.com/dom/mama-respira/internal/repository"
	"go.uber.org/zap"
)

type Services struct {
	Auth         *AuthService
	Message      *MessageService
	Conversation *ConversationService
	Bitacora     *BitacoraService
	Checkin      *CheckinService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, tokens *auth.TokenService, notifier Notifier, completer completion.Completer, log *zap.Logger) *Services {
	return &Services{
		Auth:         NewAuthService(repos.User, tokens, cfg.CoachEmail, log.Named("auth")),
		Message:      NewMessageService(repos.User, repos.Message, notifier, log.Named("messages")),
		Conversation: NewConversationService(repos.User, repos.Message),
		Bitacora:     NewBitacoraService(repos.User, repos.Bitacora, completer, log.Named("bitacora")),
		Checkin:      NewCheckinService(repos.User, repos.Checkin, completer, log.Named("checkin")),
	}
}
