package handlers

import (
	"net/http"

	"github.com/dom/mama-respira/internal/api/middleware"
	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	log         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RoleResponse struct {
	Message string      `json:"message"`
	Role    domain.Role `json:"role"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())
	respondJSON(w, r, http.StatusOK, toUserResponse(user))
}

// Logout has no server-side effect; tokens stay valid until they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, MessageResponse{Message: "Sesión cerrada"})
}

func (h *AuthHandler) UpgradePremium(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.CurrentUser(r.Context())

	upgraded, err := h.authService.UpgradeToPremium(r.Context(), user)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	respondJSON(w, r, http.StatusOK, RoleResponse{
		Message: "Actualizado a premium",
		Role:    upgraded.Role,
	})
}

func toAuthResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:        toUserResponse(result.User),
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
	}
}
