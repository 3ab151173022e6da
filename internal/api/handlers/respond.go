package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/logger"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Picture   *string     `json:"picture,omitempty"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		return domain.WrapError(domain.ErrCodeValidation, domain.ErrInvalidPayload.Message, err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return domain.WrapError(domain.ErrCodeValidation, validationMessage(verrs), err)
		}
		return domain.WrapError(domain.ErrCodeValidation, domain.ErrInvalidPayload.Message, err)
	}
	return nil
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		field := strings.ToLower(err.Field())
		switch err.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("el campo %s es obligatorio", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("el campo %s debe ser un email válido", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("el campo %s admite como máximo %s", field, err.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("el campo %s debe ser al menos %s", field, err.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("el campo %s debe ser uno de: %s", field, err.Param()))
		case "datetime":
			msgs = append(msgs, domain.ErrInvalidDate.Message)
		default:
			msgs = append(msgs, fmt.Sprintf("el campo %s no es válido", field))
		}
	}
	return strings.Join(msgs, ", ")
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.ErrCodeValidation, domain.ErrCodeConflict:
		return http.StatusBadRequest
	case domain.ErrCodeAuthentication:
		return http.StatusUnauthorized
	case domain.ErrCodePermission:
		return http.StatusForbidden
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// respondError maps err onto the error taxonomy. Internal failures are
// logged and answered with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var dErr *domain.Error
	if !errors.As(err, &dErr) || dErr.Code == domain.ErrCodeInternal {
		logger.WithRequestID(r.Context(), log).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondJSON(w, r, http.StatusInternalServerError, ErrorResponse{Detail: "Error interno del servidor"})
		return
	}
	respondJSON(w, r, statusFor(dErr.Code), ErrorResponse{Detail: dErr.Message})
}

// queryLimit parses ?limit=. Absent or malformed values yield 0 so the
// service applies its default.
func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
