package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a domain error so transports can map it to a status.
type ErrorCode string

const (
	ErrCodeValidation     ErrorCode = "VALIDATION"
	ErrCodeAuthentication ErrorCode = "AUTHENTICATION"
	ErrCodePermission     ErrorCode = "PERMISSION"
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeConflict       ErrorCode = "CONFLICT"
	ErrCodeInternal       ErrorCode = "INTERNAL"
)

// Error is a classified error whose Message is safe to show to the caller.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches domain errors by code and message so wrapped copies of a
// sentinel still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation returns a validation error with a caller-facing message.
func Validation(message string) *Error {
	return NewError(ErrCodeValidation, message)
}

// Authentication errors
var (
	ErrNotAuthenticated   = NewError(ErrCodeAuthentication, "No autenticado")
	ErrInvalidCredentials = NewError(ErrCodeAuthentication, "Email o contraseña incorrectos")
)

// Permission errors
var (
	ErrPremiumRequired     = NewError(ErrCodePermission, "Se requiere cuenta premium")
	ErrCoachOnly           = NewError(ErrCodePermission, "Acceso solo para coach")
	ErrPremiumToSend       = NewError(ErrCodePermission, "Solo usuarios premium pueden enviar mensajes")
	ErrReceiverMustBeCoach = NewError(ErrCodePermission, "Solo puedes enviar mensajes a la coach")
	ErrCoachRoleLocked     = NewError(ErrCodePermission, "El rol de la coach no se puede modificar")
	ErrNotBitacoraOwner    = NewError(ErrCodePermission, "Solo puedes modificar tus propias bitácoras")
)

// Not found errors
var (
	ErrUserNotFound     = NewError(ErrCodeNotFound, "Usuario no encontrado")
	ErrCoachNotFound    = NewError(ErrCodeNotFound, "Coach no encontrada")
	ErrBitacoraNotFound = NewError(ErrCodeNotFound, "Bitácora no encontrada")
)

// Validation and conflict errors
var (
	ErrEmailTaken     = NewError(ErrCodeConflict, "Email ya registrado")
	ErrCoachExists    = NewError(ErrCodeConflict, "Ya existe una coach asignada")
	ErrInvalidRole    = NewError(ErrCodeValidation, "Rol inválido")
	ErrEmptyMessage   = NewError(ErrCodeValidation, "El mensaje no puede estar vacío")
	ErrMessageTooLong = NewError(ErrCodeValidation, "El mensaje es demasiado largo")
	ErrInvalidPayload = NewError(ErrCodeValidation, "Solicitud inválida")
	ErrInvalidDate    = NewError(ErrCodeValidation, "Fecha inválida, usa el formato AAAA-MM-DD")
	ErrTooManyNaps    = NewError(ErrCodeValidation, "Máximo 3 siestas por día")
	ErrInvalidMood    = NewError(ErrCodeValidation, "El estado de ánimo debe ser 1, 2 o 3")
)

// CodeOf returns the code of the first domain error in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
