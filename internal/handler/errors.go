package handler

import (
	"errors"
	"log"
	"net/http"

	"backend/internal/service"
)

// statusFor maps service-layer sentinel errors onto HTTP statuses. Anything
// unrecognized is a persistence or infrastructure failure: it is logged with
// context and surfaced as a generic 500 without leaking internals.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountNotActivated),
		errors.Is(err, service.ErrDuplicateUser),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrAlreadyActive),
		errors.Is(err, service.ErrInvalidNetwork),
		errors.Is(err, service.ErrDuplicateNetwork),
		errors.Is(err, service.ErrRoleExists),
		errors.Is(err, service.ErrRoleCycle),
		errors.Is(err, service.ErrRoleInUse):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, service.ErrWhitelistNotFound),
		errors.Is(err, service.ErrJournalNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrConfiguration):
		return http.StatusInternalServerError, err.Error()
	default:
		log.Printf("Unexpected service error: %v", err)
		return http.StatusInternalServerError, "Internal server error"
	}
}
