// Package httpapi — HTTP/JSON слой product-service и order-service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

const internalErrorMessage = "internal error"

type jsonError struct {
	Error string `json:"error"`
}

// WriteJSON пишет v как JSON с кодом status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteJSONError пишет {"error": message} с кодом status.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, jsonError{Error: message})
}

// statusFromError сопоставляет вид ошибки домена с HTTP-статусом.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrProductUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError отвечает клиентским сообщением ошибки домена. Прочие
// ошибки логируются и уходят клиенту как 500 без подробностей.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *log.Entry, err error) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		WriteJSONError(w, statusFromError(domainErr), domainErr.Error())
		return
	}

	logger.WithError(err).WithFields(log.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": RequestIDFromContext(r.Context()),
	}).Error("request failed")
	WriteJSONError(w, http.StatusInternalServerError, internalErrorMessage)
}
