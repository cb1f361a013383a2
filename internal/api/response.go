package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noterag/noterag/internal/domain"
)

// Envelope codes
const (
	CodeOK    = 0
	CodeError = 1
)

// SuccessMessage is the msg of every successful envelope.
const SuccessMessage = "success"

// Envelope wraps every API response
type Envelope struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Success writes a successful envelope
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, Envelope{Code: CodeOK, Msg: SuccessMessage, Data: data})
}

// Error writes a failure envelope
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Code: CodeError, Msg: message})
}

// DomainErrorToHTTP maps domain errors to HTTP status codes
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}

	switch domainErr.Code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeInvalidOperation:
		return http.StatusConflict
	case domain.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes an appropriate error response based on the error type.
// Internal errors are not echoed to the caller.
func HandleError(w http.ResponseWriter, err error) {
	status := DomainErrorToHTTP(err)
	if status == http.StatusInternalServerError {
		Error(w, status, "internal server error")
		return
	}
	Error(w, status, err.Error())
}
