package common

import (
	"encoding/json"
	"net/http"
	"time"

	"card-bank-api/logger"

	"github.com/sirupsen/logrus"
)

// AppError is the error value returned by HTTP handlers. Err is the internal
// cause; it is logged but never rendered to the client.
type AppError struct {
	Code    int    `json:"status"`
	Title   string `json:"error"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError titled with the standard status text.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Title:   http.StatusText(code),
		Message: message,
		Err:     err,
	}
}

// NewTitledAppError is NewAppError with a domain-specific title such as "Card Blocked".
func NewTitledAppError(code int, title, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Title:   title,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Send(w http.ResponseWriter, r *http.Request) {
	fields := logrus.Fields{
		"status_code": e.Code,
		"path":        r.URL.Path,
	}
	if e.Err != nil {
		fields["internal_error"] = e.Err.Error()
	}
	if e.Code >= http.StatusInternalServerError {
		logger.Log.WithFields(fields).Error(e.Message)
	} else {
		logger.Log.WithFields(fields).Warn(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Timestamp: time.Now(),
		Status:    e.Code,
		Error:     e.Title,
		Message:   e.Message,
		Path:      r.URL.Path,
	})
}
