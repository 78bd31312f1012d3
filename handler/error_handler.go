package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"card-bank-api/common"
	"card-bank-api/service"
)

func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w, r)
		}
	}
}

// mapServiceError translates service errors into HTTP errors. fallback is the
// message used for unexpected failures.
func mapServiceError(err error, fallback string) *common.AppError {
	var failed *service.TransferFailedError

	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		return common.NewTitledAppError(http.StatusBadRequest, "Invalid Amount", err.Error(), err)
	case errors.Is(err, service.ErrCardNotFound):
		return common.NewTitledAppError(http.StatusNotFound, "Card Not Found", err.Error(), err)
	case errors.Is(err, service.ErrCardBlocked), errors.Is(err, service.ErrCardAlreadyBlocked):
		return common.NewTitledAppError(http.StatusBadRequest, "Card Blocked", err.Error(), err)
	case errors.Is(err, service.ErrInsufficientFunds):
		return common.NewTitledAppError(http.StatusBadRequest, "Insufficient Funds", err.Error(), err)
	case errors.Is(err, service.ErrDescriptionTooLong):
		return common.NewTitledAppError(http.StatusBadRequest, "Validation Error", err.Error(), err)
	case errors.Is(err, service.ErrInvalidCardStatus):
		return common.NewAppError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, service.ErrUserAlreadyExists):
		return common.NewAppError(http.StatusConflict, err.Error(), err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return common.NewAppError(http.StatusUnauthorized, err.Error(), err)
	case errors.Is(err, service.ErrRefreshTokenNotFound):
		return common.NewAppError(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, service.ErrRefreshTokenExpired):
		return common.NewAppError(http.StatusUnauthorized, err.Error(), err)
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, err.Error(), err)
	case errors.As(err, &failed):
		msg := "Transfer failed"
		if failed.TransactionID != 0 {
			msg = fmt.Sprintf("Transfer failed and was recorded as transaction %d", failed.TransactionID)
		}
		return common.NewAppError(http.StatusInternalServerError, msg, err)
	default:
		return common.NewAppError(http.StatusInternalServerError, fallback, err)
	}
}

func pathID(r *http.Request, name string) (int64, *common.AppError) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid %s in URL path", name), err)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
