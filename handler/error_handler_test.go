package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"card-bank-api/common"
	"card-bank-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		err   error
		code  int
		title string
	}{
		{service.ErrInvalidAmount, http.StatusBadRequest, "Invalid Amount"},
		{service.ErrSameCardTransfer, http.StatusBadRequest, "Invalid Amount"},
		{service.ErrCardNotFound, http.StatusNotFound, "Card Not Found"},
		{service.ErrSourceCardBlocked, http.StatusBadRequest, "Card Blocked"},
		{service.ErrCardAlreadyBlocked, http.StatusBadRequest, "Card Blocked"},
		{service.ErrInsufficientFunds, http.StatusBadRequest, "Insufficient Funds"},
		{service.ErrDescriptionTooLong, http.StatusBadRequest, "Validation Error"},
		{service.ErrInvalidCardStatus, http.StatusBadRequest, "Bad Request"},
		{service.ErrUserAlreadyExists, http.StatusConflict, "Conflict"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "Unauthorized"},
		{service.ErrRefreshTokenNotFound, http.StatusNotFound, "Not Found"},
		{service.ErrRefreshTokenExpired, http.StatusUnauthorized, "Unauthorized"},
		{service.ErrUserNotFound, http.StatusNotFound, "Not Found"},
		{fmt.Errorf("wrapped: %w", service.ErrCardNotFound), http.StatusNotFound, "Card Not Found"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			appErr := mapServiceError(tt.err, "fallback")
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.title, appErr.Title)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}
}

func TestMapServiceError_TransferFailed(t *testing.T) {
	appErr := mapServiceError(&service.TransferFailedError{TransactionID: 17, Err: errors.New("disk full")}, "fallback")

	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "Transfer failed and was recorded as transaction 17", appErr.Message)
}

func TestErrorHandlingMiddleware_RendersBody(t *testing.T) {
	h := ErrorHandlingMiddleware(func(w http.ResponseWriter, r *http.Request) *common.AppError {
		return mapServiceError(service.ErrInsufficientFunds, "fallback")
	})
	req := httptest.NewRequest(http.MethodPost, "/api/cards/transfer", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body common.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, body.Status)
	assert.Equal(t, "Insufficient Funds", body.Error)
	assert.Equal(t, service.ErrInsufficientFunds.Error(), body.Message)
	assert.Equal(t, "/api/cards/transfer", body.Path)
	assert.False(t, body.Timestamp.IsZero())
}

func TestPathID(t *testing.T) {
	for _, tt := range []struct {
		value string
		ok    bool
	}{{"5", true}, {"0", false}, {"-3", false}, {"abc", false}} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetPathValue("cardId", tt.value)

		id, appErr := pathID(req, "cardId")

		if tt.ok {
			assert.Nil(t, appErr)
			assert.Equal(t, int64(5), id)
		} else {
			require.NotNil(t, appErr, tt.value)
			assert.Equal(t, http.StatusBadRequest, appErr.Code)
		}
	}
}
