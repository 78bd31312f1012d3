// handler/health_handler_test.go
package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	t.Run("database up", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewHealthHandler(fakePinger{}).HealthCheck(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"UP","database":"UP"}`, rr.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewHealthHandler(fakePinger{err: errors.New("refused")}).HealthCheck(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"status":"DOWN","database":"DOWN"}`, rr.Body.String())
	})
}
