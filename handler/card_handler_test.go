package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"card-bank-api/common"
	"card-bank-api/model"
	"card-bank-api/repository"
	"card-bank-api/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cardExpiry = time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC)

func newCardHandler(t *testing.T) (*CardHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewCardService(repository.NewCardRepository(db), repository.NewUserRepository(db), nil, nil)
	return NewCardHandler(svc), dbMock
}

// userRequest builds a request as AuthMiddleware would hand it on.
func userRequest(method, target string, userID int64, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), UserIDKey, userID))
}

func cardRow(id int64, status, balance string) *sqlmock.Rows {
	return sqlmock.NewRows(cardRowColumns).
		AddRow(id, 7, "enc", "4000 **** **** 123"+string(rune('0'+id)), cardExpiry, status, balance, cardExpiry)
}

func serve(h func(http.ResponseWriter, *http.Request) *common.AppError, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	ErrorHandlingMiddleware(h).ServeHTTP(rr, req)
	return rr
}

func decodeCards(t *testing.T, rr *httptest.ResponseRecorder) []model.CardResponse {
	t.Helper()
	var cards []model.CardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cards))
	return cards
}

func TestCardHandler_ListCards(t *testing.T) {
	t.Run("all cards", func(t *testing.T) {
		h, dbMock := newCardHandler(t)
		dbMock.ExpectQuery(regexp.QuoteMeta(`FROM cards WHERE user_id = $1 ORDER BY id`)).
			WithArgs(int64(7)).
			WillReturnRows(cardRow(1, "ACTIVE", "10.50"))

		rr := serve(h.ListCards, userRequest(http.MethodGet, "/api/cards", 7, ""))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		cards := decodeCards(t, rr)
		require.Len(t, cards, 1)
		assert.Equal(t, "4000 **** **** 1231", cards[0].MaskedNumber)
		assert.Equal(t, "2028-01-01", cards[0].ExpiryDate)
		assert.Equal(t, "10.5", cards[0].Balance.String())
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("status filter is case-insensitive", func(t *testing.T) {
		h, dbMock := newCardHandler(t)
		dbMock.ExpectQuery(regexp.QuoteMeta(`FROM cards WHERE user_id = $1 AND status = $2 ORDER BY id`)).
			WithArgs(int64(7), "BLOCKED").
			WillReturnRows(cardRow(2, "BLOCKED", "0.00"))

		rr := serve(h.ListCards, userRequest(http.MethodGet, "/api/cards?status=blocked", 7, ""))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		cards := decodeCards(t, rr)
		require.Len(t, cards, 1)
		assert.Equal(t, model.CardStatusBlocked, cards[0].Status)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown status", func(t *testing.T) {
		h, dbMock := newCardHandler(t)

		rr := serve(h.ListCards, userRequest(http.MethodGet, "/api/cards?status=lost", 7, ""))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("no cards renders an empty array", func(t *testing.T) {
		h, dbMock := newCardHandler(t)
		dbMock.ExpectQuery(regexp.QuoteMeta(`FROM cards WHERE user_id = $1 ORDER BY id`)).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(cardRowColumns))

		rr := serve(h.ListCards, userRequest(http.MethodGet, "/api/cards", 7, ""))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})
}

func TestCardHandler_SearchCards(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		h, dbMock := newCardHandler(t)

		rr := serve(h.SearchCards, userRequest(http.MethodGet, "/api/cards/search?query=%20%20", 7, ""))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Validation Error", decodeError(t, rr).Error)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("wildcards in the query match literally", func(t *testing.T) {
		h, dbMock := newCardHandler(t)
		dbMock.ExpectQuery(regexp.QuoteMeta(`masked_number ILIKE '%' || $2 || '%'`)).
			WithArgs(int64(7), `12\%`).
			WillReturnRows(sqlmock.NewRows(cardRowColumns))

		rr := serve(h.SearchCards, userRequest(http.MethodGet, "/api/cards/search?query=12%25", 7, ""))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.JSONEq(t, `[]`, rr.Body.String())
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("matches", func(t *testing.T) {
		h, dbMock := newCardHandler(t)
		dbMock.ExpectQuery(regexp.QuoteMeta(`masked_number ILIKE '%' || $2 || '%'`)).
			WithArgs(int64(7), "1231").
			WillReturnRows(cardRow(1, "ACTIVE", "1.00"))

		rr := serve(h.SearchCards, userRequest(http.MethodGet, "/api/cards/search?query=1231", 7, ""))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Len(t, decodeCards(t, rr), 1)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestCardHandler_GetCard(t *testing.T) {
	byOwner := regexp.QuoteMeta(`FROM cards WHERE id = $1 AND user_id = $2`)

	t.Run("foreign card is not found", func(t *testing.T) {
		h, dbMock := newCardHandler(t)
		dbMock.ExpectQuery(byOwner).WithArgs(int64(3), int64(7)).WillReturnError(sql.ErrNoRows)

		req := userRequest(http.MethodGet, "/api/cards/3", 7, "")
		req.SetPathValue("cardId", "3")
		rr := serve(h.GetCard, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Card Not Found", decodeError(t, rr).Error)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("malformed id", func(t *testing.T) {
		h, dbMock := newCardHandler(t)

		req := userRequest(http.MethodGet, "/api/cards/abc", 7, "")
		req.SetPathValue("cardId", "abc")
		rr := serve(h.GetCard, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("balance", func(t *testing.T) {
		h, dbMock := newCardHandler(t)
		dbMock.ExpectQuery(byOwner).WithArgs(int64(1), int64(7)).WillReturnRows(cardRow(1, "ACTIVE", "123.45"))

		req := userRequest(http.MethodGet, "/api/cards/1/balance", 7, "")
		req.SetPathValue("cardId", "1")
		rr := serve(h.GetBalance, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.JSONEq(t, `{"card_id":1,"masked_number":"4000 **** **** 1231","balance":123.45}`, rr.Body.String())
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestCardHandler_BlockCard(t *testing.T) {
	byOwner := regexp.QuoteMeta(`FROM cards WHERE id = $1 AND user_id = $2`)
	updateStatus := regexp.QuoteMeta(`UPDATE cards SET status = $1 WHERE id = $2`)

	t.Run("blocks own card", func(t *testing.T) {
		h, dbMock := newCardHandler(t)
		dbMock.ExpectQuery(byOwner).WithArgs(int64(1), int64(7)).WillReturnRows(cardRow(1, "ACTIVE", "5.00"))
		dbMock.ExpectExec(updateStatus).WithArgs("BLOCKED", int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))

		req := userRequest(http.MethodPost, "/api/cards/1/block", 7, "")
		req.SetPathValue("cardId", "1")
		rr := serve(h.BlockCard, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var card model.CardResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &card))
		assert.Equal(t, model.CardStatusBlocked, card.Status)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("already blocked", func(t *testing.T) {
		h, dbMock := newCardHandler(t)
		dbMock.ExpectQuery(byOwner).WithArgs(int64(2), int64(7)).WillReturnRows(cardRow(2, "BLOCKED", "5.00"))

		req := userRequest(http.MethodPost, "/api/cards/2/block", 7, "")
		req.SetPathValue("cardId", "2")
		rr := serve(h.BlockCard, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Card Blocked", decodeError(t, rr).Error)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}
