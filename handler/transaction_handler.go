package handler

import (
	"net/http"

	"card-bank-api/common"
	"card-bank-api/logger"
	"card-bank-api/model"
	"card-bank-api/service"

	"github.com/sirupsen/logrus"
)

// TransactionHandler holds dependencies for transfer and history handlers.
type TransactionHandler struct {
	service *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with its dependencies.
func NewTransactionHandler(s *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// Transfer godoc
// @Summary      Transfer money between my cards
// @Description  Moves an amount from one of the caller's cards to another. Both cards must belong to the caller and be unblocked.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        transfer body model.TransferRequest true "Transfer details"
// @Success      200  {object}  model.TransactionResponse
// @Failure      400  {object}  common.ErrorResponse "Invalid amount, blocked card or insufficient funds"
// @Failure      401  {object}  common.ErrorResponse "Unauthorized: Invalid or missing token"
// @Failure      404  {object}  common.ErrorResponse "Card not found"
// @Failure      500  {object}  common.ErrorResponse "Transfer failed and was recorded as FAILED"
// @Router       /api/cards/transfer [post]
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.TransferRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":      userID,
		"from_card_id": req.FromCardID,
		"to_card_id":   req.ToCardID,
	}).Info("Transfer request received")

	transaction, err := h.service.Transfer(r.Context(), userID, req)
	if err != nil {
		return mapServiceError(err, "Could not process transfer")
	}

	writeJSON(w, http.StatusOK, model.NewTransactionResponse(transaction))
	return nil
}

// ListCardTransactions godoc
// @Summary      List the transaction history of one of my cards
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        cardId path int true "Card ID"
// @Success      200  {array}   model.TransactionResponse
// @Failure      400  {object}  common.ErrorResponse "Invalid card ID in URL path"
// @Failure      404  {object}  common.ErrorResponse "Card not found"
// @Router       /api/cards/{cardId}/transactions [get]
func (h *TransactionHandler) ListCardTransactions(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}
	cardID, appErr := pathID(r, "cardId")
	if appErr != nil {
		return appErr
	}

	transactions, err := h.service.ListTransactionsForCard(r.Context(), userID, cardID)
	if err != nil {
		return mapServiceError(err, "Could not retrieve transactions")
	}

	writeJSON(w, http.StatusOK, model.NewTransactionResponses(transactions))
	return nil
}

// ListTransactions godoc
// @Summary      List transactions across all my cards
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.TransactionResponse
// @Router       /api/cards/transactions [get]
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	transactions, err := h.service.ListTransactionsForUser(r.Context(), userID)
	if err != nil {
		return mapServiceError(err, "Could not retrieve transactions")
	}

	writeJSON(w, http.StatusOK, model.NewTransactionResponses(transactions))
	return nil
}
