package handler

import (
	"net/http"
	"strings"

	"card-bank-api/common"
	"card-bank-api/logger"
	"card-bank-api/model"
	"card-bank-api/service"

	"github.com/sirupsen/logrus"
)

// CardHandler serves the authenticated user's own cards.
type CardHandler struct {
	service *service.CardService
}

func NewCardHandler(s *service.CardService) *CardHandler {
	return &CardHandler{service: s}
}

// ListCards godoc
// @Summary      List my cards
// @Description  Lists the caller's cards, optionally only those with the given status.
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "ACTIVE, BLOCKED or EXPIRED"
// @Success      200  {array}   model.CardResponse
// @Failure      400  {object}  common.ErrorResponse "Invalid card status"
// @Failure      401  {object}  common.ErrorResponse
// @Router       /api/cards [get]
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	var cards []*model.Card
	var err error
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		cards, err = h.service.ListCardsByStatus(r.Context(), userID, model.CardStatus(strings.ToUpper(status)))
	} else {
		cards, err = h.service.ListCardsForUser(r.Context(), userID)
	}
	if err != nil {
		return mapServiceError(err, "Could not retrieve cards")
	}

	writeJSON(w, http.StatusOK, model.NewCardResponses(cards))
	return nil
}

// SearchCards godoc
// @Summary      Search my cards by masked number
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        query query string true "Part of the masked card number"
// @Success      200  {array}   model.CardResponse
// @Failure      400  {object}  common.ErrorResponse
// @Router       /api/cards/search [get]
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		return common.NewTitledAppError(http.StatusBadRequest, "Validation Error", "Search query cannot be empty", nil)
	}

	cards, err := h.service.SearchCards(r.Context(), userID, query)
	if err != nil {
		return mapServiceError(err, "Could not search cards")
	}

	writeJSON(w, http.StatusOK, model.NewCardResponses(cards))
	return nil
}

// GetCard godoc
// @Summary      Get one of my cards
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        cardId path int true "Card ID"
// @Success      200  {object}  model.CardResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /api/cards/{cardId} [get]
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}
	cardID, appErr := pathID(r, "cardId")
	if appErr != nil {
		return appErr
	}

	card, err := h.service.FindCardByIDAndUser(r.Context(), cardID, userID)
	if err != nil {
		return mapServiceError(err, "Could not retrieve card")
	}

	writeJSON(w, http.StatusOK, model.NewCardResponse(card))
	return nil
}

// GetBalance godoc
// @Summary      Get the balance of one of my cards
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        cardId path int true "Card ID"
// @Success      200  {object}  model.BalanceResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /api/cards/{cardId}/balance [get]
func (h *CardHandler) GetBalance(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}
	cardID, appErr := pathID(r, "cardId")
	if appErr != nil {
		return appErr
	}

	balance, err := h.service.GetBalance(r.Context(), cardID, userID)
	if err != nil {
		return mapServiceError(err, "Could not retrieve balance")
	}

	writeJSON(w, http.StatusOK, balance)
	return nil
}

// BlockCard godoc
// @Summary      Block one of my cards
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        cardId path int true "Card ID"
// @Success      200  {object}  model.CardResponse
// @Failure      400  {object}  common.ErrorResponse "Card already blocked"
// @Failure      404  {object}  common.ErrorResponse
// @Router       /api/cards/{cardId}/block [post]
func (h *CardHandler) BlockCard(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}
	cardID, appErr := pathID(r, "cardId")
	if appErr != nil {
		return appErr
	}

	logger.Log.WithFields(logrus.Fields{"user_id": userID, "card_id": cardID}).Info("Block card request received")

	card, err := h.service.BlockCard(r.Context(), cardID, userID)
	if err != nil {
		return mapServiceError(err, "Could not block card")
	}

	writeJSON(w, http.StatusOK, model.NewCardResponse(card))
	return nil
}
