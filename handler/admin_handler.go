package handler

import (
	"net/http"

	"card-bank-api/common"
	"card-bank-api/logger"
	"card-bank-api/model"
	"card-bank-api/service"
)

// AdminHandler serves card and user management for administrators.
type AdminHandler struct {
	cards *service.CardService
	users *service.UserService
}

func NewAdminHandler(cards *service.CardService, users *service.UserService) *AdminHandler {
	return &AdminHandler{cards: cards, users: users}
}

// CreateCard godoc
// @Summary      Issue a card
// @Description  Issues a new card with a random number to an existing user (Admin only).
// @Tags         admin-cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        card body model.CreateCardRequest true "Card owner"
// @Success      201  {object}  model.CardResponse
// @Failure      403  {object}  common.ErrorResponse
// @Failure      404  {object}  common.ErrorResponse "User not found"
// @Router       /api/admin/cards [post]
func (h *AdminHandler) CreateCard(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateCardRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	card, err := h.cards.CreateCard(r.Context(), req)
	if err != nil {
		return mapServiceError(err, "Could not create card")
	}

	writeJSON(w, http.StatusCreated, model.NewCardResponse(card))
	return nil
}

// ListCards godoc
// @Summary      List all cards (Admin only)
// @Tags         admin-cards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.CardResponse
// @Router       /api/admin/cards [get]
func (h *AdminHandler) ListCards(w http.ResponseWriter, r *http.Request) *common.AppError {
	cards, err := h.cards.GetAllCards(r.Context())
	if err != nil {
		return mapServiceError(err, "Could not retrieve cards")
	}

	writeJSON(w, http.StatusOK, model.NewCardResponses(cards))
	return nil
}

// BlockCard godoc
// @Summary      Block any card (Admin only)
// @Tags         admin-cards
// @Produce      json
// @Security     BearerAuth
// @Param        cardId path int true "Card ID"
// @Success      200  {object}  model.CardResponse
// @Failure      400  {object}  common.ErrorResponse "Card already blocked"
// @Failure      404  {object}  common.ErrorResponse
// @Router       /api/admin/cards/{cardId}/block [post]
func (h *AdminHandler) BlockCard(w http.ResponseWriter, r *http.Request) *common.AppError {
	cardID, appErr := pathID(r, "cardId")
	if appErr != nil {
		return appErr
	}

	card, err := h.cards.AdminBlockCard(r.Context(), cardID)
	if err != nil {
		return mapServiceError(err, "Could not block card")
	}

	writeJSON(w, http.StatusOK, model.NewCardResponse(card))
	return nil
}

// ActivateCard godoc
// @Summary      Activate any card (Admin only)
// @Tags         admin-cards
// @Produce      json
// @Security     BearerAuth
// @Param        cardId path int true "Card ID"
// @Success      200  {object}  model.CardResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /api/admin/cards/{cardId}/activate [post]
func (h *AdminHandler) ActivateCard(w http.ResponseWriter, r *http.Request) *common.AppError {
	cardID, appErr := pathID(r, "cardId")
	if appErr != nil {
		return appErr
	}

	card, err := h.cards.ActivateCard(r.Context(), cardID)
	if err != nil {
		return mapServiceError(err, "Could not activate card")
	}

	writeJSON(w, http.StatusOK, model.NewCardResponse(card))
	return nil
}

// DeleteCard godoc
// @Summary      Delete a card (Admin only)
// @Tags         admin-cards
// @Security     BearerAuth
// @Param        cardId path int true "Card ID"
// @Success      204
// @Failure      404  {object}  common.ErrorResponse
// @Router       /api/admin/cards/{cardId} [delete]
func (h *AdminHandler) DeleteCard(w http.ResponseWriter, r *http.Request) *common.AppError {
	cardID, appErr := pathID(r, "cardId")
	if appErr != nil {
		return appErr
	}

	if err := h.cards.DeleteCard(r.Context(), cardID); err != nil {
		return mapServiceError(err, "Could not delete card")
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// ListUsers godoc
// @Summary      List all users (Admin only)
// @Tags         admin-users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.User
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) *common.AppError {
	users, err := h.users.GetAllUsers(r.Context())
	if err != nil {
		return mapServiceError(err, "Could not retrieve users")
	}
	if users == nil {
		users = []*model.User{}
	}

	writeJSON(w, http.StatusOK, users)
	return nil
}

// GetUser godoc
// @Summary      Get a user (Admin only)
// @Tags         admin-users
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Success      200  {object}  model.User
// @Failure      404  {object}  common.ErrorResponse
// @Router       /api/admin/users/{userId} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := pathID(r, "userId")
	if appErr != nil {
		return appErr
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		return mapServiceError(err, "Could not retrieve user")
	}

	writeJSON(w, http.StatusOK, user)
	return nil
}

// UpdateUser godoc
// @Summary      Update a user (Admin only)
// @Description  Only the fields present in the body are changed.
// @Tags         admin-users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Param        user body model.UpdateUserRequest true "Fields to update"
// @Success      200  {object}  model.User
// @Failure      404  {object}  common.ErrorResponse
// @Failure      409  {object}  common.ErrorResponse "Email already in use"
// @Router       /api/admin/users/{userId} [put]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := pathID(r, "userId")
	if appErr != nil {
		return appErr
	}
	var req model.UpdateUserRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateUser(r.Context(), userID, req)
	if err != nil {
		return mapServiceError(err, "Could not update user")
	}

	writeJSON(w, http.StatusOK, user)
	return nil
}

// DeleteUser godoc
// @Summary      Delete a user and their cards (Admin only)
// @Tags         admin-users
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Success      204
// @Failure      404  {object}  common.ErrorResponse
// @Router       /api/admin/users/{userId} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := pathID(r, "userId")
	if appErr != nil {
		return appErr
	}

	if err := h.users.DeleteUser(r.Context(), userID); err != nil {
		return mapServiceError(err, "Could not delete user")
	}

	logger.Log.WithField("user_id", userID).Warn("User deleted by administrator")
	w.WriteHeader(http.StatusNoContent)
	return nil
}
