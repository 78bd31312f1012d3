package handler

import (
	"net/http"

	"card-bank-api/common"
	"card-bank-api/logger"
	"card-bank-api/model"
	"card-bank-api/service"
)

// AuthHandler serves registration, login and token endpoints.
type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a USER account and returns an access/refresh token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user body model.RegisterRequest true "Registration details"
// @Success      201  {object}  model.TokenPair
// @Failure      400  {object}  common.ErrorResponse "Validation error"
// @Failure      409  {object}  common.ErrorResponse "Email already registered"
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	pair, err := h.service.Register(r.Context(), req)
	if err != nil {
		return mapServiceError(err, "Could not register user")
	}

	writeJSON(w, http.StatusCreated, pair)
	return nil
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates with email and password and returns a token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body model.LoginRequest true "Login credentials"
// @Success      200  {object}  model.TokenPair
// @Failure      400  {object}  common.ErrorResponse "Validation error"
// @Failure      401  {object}  common.ErrorResponse "Invalid email or password"
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	pair, err := h.service.Login(r.Context(), req)
	if err != nil {
		return mapServiceError(err, "Could not log in")
	}

	writeJSON(w, http.StatusOK, pair)
	return nil
}

// Refresh godoc
// @Summary      Refresh the access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token body model.RefreshTokenRequest true "Refresh token"
// @Success      200  {object}  model.TokenPair
// @Failure      401  {object}  common.ErrorResponse "Refresh token expired"
// @Failure      404  {object}  common.ErrorResponse "Refresh token not found"
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshTokenRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		return mapServiceError(err, "Could not refresh token")
	}

	writeJSON(w, http.StatusOK, pair)
	return nil
}

// Logout godoc
// @Summary      Log out from all sessions
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  common.ErrorResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	if err := h.service.Logout(r.Context(), userID); err != nil {
		return mapServiceError(err, "Could not log out")
	}

	logger.Log.WithField("user_id", userID).Debug("Logout request completed")
	w.WriteHeader(http.StatusNoContent)
	return nil
}
