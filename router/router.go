package router

import (
	"net/http"

	"card-bank-api/common"
	_ "card-bank-api/docs"
	"card-bank-api/handler"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(
	authHandler *handler.AuthHandler,
	cardHandler *handler.CardHandler,
	transactionHandler *handler.TransactionHandler,
	adminHandler *handler.AdminHandler,
	healthHandler *handler.HealthHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Public auth routes
	mux.Handle("POST /api/auth/register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /api/auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /api/auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))

	// Authenticated routes
	authed := func(h func(http.ResponseWriter, *http.Request) *common.AppError) http.Handler {
		return handler.AuthMiddleware(handler.ErrorHandlingMiddleware(h))
	}
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	mux.Handle("GET /api/cards", authed(cardHandler.ListCards))
	mux.Handle("GET /api/cards/search", authed(cardHandler.SearchCards))
	mux.Handle("GET /api/cards/{cardId}", authed(cardHandler.GetCard))
	mux.Handle("GET /api/cards/{cardId}/balance", authed(cardHandler.GetBalance))
	mux.Handle("POST /api/cards/{cardId}/block", authed(cardHandler.BlockCard))
	mux.Handle("POST /api/cards/transfer", authed(transactionHandler.Transfer))
	mux.Handle("GET /api/cards/{cardId}/transactions", authed(transactionHandler.ListCardTransactions))
	mux.Handle("GET /api/cards/transactions", authed(transactionHandler.ListTransactions))

	// Admin routes
	admin := func(h func(http.ResponseWriter, *http.Request) *common.AppError) http.Handler {
		return handler.AuthMiddleware(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(h)))
	}
	mux.Handle("POST /api/admin/cards", admin(adminHandler.CreateCard))
	mux.Handle("GET /api/admin/cards", admin(adminHandler.ListCards))
	mux.Handle("POST /api/admin/cards/{cardId}/block", admin(adminHandler.BlockCard))
	mux.Handle("POST /api/admin/cards/{cardId}/activate", admin(adminHandler.ActivateCard))
	mux.Handle("DELETE /api/admin/cards/{cardId}", admin(adminHandler.DeleteCard))
	mux.Handle("GET /api/admin/users", admin(adminHandler.ListUsers))
	mux.Handle("GET /api/admin/users/{userId}", admin(adminHandler.GetUser))
	mux.Handle("PUT /api/admin/users/{userId}", admin(adminHandler.UpdateUser))
	mux.Handle("DELETE /api/admin/users/{userId}", admin(adminHandler.DeleteUser))

	return mux
}
