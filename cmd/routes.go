package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("user"))
	adminAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("admin"))

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/user/refresh", standardMiddleware.ThenFunc(app.userHandler.Refresh))
	mux.Get("/user", adminAuthMiddleware.ThenFunc(app.userHandler.GetUsers))
	mux.Get("/user/:id", authMiddleware.ThenFunc(app.userHandler.GetUserByID))
	mux.Put("/user/:id", authMiddleware.ThenFunc(app.userHandler.UpdateUser))

	// Matches
	mux.Post("/match", adminAuthMiddleware.ThenFunc(app.matchHandler.CreateMatch))
	mux.Get("/match", standardMiddleware.ThenFunc(app.matchHandler.GetMatches))
	mux.Get("/match/:id", standardMiddleware.ThenFunc(app.matchHandler.GetMatchByID))
	mux.Put("/match/:id", adminAuthMiddleware.ThenFunc(app.matchHandler.UpdateMatch))
	mux.Del("/match/:id", adminAuthMiddleware.ThenFunc(app.matchHandler.DeleteMatch))

	// Tips
	mux.Get("/tips", authMiddleware.ThenFunc(app.tipHandler.GetFeed))
	mux.Get("/tips/all", adminAuthMiddleware.ThenFunc(app.tipHandler.GetAllTips))
	mux.Get("/tips/:id", authMiddleware.ThenFunc(app.tipHandler.GetTipByID))
	mux.Post("/tips", adminAuthMiddleware.ThenFunc(app.tipHandler.CreateTip))
	mux.Put("/tips/:id", adminAuthMiddleware.ThenFunc(app.tipHandler.UpdateTip))
	mux.Post("/tips/:id/publish", adminAuthMiddleware.ThenFunc(app.tipHandler.PublishTip))
	mux.Post("/tips/:id/result", adminAuthMiddleware.ThenFunc(app.tipHandler.SetTipResult))
	mux.Post("/tips/:id/image", adminAuthMiddleware.ThenFunc(app.tipHandler.UploadImage))
	mux.Del("/tips/:id", adminAuthMiddleware.ThenFunc(app.tipHandler.DeleteTip))

	// Packages
	mux.Get("/packages", standardMiddleware.ThenFunc(app.packageHandler.GetPackages))
	mux.Get("/packages/:id", standardMiddleware.ThenFunc(app.packageHandler.GetPackageByID))
	mux.Post("/packages", adminAuthMiddleware.ThenFunc(app.packageHandler.CreatePackage))
	mux.Put("/packages/:id", adminAuthMiddleware.ThenFunc(app.packageHandler.UpdatePackage))
	mux.Del("/packages/:id", adminAuthMiddleware.ThenFunc(app.packageHandler.DeletePackage))

	// Payments. The callback is unauthenticated: the provider posts there.
	mux.Post("/payments/checkout", authMiddleware.ThenFunc(app.paymentHandler.Checkout))
	mux.Post("/payments/callback", standardMiddleware.ThenFunc(app.paymentHandler.Callback))
	mux.Get("/payments/history", authMiddleware.ThenFunc(app.paymentHandler.GetHistory))

	// Subscriptions
	mux.Get("/subscription/me", authMiddleware.ThenFunc(app.subscriptionHandler.GetMySubscription))

	// Tickets
	mux.Post("/tickets", authMiddleware.ThenFunc(app.ticketHandler.CreateTicket))
	mux.Get("/tickets", authMiddleware.ThenFunc(app.ticketHandler.GetMyTickets))
	mux.Get("/tickets/all", adminAuthMiddleware.ThenFunc(app.ticketHandler.GetAllTickets))
	mux.Get("/tickets/:id", authMiddleware.ThenFunc(app.ticketHandler.GetTicketByID))
	mux.Post("/tickets/:id/reply", authMiddleware.ThenFunc(app.ticketHandler.Reply))
	mux.Post("/tickets/:id/close", authMiddleware.ThenFunc(app.ticketHandler.CloseTicket))
	mux.Post("/tickets/:id/attachment", authMiddleware.ThenFunc(app.ticketHandler.UploadAttachment))

	// Push tokens
	mux.Post("/notify/token", authMiddleware.ThenFunc(app.fcmHandler.CreateToken))
	mux.Del("/notify/token/:token", authMiddleware.ThenFunc(app.fcmHandler.DeleteToken))

	// Live tip feed
	mux.Get("/ws/tips", http.HandlerFunc(app.TipFeedWebSocketHandler))

	return mux
}
