package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	cookieName := handler.sessionCookie.Name

	mux.HandleFunc("POST /api/auth/register", handler.Register)
	mux.HandleFunc("POST /api/auth/login", handler.Login)
	mux.HandleFunc("POST /api/auth/logout", handler.Logout)
	mux.HandleFunc("POST /api/auth/forgot-password", handler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", handler.ResetPassword)
	mux.Handle("GET /api/auth/me", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.Me)))
	mux.Handle("POST /api/auth/change-password", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.ChangePassword)))
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	cookieName := handler.sessionCookie.Name

	mux.HandleFunc("GET /api/matches", handler.ListMatches)
	mux.HandleFunc("GET /api/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /api/matches/{matchID}/squad", handler.GetMatchSquad)
	mux.HandleFunc("GET /api/players", handler.ListPlayers)
	mux.HandleFunc("GET /api/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /api/series", handler.ListSeries)
	mux.HandleFunc("GET /api/contests", handler.ListContests)
	mux.HandleFunc("GET /api/contests/{contestID}", handler.GetContest)
	mux.Handle("GET /api/contests/{contestID}/leaderboard", OptionalAuth(verifier, cookieName, http.HandlerFunc(handler.GetContestLeaderboard)))
	mux.Handle("GET /api/leaderboard", OptionalAuth(verifier, cookieName, http.HandlerFunc(handler.GetGlobalLeaderboard)))
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	cookieName := handler.sessionCookie.Name

	mux.Handle("GET /api/users/me", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.GetMyProfile)))
	mux.Handle("PUT /api/users/me", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.UpdateMyProfile)))
	mux.Handle("GET /api/users/me/stats", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.GetMyStats)))

	mux.Handle("GET /api/teams", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.ListMyTeams)))
	mux.Handle("POST /api/teams", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.CreateTeam)))
	mux.Handle("GET /api/teams/{teamID}", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.GetTeam)))
	mux.Handle("PUT /api/teams/{teamID}", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.RenameTeam)))
	mux.Handle("DELETE /api/teams/{teamID}", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.DeleteTeam)))

	mux.Handle("POST /api/contests/join", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.JoinContest)))

	mux.Handle("GET /api/notifications", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.ListNotifications)))
	mux.Handle("GET /api/notifications/unread-count", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.GetUnreadNotificationCount)))
	mux.Handle("POST /api/notifications/{notificationID}/read", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.MarkNotificationRead)))
	mux.Handle("POST /api/notifications/read-all", RequireAuth(verifier, cookieName, http.HandlerFunc(handler.MarkAllNotificationsRead)))
}

func registerSyncRoutes(mux *http.ServeMux, handler *Handler, cronToken string) {
	mux.Handle("GET /api/contests/sync", RequireCronToken(cronToken, http.HandlerFunc(handler.RunContestSync)))
	mux.Handle("GET /api/cron/sync-contests", RequireCronToken(cronToken, http.HandlerFunc(handler.RunContestSync)))
}
