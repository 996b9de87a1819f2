package handlers

import (
	"net/http"
)

// Health is the liveness probe
func Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRouter registers the API routes and wraps them with request logging
func NewRouter(mw *Middleware, progress *ProgressHandler, gam *GamificationHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", Health)

	// Progress
	mux.HandleFunc("POST /api/progress/answer", mw.RequireAuth(mw.RateLimit(progress.SubmitAnswer)))
	mux.HandleFunc("GET /api/progress/due", mw.RequireAuth(progress.GetDueWords))

	// Sessions
	mux.HandleFunc("POST /api/progress/session/start", mw.RequireAuth(progress.StartSession))
	mux.HandleFunc("POST /api/progress/session/{id}/end", mw.RequireAuth(progress.EndSession))
	mux.HandleFunc("GET /api/progress/session/active", mw.RequireAuth(progress.GetActiveSession))

	// Gamification
	mux.HandleFunc("GET /api/progress/gamification", mw.RequireAuth(gam.GetSummary))
	mux.HandleFunc("GET /api/progress/achievements", mw.RequireAuth(gam.GetAchievements))
	mux.HandleFunc("GET /api/progress/stats", mw.RequireAuth(gam.GetStats))
	mux.HandleFunc("GET /api/progress/difficult", mw.RequireAuth(gam.GetDifficultWords))

	return Logging(mux)
}
