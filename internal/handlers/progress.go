package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"vocabclash/internal/models"
	"vocabclash/internal/service"
	"vocabclash/internal/srs"
)

// ProgressService is the answer and due-word surface the handlers need
type ProgressService interface {
	SubmitAnswer(ctx context.Context, userID int64, in service.AnswerInput) (*service.AnswerResult, error)
	GetDueWords(ctx context.Context, userID int64, limit int) ([]srs.DueWord, error)
}

// SessionService is the study session surface the handlers need
type SessionService interface {
	StartSession(ctx context.Context, userID int64, mode models.StudyMode) (*models.StudySession, error)
	EndSession(ctx context.Context, userID, sessionID int64, totals models.SessionTotals) (*service.EndResult, error)
	GetActiveSession(ctx context.Context, userID int64) (*service.ActiveSessionResult, error)
}

// ProgressHandler serves answer submission, due words and sessions
type ProgressHandler struct {
	progress      ProgressService
	sessions      SessionService
	dueWordsLimit int
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progress ProgressService, sessions SessionService, dueWordsLimit int) *ProgressHandler {
	return &ProgressHandler{
		progress:      progress,
		sessions:      sessions,
		dueWordsLimit: dueWordsLimit,
	}
}

// SubmitAnswer records one answer and returns the updated progression
func (h *ProgressHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	var in service.AnswerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	result, err := h.progress.SubmitAnswer(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, "Failed to submit answer", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetDueWords lists the words due for review
func (h *ProgressHandler) GetDueWords(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	limit, ok := parseLimit(r, h.dueWordsLimit)
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidLimit, "", nil)
		return
	}

	words, err := h.progress.GetDueWords(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, "Failed to load due words", err)
		return
	}
	if words == nil {
		words = []srs.DueWord{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"words": words})
}

type startSessionRequest struct {
	Mode models.StudyMode `json:"mode"`
}

// StartSession opens a study session or returns the one already active
func (h *ProgressHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	session, err := h.sessions.StartSession(r.Context(), userID, req.Mode)
	if err != nil {
		writeServiceError(w, "Failed to start session", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

// EndSession closes a session with the client's final counters
func (h *ProgressHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	sessionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidSessionID, "", nil)
		return
	}

	var totals models.SessionTotals
	if err := json.NewDecoder(r.Body).Decode(&totals); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	result, err := h.sessions.EndSession(r.Context(), userID, sessionID, totals)
	if err != nil {
		writeServiceError(w, "Failed to end session", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetActiveSession returns the open session, or null when there is none
func (h *ProgressHandler) GetActiveSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	result, err := h.sessions.GetActiveSession(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "Failed to load active session", err)
		return
	}
	if result.AuthTimedOut {
		respondWithError(w, http.StatusUnauthorized, ErrSessionTimedOut, "", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// parseLimit reads the limit query parameter. Missing means def; values
// above maxListLimit are clamped.
func parseLimit(r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, false
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, true
}
