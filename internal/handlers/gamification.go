package handlers

import (
	"context"
	"net/http"

	"vocabclash/internal/gamification"
	"vocabclash/internal/models"
	"vocabclash/internal/service"
)

// GamificationService is the read-only progression surface the handlers need
type GamificationService interface {
	GetSummary(ctx context.Context, userID int64) (*service.Summary, error)
	GetAchievements(ctx context.Context, userID int64) ([]gamification.AchievementStatus, error)
	GetStats(ctx context.Context, userID int64) (*models.UserStats, error)
	GetDifficultWords(ctx context.Context, userID int64, limit int) ([]models.DifficultWord, error)
}

// GamificationHandler serves level, streak, achievement and statistics views
type GamificationHandler struct {
	svc GamificationService
}

// NewGamificationHandler creates a new gamification handler
func NewGamificationHandler(svc GamificationService) *GamificationHandler {
	return &GamificationHandler{svc: svc}
}

// GetSummary returns level progress, streak and unlocked achievements
func (h *GamificationHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	summary, err := h.svc.GetSummary(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "Failed to load gamification summary", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// GetAchievements returns every catalog entry with the user's progress
func (h *GamificationHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	achievements, err := h.svc.GetAchievements(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "Failed to load achievements", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"achievements": achievements})
}

func (h *GamificationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	stats, err := h.svc.GetStats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "Failed to load stats", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// GetDifficultWords lists the words the user misses most often
func (h *GamificationHandler) GetDifficultWords(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	limit, ok := parseLimit(r, defaultDifficultLimit)
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrInvalidLimit, "", nil)
		return
	}

	words, err := h.svc.GetDifficultWords(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, "Failed to load difficult words", err)
		return
	}
	if words == nil {
		words = []models.DifficultWord{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"words": words})
}
