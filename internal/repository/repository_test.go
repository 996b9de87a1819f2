package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabclash/internal/database"
	"vocabclash/internal/models"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(context.Background()))
	return db
}

func seedUser(t *testing.T, db *database.DB, email string) *models.User {
	t.Helper()
	u, err := NewUserRepository(db).CreateUser(context.Background(), email, "Learner")
	require.NoError(t, err)
	return u
}

func seedWords(t *testing.T, db *database.DB, n int) []models.Word {
	t.Helper()
	repo := NewWordRepository(db)
	words := make([]models.Word, n)
	for i := range words {
		words[i] = models.Word{Word: fmt.Sprintf("word-%02d", i), Definition: "meaning", CreatedAt: testNow}
		require.NoError(t, repo.CreateWord(context.Background(), &words[i]))
	}
	return words
}

func TestReviewStateRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "ada@example.com")
	words := seedWords(t, db, 1)
	repo := NewReviewRepository(db)

	_, err := repo.GetReviewState(ctx, user.ID, words[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	state := models.NewReviewState(user.ID, words[0].ID, testNow)
	state.ReviewCount = 1
	state.CorrectCount = 1
	state.IsKnown = true
	state.ReviewInterval = 1
	state.NextReviewDate = testNow.AddDate(0, 0, 1)
	reviewed := testNow
	state.LastReviewed = &reviewed
	require.NoError(t, repo.SaveReviewState(ctx, state))
	require.NotZero(t, state.ID)

	state.ReviewCount = 2
	state.IncorrectCount = 1
	state.IsKnown = false
	state.EaseFactor = 1.96
	require.NoError(t, repo.SaveReviewState(ctx, state))

	got, err := repo.GetReviewState(ctx, user.ID, words[0].ID)
	require.NoError(t, err)
	assert.Equal(t, state.ID, got.ID)
	assert.Equal(t, 2, got.ReviewCount)
	assert.Equal(t, 1, got.IncorrectCount)
	assert.False(t, got.IsKnown)
	assert.InDelta(t, 1.96, got.EaseFactor, 1e-9)
	assert.True(t, got.NextReviewDate.Equal(testNow.AddDate(0, 0, 1)))
	require.NotNil(t, got.LastReviewed)
	assert.True(t, got.LastReviewed.Equal(testNow))
}

func TestGetDueWords(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "ada@example.com")
	other := seedUser(t, db, "bob@example.com")
	words := seedWords(t, db, 5)
	reviews := NewReviewRepository(db)

	save := func(userID int64, w models.Word, next time.Time, count int) {
		s := models.NewReviewState(userID, w.ID, testNow)
		s.NextReviewDate = next
		s.ReviewCount = count
		require.NoError(t, reviews.SaveReviewState(ctx, s))
	}
	save(user.ID, words[0], testNow.AddDate(0, 0, 3), 2)  // not due yet
	save(user.ID, words[1], testNow.AddDate(0, 0, -2), 4) // overdue
	save(user.ID, words[2], testNow.AddDate(0, 0, -5), 1) // most overdue
	save(other.ID, words[3], testNow.AddDate(0, 0, 9), 1) // another user's state

	due, err := NewWordRepository(db).GetDueWords(ctx, user.ID, testNow, 20)
	require.NoError(t, err)

	ids := make([]int64, len(due))
	for i, d := range due {
		ids[i] = d.ID
	}
	assert.Equal(t, []int64{words[2].ID, words[1].ID, words[3].ID, words[4].ID}, ids)

	assert.False(t, due[0].IsNew)
	assert.Equal(t, 1, due[0].ReviewCount)
	assert.True(t, due[2].IsNew)
	assert.Equal(t, 0, due[2].ReviewCount)
	assert.InDelta(t, models.DefaultEaseFactor, due[2].EaseFactor, 1e-9)
	assert.True(t, due[2].NextReviewDate.Equal(testNow))

	limited, err := NewWordRepository(db).GetDueWords(ctx, user.ID, testNow, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, words[2].ID, limited[0].ID)
}

func TestGetDifficultWords(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "ada@example.com")
	words := seedWords(t, db, 4)
	reviews := NewReviewRepository(db)

	counts := []struct{ correct, incorrect int }{{5, 0}, {1, 3}, {2, 2}, {0, 1}}
	for i, c := range counts {
		s := models.NewReviewState(user.ID, words[i].ID, testNow)
		s.CorrectCount = c.correct
		s.IncorrectCount = c.incorrect
		s.ReviewCount = c.correct + c.incorrect
		require.NoError(t, reviews.SaveReviewState(ctx, s))
	}

	difficult, err := NewWordRepository(db).GetDifficultWords(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, difficult, 3)
	assert.Equal(t, words[3].ID, difficult[0].ID)
	assert.Equal(t, words[1].ID, difficult[1].ID)
	assert.Equal(t, words[2].ID, difficult[2].ID)
	assert.InDelta(t, 0.75, difficult[1].ErrorRate(), 1e-9)
}

func TestWordStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "ada@example.com")
	words := seedWords(t, db, 3)
	reviews := NewReviewRepository(db)

	empty, err := reviews.GetWordStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WordStats{}, empty)

	for i, w := range words {
		s := models.NewReviewState(user.ID, w.ID, testNow)
		s.IsKnown = i < 2
		s.CorrectCount = 2
		s.IncorrectCount = i
		s.ReviewCount = 2 + i
		require.NoError(t, reviews.SaveReviewState(ctx, s))
	}

	stats, err := reviews.GetWordStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WordStats{
		WordsLearned:   2,
		WordsStarted:   3,
		TotalReviews:   9,
		TotalCorrect:   6,
		TotalIncorrect: 3,
	}, stats)
}

func TestProgressionRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "ada@example.com")
	repo := NewProgressionRepository(db)

	_, err := repo.GetProgression(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	state := models.NewProgressionState(user.ID, testNow)
	state.TotalXP = 15
	state.DailyStreak = 1
	state.LastVisitDate = "2024-06-01"
	require.NoError(t, repo.SaveProgression(ctx, state))
	assert.False(t, state.IsNew())

	state.TotalXP = 1600
	state.PerfectSessionCount = 2
	require.NoError(t, repo.SaveProgression(ctx, state))

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.AddAchievement(ctx, models.UnlockedAchievement{
			UserID: user.ID, AchievementID: "first_correct", XPReward: 50, UnlockedAt: testNow,
		}))
	}
	require.NoError(t, repo.AddAchievement(ctx, models.UnlockedAchievement{
		UserID: user.ID, AchievementID: "xp_1k", XPReward: 100, UnlockedAt: testNow.Add(time.Minute),
	}))

	got, err := repo.GetProgression(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsNew())
	assert.Equal(t, 1600, got.TotalXP)
	assert.Equal(t, 1, got.DailyStreak)
	assert.Equal(t, "2024-06-01", got.LastVisitDate)
	assert.Equal(t, 2, got.PerfectSessionCount)
	assert.Equal(t, map[string]bool{"first_correct": true, "xp_1k": true}, got.UnlockedAchievements)

	achievements, err := repo.ListAchievements(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, achievements, 2)
	assert.Equal(t, "first_correct", achievements[0].AchievementID)
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "ada@example.com")
	repo := NewSessionRepository(db)

	_, err := repo.GetActiveSession(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	s := &models.StudySession{UserID: user.ID, Mode: models.ModeQuiz, StartedAt: testNow, UpdatedAt: testNow}
	require.NoError(t, repo.CreateSession(ctx, s))
	require.NotZero(t, s.ID)

	active, err := repo.GetActiveSession(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, active.ID)
	assert.Equal(t, models.ModeQuiz, active.Mode)
	assert.Nil(t, active.EndedAt)

	idle, err := repo.ListIdleSessions(ctx, testNow.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, idle, 1)

	s.CardsReviewed = 3
	s.CorrectAnswers = 2
	s.XPEarned = 30
	s.Perfect = true
	s.UpdatedAt = testNow.Add(5 * time.Minute)
	ended := testNow.Add(6 * time.Minute)
	s.EndedAt = &ended
	require.NoError(t, repo.UpdateSession(ctx, s))

	_, err = repo.GetActiveSession(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.GetSessionByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CardsReviewed)
	assert.True(t, got.Perfect)
	require.NotNil(t, got.EndedAt)
	assert.True(t, got.EndedAt.Equal(ended))

	history, err := repo.ListEndedSessions(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	idle, err = repo.ListIdleSessions(ctx, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, idle)
}

func TestListStreakReminders(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	progression := NewProgressionRepository(db)

	for i, visit := range []string{"2024-05-31", "2024-05-31", "2024-05-30"} {
		user := seedUser(t, db, fmt.Sprintf("user%d@example.com", i))
		state := models.NewProgressionState(user.ID, testNow)
		state.DailyStreak = i + 1
		state.LastVisitDate = visit
		require.NoError(t, progression.SaveProgression(ctx, state))
	}

	reminders, err := NewUserRepository(db).ListStreakReminders(ctx, "2024-05-31")
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.Equal(t, "user0@example.com", reminders[0].Email)
	assert.Equal(t, 2, reminders[1].DailyStreak)
}
