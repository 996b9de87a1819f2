package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vocabclash/internal/database"
	"vocabclash/internal/gamification"
	"vocabclash/internal/models"
	"vocabclash/internal/repository"
)

var day1 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db           *database.DB
	clock        *testClock
	progress     *ProgressService
	sessions     *SessionService
	gamification *GamificationService
	userID       int64
	words        []models.Word
}

func newTestEnv(t *testing.T, wordCount int) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(ctx))

	clock := &testClock{now: day1}
	catalog := gamification.DefaultCatalog()
	locks := NewUserLocks()

	env := &testEnv{
		db:           db,
		clock:        clock,
		progress:     NewProgressService(db, catalog, locks),
		sessions:     NewSessionService(db, catalog, locks),
		gamification: NewGamificationService(db, catalog),
	}
	env.progress.now = clock.Now
	env.sessions.now = clock.Now
	env.gamification.now = clock.Now

	env.userID = env.createUser(t, "learner@example.com")
	words := repository.NewWordRepository(db)
	for i := 0; i < wordCount; i++ {
		w := models.Word{Word: fmt.Sprintf("word-%02d", i), Definition: "meaning", CreatedAt: day1}
		require.NoError(t, words.CreateWord(ctx, &w))
		env.words = append(env.words, w)
	}
	return env
}

func (e *testEnv) createUser(t *testing.T, email string) int64 {
	t.Helper()
	u, err := repository.NewUserRepository(e.db).CreateUser(context.Background(), email, "Learner")
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) answer(t *testing.T, userID int64, word models.Word, correct bool, mode models.StudyMode) *AnswerResult {
	t.Helper()
	res, err := e.progress.SubmitAnswer(context.Background(), userID, AnswerInput{
		WordID:  word.ID,
		Correct: &correct,
		Mode:    mode,
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) progression(t *testing.T, userID int64) *models.ProgressionState {
	t.Helper()
	state, err := repository.NewProgressionRepository(e.db).GetProgression(context.Background(), userID)
	require.NoError(t, err)
	return state
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }
