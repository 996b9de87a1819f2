package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabclash/internal/models"
)

var testNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func TestNextReviewEaseAdjustment(t *testing.T) {
	tests := []struct {
		name     string
		quality  Quality
		prior    float64
		wantEase float64
	}{
		{name: "perfect raises ease", quality: QualityPerfect, prior: 2.5, wantEase: 2.6},
		{name: "hesitant keeps ease", quality: QualityHesitant, prior: 2.5, wantEase: 2.5},
		{name: "difficult lowers ease", quality: QualityDifficult, prior: 2.5, wantEase: 2.36},
		{name: "familiar lowers ease", quality: QualityFamiliar, prior: 2.5, wantEase: 2.18},
		{name: "incorrect lowers ease", quality: QualityIncorrect, prior: 2.5, wantEase: 1.96},
		{name: "blackout lowers ease most", quality: QualityBlackout, prior: 2.5, wantEase: 1.7},
		{name: "floor at minimum", quality: QualityBlackout, prior: 1.4, wantEase: 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextReview(tt.quality, tt.prior, 0, 0, testNow)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantEase, got.Ease, 1e-9)
		})
	}
}

func TestNextReviewEaseFloor(t *testing.T) {
	priors := []float64{0, 0.5, 1.0, 1.3, 1.31, 1.5, 2.0, 2.5, 3.7}
	for q := QualityBlackout; q <= QualityPerfect; q++ {
		for _, prior := range priors {
			got, err := NextReview(q, prior, 10, 5, testNow)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got.Ease, models.MinEaseFactor, "quality=%d prior=%v", q, prior)
		}
	}
}

func TestNextReviewLapseResetsInterval(t *testing.T) {
	for q := QualityBlackout; q < PassThreshold; q++ {
		for _, priorInterval := range []int{0, 1, 6, 15, 180} {
			got, err := NextReview(q, 2.5, priorInterval, 4, testNow)
			require.NoError(t, err)
			assert.Equal(t, 0, got.Interval, "quality=%d prior interval=%d", q, priorInterval)
			assert.Equal(t, testNow, got.NextDate)
		}
	}
}

func TestNextReviewIntervals(t *testing.T) {
	tests := []struct {
		name          string
		quality       Quality
		ease          float64
		interval      int
		reviewCount   int
		wantInterval  int
		wantNextDelta int
	}{
		{name: "first correct review", quality: QualityHesitant, ease: 2.5, interval: 0, reviewCount: 0, wantInterval: 1, wantNextDelta: 1},
		{name: "second correct review", quality: QualityHesitant, ease: 2.5, interval: 1, reviewCount: 1, wantInterval: 6, wantNextDelta: 6},
		{name: "third review multiplies", quality: QualityHesitant, ease: 2.5, interval: 6, reviewCount: 2, wantInterval: 15, wantNextDelta: 15},
		{name: "perfect uses raised ease", quality: QualityPerfect, ease: 2.5, interval: 15, reviewCount: 3, wantInterval: 39, wantNextDelta: 39},
		{name: "difficult uses lowered ease", quality: QualityDifficult, ease: 2.5, interval: 10, reviewCount: 4, wantInterval: 24, wantNextDelta: 24},
		{name: "after lapse stays due", quality: QualityHesitant, ease: 2.0, interval: 0, reviewCount: 5, wantInterval: 0, wantNextDelta: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextReview(tt.quality, tt.ease, tt.interval, tt.reviewCount, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantInterval, got.Interval)
			assert.Equal(t, testNow.AddDate(0, 0, tt.wantNextDelta), got.NextDate)
		})
	}
}

func TestNextReviewFirstCorrectQuizAnswer(t *testing.T) {
	got, err := NextReview(QualityFromAnswer(true), models.DefaultEaseFactor, 0, 0, testNow)
	require.NoError(t, err)

	assert.InDelta(t, 2.5, got.Ease, 1e-9)
	assert.Equal(t, 1, got.Interval)
	assert.Equal(t, testNow.AddDate(0, 0, 1), got.NextDate)
}

func TestNextReviewRejectsQualityOutOfRange(t *testing.T) {
	for _, q := range []Quality{-1, 6, 42} {
		_, err := NextReview(q, 2.5, 0, 0, testNow)
		assert.ErrorIs(t, err, ErrInvalidQuality, "quality=%d", q)
	}
}

func TestQualityFromAnswer(t *testing.T) {
	assert.Equal(t, Quality(4), QualityFromAnswer(true))
	assert.Equal(t, Quality(1), QualityFromAnswer(false))
}

func TestQualityFromResponse(t *testing.T) {
	tests := []struct {
		name    string
		correct bool
		elapsed time.Duration
		want    Quality
	}{
		{name: "incorrect ignores speed", correct: false, elapsed: time.Second, want: QualityIncorrect},
		{name: "very fast", correct: true, elapsed: 2 * time.Second, want: QualityPerfect},
		{name: "fast", correct: true, elapsed: 4 * time.Second, want: QualityHesitant},
		{name: "medium", correct: true, elapsed: 8 * time.Second, want: QualityDifficult},
		{name: "slow but correct", correct: true, elapsed: 30 * time.Second, want: QualityDifficult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QualityFromResponse(tt.correct, tt.elapsed))
		})
	}
}

func TestIsDue(t *testing.T) {
	assert.True(t, IsDue(testNow.Add(-time.Hour), testNow))
	assert.True(t, IsDue(testNow, testNow))
	assert.False(t, IsDue(testNow.Add(time.Minute), testNow))
}

func TestSortDue(t *testing.T) {
	words := []DueWord{
		{Word: models.Word{ID: 1}, NextReviewDate: testNow, ReviewCount: 0, IsNew: true},
		{Word: models.Word{ID: 2}, NextReviewDate: testNow.AddDate(0, 0, -1), ReviewCount: 5},
		{Word: models.Word{ID: 3}, NextReviewDate: testNow.AddDate(0, 0, -3), ReviewCount: 2},
		{Word: models.Word{ID: 4}, NextReviewDate: testNow.AddDate(0, 0, -1), ReviewCount: 1},
		{Word: models.Word{ID: 5}, NextReviewDate: testNow, ReviewCount: 0, IsNew: true},
		{Word: models.Word{ID: 6}, NextReviewDate: testNow, ReviewCount: 3},
	}

	SortDue(words, testNow)

	ids := make([]int64, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}
	assert.Equal(t, []int64{3, 4, 2, 1, 5, 6}, ids)
	assert.True(t, words[0].IsOverdue(testNow))
	assert.False(t, words[5].IsOverdue(testNow))
}
