package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nihonwa/pkg/models"
)

var fixedNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestSM2() *SM2 {
	sm := NewSM2()
	sm.Now = func() time.Time { return fixedNow }
	return sm
}

func TestSM2_Next_FirstReviewUsesDefaults(t *testing.T) {
	sm := newTestSM2()

	review := sm.Next(QualityCorrectHesitation, nil)

	assert.Equal(t, 1, review.State.Interval)
	assert.Equal(t, 1, review.State.Repetitions)
	assert.InDelta(t, 2.5, review.State.EaseFactor, 1e-9)
	assert.Equal(t, fixedNow.AddDate(0, 0, 1), review.NextReview)
}

func TestSM2_Next_IntervalSequence(t *testing.T) {
	sm := newTestSM2()

	first := sm.Next(QualityPerfect, nil)
	require.Equal(t, 1, first.State.Interval)

	second := sm.Next(QualityPerfect, &first.State)
	require.Equal(t, 6, second.State.Interval)
	require.Equal(t, 2, second.State.Repetitions)

	third := sm.Next(QualityPerfect, &second.State)
	assert.Equal(t, 16, third.State.Interval) // round(6 * 2.7)
	assert.Equal(t, 3, third.State.Repetitions)
	assert.InDelta(t, 2.8, third.State.EaseFactor, 1e-9)
	assert.Equal(t, fixedNow.AddDate(0, 0, 16), third.NextReview)
}

func TestSM2_Next_IncorrectResetsRepetitions(t *testing.T) {
	sm := newTestSM2()
	current := models.SRSState{EaseFactor: 2.5, Interval: 15, Repetitions: 3}

	review := sm.Next(QualityIncorrect, &current)

	assert.Equal(t, 0, review.State.Repetitions)
	assert.Equal(t, 1, review.State.Interval)
	// 2.5 + (0.1 - 4 * (0.08 + 4 * 0.02))
	assert.InDelta(t, 1.96, review.State.EaseFactor, 1e-9)
	// The input is not modified
	assert.Equal(t, 3, current.Repetitions)
}

func TestSM2_Next_EaseFactorNeverBelowMinimum(t *testing.T) {
	sm := newTestSM2()
	states := []*models.SRSState{
		nil,
		{EaseFactor: 1.3, Interval: 1, Repetitions: 0},
		{EaseFactor: 1.31, Interval: 40, Repetitions: 7},
		{EaseFactor: 2.5, Interval: 6, Repetitions: 2},
		{EaseFactor: 0.5, Interval: -4, Repetitions: -1},
	}

	for _, state := range states {
		for q := -2; q <= 8; q++ {
			review := sm.Next(QualityResponse(q), state)
			assert.GreaterOrEqual(t, review.State.EaseFactor, 1.3)
			assert.GreaterOrEqual(t, review.State.Interval, 1)
			assert.GreaterOrEqual(t, review.State.Repetitions, 0)
		}
	}
}

func TestSM2_Next_OutOfRangeQualityIsClamped(t *testing.T) {
	sm := newTestSM2()

	high := sm.Next(QualityResponse(9), nil)
	perfect := sm.Next(QualityPerfect, nil)
	assert.Equal(t, perfect, high)

	low := sm.Next(QualityResponse(-3), nil)
	blackout := sm.Next(QualityBlackout, nil)
	assert.Equal(t, blackout, low)
}

func TestSM2_Next_DifficultAnswerLowersEase(t *testing.T) {
	sm := newTestSM2()

	review := sm.Next(QualityCorrectDifficult, nil)

	assert.Equal(t, 1, review.State.Interval)
	assert.InDelta(t, 2.36, review.State.EaseFactor, 1e-9)
}

func TestQualityFromResponse(t *testing.T) {
	assert.Equal(t, QualityResponse(1), QualityFromResponse(ResponseIncorrect))
	assert.Equal(t, QualityResponse(4), QualityFromResponse(ResponseCorrect))
	assert.Equal(t, QualityResponse(5), QualityFromResponse(ResponsePerfect))
	assert.Equal(t, QualityIncorrect, QualityFromResponse(Response("maybe")))
	assert.Equal(t, QualityIncorrect, QualityFromResponse(""))

	assert.True(t, ResponsePerfect.Valid())
	assert.False(t, Response("maybe").Valid())
}

func TestSM2_Apply(t *testing.T) {
	sm := newTestSM2()
	item := models.LearnableItem{ID: "w1", Kind: models.KindVocabulary, Level: models.N5, Term: "水"}

	sm.Apply(&item, QualityFromResponse(ResponseCorrect))

	require.NotNil(t, item.SRS)
	require.NotNil(t, item.NextReview)
	require.NotNil(t, item.LastReviewed)
	assert.True(t, item.Mastered)
	assert.Equal(t, 1, item.SRS.Repetitions)
	assert.Equal(t, fixedNow, *item.LastReviewed)
	assert.Equal(t, fixedNow.AddDate(0, 0, 1), *item.NextReview)

	sm.Apply(&item, QualityFromResponse(ResponseIncorrect))
	assert.False(t, item.Mastered)
	assert.Equal(t, 0, item.SRS.Repetitions)
}
