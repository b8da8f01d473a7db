package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nihonwa/internal/spaced_repetition"
	"github.com/example/nihonwa/pkg/models"
)

var errItemMissing = errors.New("item missing")

// memItems is an in-memory ItemStore
type memItems struct {
	mu    sync.Mutex
	items map[string]models.LearnableItem
}

func newMemItems(items ...models.LearnableItem) *memItems {
	m := &memItems{items: map[string]models.LearnableItem{}}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func (m *memItems) Get(_ context.Context, id string) (*models.LearnableItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, errItemMissing
	}
	return &item, nil
}

func (m *memItems) GetByLevel(_ context.Context, kind models.ItemKind, level models.JLPTLevel) ([]models.LearnableItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LearnableItem
	for _, item := range m.items {
		if item.Kind == kind && item.Level == level {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memItems) Put(_ context.Context, item *models.LearnableItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = *item
	return nil
}

func (m *memItems) get(id string) models.LearnableItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id]
}

func TestReviewItem_UpdatesScheduleAndCounters(t *testing.T) {
	ctx := context.Background()
	items := newMemItems(models.LearnableItem{ID: "w1", Kind: models.KindVocabulary, Level: models.N5, Term: "水"})
	store, _, _ := activeStore(t, WithItemStore(items))

	outcome, err := store.ReviewItem(ctx, "w1", spaced_repetition.QualityPerfect)
	require.NoError(t, err)
	assert.True(t, outcome.Item.Mastered)
	assert.Equal(t, 1, outcome.Review.State.Interval)
	assert.Equal(t, fixedNow.AddDate(0, 0, 1), *outcome.Item.NextReview)
	assert.Equal(t, 1, outcome.Level.VocabularyMastered)
	assert.InDelta(t, 0.125, outcome.Level.Skills.Vocabulary, 1e-9)

	saved := items.get("w1")
	require.NotNil(t, saved.SRS)
	assert.Equal(t, 1, saved.SRS.Repetitions)
	assert.Equal(t, fixedNow, *saved.LastReviewed)

	// A second correct answer keeps the counter
	_, err = store.ReviewItem(ctx, "w1", spaced_repetition.QualityCorrectHesitation)
	require.NoError(t, err)
	assert.Equal(t, 1, store.LevelProgress(models.N5).VocabularyMastered)
	assert.Equal(t, 6, items.get("w1").SRS.Interval)

	outcome, err = store.ReviewItem(ctx, "w1", spaced_repetition.QualityIncorrect)
	require.NoError(t, err)
	assert.False(t, outcome.Item.Mastered)
	assert.Equal(t, 0, outcome.Review.State.Repetitions)
	assert.Equal(t, 1, outcome.Review.State.Interval)
	assert.Equal(t, 0, store.LevelProgress(models.N5).VocabularyMastered)
	assert.Equal(t, 0.0, store.LevelProgress(models.N5).Skills.Vocabulary)
}

func TestReviewItem_Kanji(t *testing.T) {
	ctx := context.Background()
	items := newMemItems(models.LearnableItem{ID: "k1", Kind: models.KindKanji, Level: models.N4, Term: "駅"})
	store, _, _ := activeStore(t, WithItemStore(items))

	_, err := store.ReviewItem(ctx, "k1", spaced_repetition.QualityFromResponse(spaced_repetition.ResponseCorrect))
	require.NoError(t, err)

	p := store.LevelProgress(models.N4)
	assert.Equal(t, 1, p.KanjiMastered)
	assert.InDelta(t, 100.0/300.0, p.Skills.Kanji, 1e-9)
}

func TestReviewItem_Errors(t *testing.T) {
	ctx := context.Background()

	store, _, _ := activeStore(t)
	_, err := store.ReviewItem(ctx, "w1", spaced_repetition.QualityPerfect)
	assert.True(t, errors.Is(err, ErrNoItemStore))

	items := newMemItems()
	store, _, _ = activeStore(t, WithItemStore(items))
	_, err = store.ReviewItem(ctx, "missing", spaced_repetition.QualityPerfect)
	assert.True(t, errors.Is(err, errItemMissing))

	noProfile := newTestStore(t, newMemBlobs(), WithItemStore(newMemItems(models.LearnableItem{ID: "w1"})))
	_, err = noProfile.ReviewItem(ctx, "w1", spaced_repetition.QualityPerfect)
	assert.True(t, errors.Is(err, ErrNoActiveProfile))
}

func TestReviewItem_PersistFailureRestoresItem(t *testing.T) {
	ctx := context.Background()
	original := models.LearnableItem{ID: "w1", Kind: models.KindVocabulary, Level: models.N5, Term: "水"}
	items := newMemItems(original)
	store, blobs, _ := activeStore(t, WithItemStore(items))

	blobs.fail = errors.New("unavailable")
	_, err := store.ReviewItem(ctx, "w1", spaced_repetition.QualityPerfect)

	var persistErr *PersistError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, original, items.get("w1"))
	assert.Equal(t, 0, store.LevelProgress(models.N5).VocabularyMastered)
}

func TestDueItems(t *testing.T) {
	ctx := context.Background()
	past := fixedNow.Add(-24 * time.Hour)
	future := fixedNow.Add(24 * time.Hour)
	items := newMemItems(
		models.LearnableItem{ID: "new", Kind: models.KindVocabulary, Level: models.N5},
		models.LearnableItem{ID: "due", Kind: models.KindVocabulary, Level: models.N5, NextReview: &past,
			SRS: &models.SRSState{EaseFactor: 2.5, Interval: 1, Repetitions: 1}},
		models.LearnableItem{ID: "later", Kind: models.KindVocabulary, Level: models.N5, NextReview: &future},
		models.LearnableItem{ID: "other", Kind: models.KindKanji, Level: models.N5},
	)
	store := newTestStore(t, newMemBlobs(), WithItemStore(items))

	due, err := store.DueItems(ctx, models.KindVocabulary, models.N5, 0)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "new", due[0].ID)
	assert.Equal(t, "due", due[1].ID)

	due, err = store.DueItems(ctx, models.KindVocabulary, models.N5, 1)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestReviewItem_MasteryIsPerProfile(t *testing.T) {
	ctx := context.Background()
	items := newMemItems(models.LearnableItem{ID: "w1", Kind: models.KindVocabulary, Level: models.N5, Term: "水"})
	store, _, aiko := activeStore(t, WithItemStore(items))
	ken, err := store.CreateProfile(ctx, models.UserProfile{Name: "Ken"})
	require.NoError(t, err)

	_, err = store.ReviewItem(ctx, "w1", spaced_repetition.QualityPerfect)
	require.NoError(t, err)
	assert.Equal(t, 1, store.LevelProgress(models.N5).VocabularyMastered)

	// The item is already mastered on the shared schedule, but not by Ken
	require.NoError(t, store.SetActiveProfile(ctx, ken.ID))
	assert.Equal(t, 0, store.LevelProgress(models.N5).VocabularyMastered)
	outcome, err := store.ReviewItem(ctx, "w1", spaced_repetition.QualityPerfect)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Level.VocabularyMastered)
	assert.Equal(t, 1, store.LevelProgress(models.N5).VocabularyMastered)

	// A second answer from Ken does not count twice
	_, err = store.ReviewItem(ctx, "w1", spaced_repetition.QualityCorrectHesitation)
	require.NoError(t, err)
	assert.Equal(t, 1, store.LevelProgress(models.N5).VocabularyMastered)

	require.NoError(t, store.SetActiveProfile(ctx, aiko.ID))
	assert.Equal(t, 1, store.LevelProgress(models.N5).VocabularyMastered)
}

func TestReviewItem_FailOnUnmasteredItemKeepsCounter(t *testing.T) {
	ctx := context.Background()
	items := newMemItems(models.LearnableItem{ID: "w1", Kind: models.KindVocabulary, Level: models.N5, Term: "水"})
	store, _, _ := activeStore(t, WithItemStore(items))
	ken, err := store.CreateProfile(ctx, models.UserProfile{Name: "Ken"})
	require.NoError(t, err)

	_, err = store.ReviewItem(ctx, "w1", spaced_repetition.QualityPerfect)
	require.NoError(t, err)

	// Ken never mastered w1, so failing it must not go below his own count
	require.NoError(t, store.SetActiveProfile(ctx, ken.ID))
	require.NoError(t, store.UpdateLevelProgress(ctx, models.N5, LevelProgressUpdate{VocabularyMastered: intPtr(4)}))
	_, err = store.ReviewItem(ctx, "w1", spaced_repetition.QualityIncorrect)
	require.NoError(t, err)
	assert.Equal(t, 4, store.LevelProgress(models.N5).VocabularyMastered)
}

func TestNew_DoesNotModifySharedScheduler(t *testing.T) {
	ctx := context.Background()
	shared := spaced_repetition.NewSM2()
	shared.Now = nil
	items := newMemItems(models.LearnableItem{ID: "w1", Kind: models.KindVocabulary, Level: models.N5, Term: "水"})
	store, _, _ := activeStore(t, WithItemStore(items), WithScheduler(shared))

	assert.Nil(t, shared.Now)
	outcome, err := store.ReviewItem(ctx, "w1", spaced_repetition.QualityPerfect)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.AddDate(0, 0, 1), *outcome.Item.NextReview)
}
