package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nihonwa/internal/database"
	"github.com/example/nihonwa/internal/logger"
	"github.com/example/nihonwa/internal/progress"
	"github.com/example/nihonwa/internal/quiz"
	"github.com/example/nihonwa/pkg/models"
)

const testChat int64 = 42

var fixedNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func setupHandler(t *testing.T, words int) (*Handler, *database.ItemRepository) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, DSN: filepath.Join(t.TempDir(), "bot.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	items := database.NewItemRepository(db)
	for i := 0; i < words; i++ {
		require.NoError(t, items.Put(ctx, &models.LearnableItem{
			ID:      fmt.Sprintf("w-%02d", i),
			Kind:    models.KindVocabulary,
			Level:   models.N5,
			Term:    fmt.Sprintf("語%02d", i),
			Reading: fmt.Sprintf("ご%02d", i),
			Meaning: fmt.Sprintf("word %d", i),
		}))
	}

	store, err := progress.New(ctx, database.NewStateRepository(db), logger.NewNop(),
		progress.WithItemStore(items),
		progress.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	h := NewHandler(store, &BotConfig{ReviewBatchSize: 3, LessonSize: 4}, nil)
	h.gen = quiz.NewSeededGenerator(7)
	return h, items
}

func TestHandler_NoActiveProfile(t *testing.T) {
	h, _ := setupHandler(t, 2)
	ctx := context.Background()

	for _, cmd := range []string{"review", "lessons", "progress", "score"} {
		reply := h.HandleCommand(ctx, testChat, cmd, "")
		assert.Contains(t, reply.Text, "No active profile", cmd)
	}
}

func TestHandler_Profiles(t *testing.T) {
	h, _ := setupHandler(t, 0)
	ctx := context.Background()

	reply := h.HandleCommand(ctx, testChat, "newprofile", "")
	assert.Contains(t, reply.Text, "Usage")

	reply = h.HandleCommand(ctx, testChat, "newprofile", "Aiko n4")
	assert.Contains(t, reply.Text, "Created profile Aiko (N4)")
	assert.Contains(t, reply.Text, "now active")

	reply = h.HandleCommand(ctx, testChat, "newprofile", "Ken")
	assert.NotContains(t, reply.Text, "now active")

	reply = h.HandleCommand(ctx, testChat, "newprofile", "aiko")
	assert.Contains(t, reply.Text, "already exists")

	reply = h.HandleCommand(ctx, testChat, "profiles", "")
	assert.Contains(t, reply.Text, "▶ Aiko (N4)")
	assert.Contains(t, reply.Text, "Ken (N5)")

	reply = h.HandleCommand(ctx, testChat, "use", "ken")
	assert.Contains(t, reply.Text, "Now studying as Ken")
	active, ok := h.store.ActiveProfile()
	require.True(t, ok)
	assert.Equal(t, "Ken", active.Name)

	reply = h.HandleCommand(ctx, testChat, "level", "n3")
	assert.Contains(t, reply.Text, "N3 - Intermediate")
	active, _ = h.store.ActiveProfile()
	assert.Equal(t, models.N3, active.CurrentLevel)

	reply = h.HandleCommand(ctx, testChat, "level", "N9")
	assert.Contains(t, reply.Text, "unknown JLPT level")

	reply = h.HandleCommand(ctx, testChat, "use", "nobody")
	assert.Contains(t, reply.Text, "couldn't find")

	h.HandleCommand(ctx, testChat, "deleteprofile", "Ken")
	_, ok = h.store.ActiveProfile()
	assert.False(t, ok)
	assert.Len(t, h.store.Profiles(), 1)
}

func TestHandler_Review(t *testing.T) {
	h, items := setupHandler(t, 5)
	ctx := context.Background()
	h.HandleCommand(ctx, testChat, "newprofile", "Aiko")

	reply := h.HandleCommand(ctx, testChat, "review", "")
	assert.Contains(t, reply.Text, "Card 1/3")
	require.Len(t, reply.Buttons, 1)
	flip := reply.Buttons[0][0].CallbackData
	assert.Equal(t, "flip:w-00", flip)

	reply = h.HandleCallback(ctx, testChat, flip)
	assert.Contains(t, reply.Text, "word 0")
	require.Len(t, reply.Buttons[0], 3)
	assert.Equal(t, "review:w-00:perfect", reply.Buttons[0][2].CallbackData)

	reply = h.HandleCallback(ctx, testChat, "review:w-00:perfect")
	assert.Contains(t, reply.Text, "Next review in 1 day")
	assert.Contains(t, reply.Text, "Card 2/3")

	item, err := items.Get(ctx, "w-00")
	require.NoError(t, err)
	require.NotNil(t, item.SRS)
	assert.Equal(t, 1, item.SRS.Repetitions)

	// Stale buttons are ignored
	reply = h.HandleCallback(ctx, testChat, "review:w-00:perfect")
	assert.Contains(t, reply.Text, "no longer in your review")

	// Unknown answers are not graded
	reply = h.HandleCallback(ctx, testChat, "review:w-01:great")
	assert.Contains(t, reply.Text, "expired")
	item, err = items.Get(ctx, "w-01")
	require.NoError(t, err)
	assert.Nil(t, item.SRS)

	h.HandleCallback(ctx, testChat, "review:w-01:incorrect")
	reply = h.HandleCallback(ctx, testChat, "review:w-02:correct")
	assert.Contains(t, reply.Text, "Review finished: 3 cards")

	reply = h.HandleCommand(ctx, testChat, "review", "verbs")
	assert.Contains(t, reply.Text, "Usage")
}

func TestHandler_Lesson(t *testing.T) {
	h, _ := setupHandler(t, 8)
	ctx := context.Background()
	h.HandleCommand(ctx, testChat, "newprofile", "Aiko")

	reply := h.HandleCommand(ctx, testChat, "lessons", "")
	assert.Contains(t, reply.Text, "🔓 1. N5 Lesson 1 (4 words)")
	assert.Contains(t, reply.Text, "🔒 2. N5 Lesson 2 (4 words)")

	reply = h.HandleCommand(ctx, testChat, "lesson", "2")
	assert.Contains(t, reply.Text, "locked")

	reply = h.HandleCommand(ctx, testChat, "lesson", "1")
	assert.Contains(t, reply.Text, "Question 1/4")
	assert.Len(t, reply.Buttons, quiz.OptionCount)

	// Answer three right and one wrong
	for i := 0; i < 4; i++ {
		ex, ok := h.sessions[testChat].quiz.Current()
		require.True(t, ok)
		option := ex.CorrectIndex
		if i == 3 {
			option = (ex.CorrectIndex + 1) % len(ex.Options)
		}
		reply = h.HandleCallback(ctx, testChat, "answer:"+strconv.Itoa(option))
	}
	assert.Contains(t, reply.Text, "Lesson complete")
	assert.Contains(t, reply.Text, "3 / 4 correct (75%)")
	assert.Contains(t, reply.Text, "+750 XP (total 750)")
	assert.Contains(t, reply.Text, "Estimated N5 score: 90/180")

	record, ok := h.store.Lesson("n5-lesson-1")
	require.True(t, ok)
	assert.True(t, record.Completed)
	assert.Equal(t, 90, record.SectionScore)

	reply = h.HandleCommand(ctx, testChat, "lessons", "")
	assert.Contains(t, reply.Text, "🔓 2. N5 Lesson 2")

	reply = h.HandleCallback(ctx, testChat, "answer:0")
	assert.Contains(t, reply.Text, "no lesson in progress")
}

func TestHandler_Score(t *testing.T) {
	h, _ := setupHandler(t, 0)
	ctx := context.Background()
	h.HandleCommand(ctx, testChat, "newprofile", "Aiko")

	reply := h.HandleCommand(ctx, testChat, "score", "")
	assert.Contains(t, reply.Text, "Complete a N5 lesson")

	_, err := h.store.CompleteLesson(ctx, progress.LessonAttempt{LessonID: "n5-lesson-1", Correct: 8, Total: 10})
	require.NoError(t, err)

	reply = h.HandleCommand(ctx, testChat, "score", "")
	assert.Contains(t, reply.Text, "Total: 96/180 (pass mark 80)")
	assert.Contains(t, reply.Text, "Result: ✅ Pass")
	assert.NotContains(t, reply.Text, "Reading:")
}

func TestFormatScore(t *testing.T) {
	text, err := FormatScore(models.N3, models.EstimatedJLPTScore{
		Total: 70, LanguageKnowledge: 50, Reading: 10, Passed: false,
	})
	require.NoError(t, err)
	assert.Contains(t, text, "✅")
	assert.Contains(t, text, "❌")
	assert.Contains(t, text, "Reading: 10/60 (min 19)")
	assert.Contains(t, text, "pass mark 95")
	assert.Contains(t, text, "Not yet")

	_, err = FormatScore("N0", models.EstimatedJLPTScore{})
	assert.ErrorIs(t, err, models.ErrUnknownLevel)
}

func TestHandler_UnknownInput(t *testing.T) {
	h, _ := setupHandler(t, 0)
	ctx := context.Background()

	assert.Contains(t, h.HandleCommand(ctx, testChat, "fly", "").Text, "Unknown command")
	assert.Contains(t, h.HandleCallback(ctx, testChat, "bogus").Text, "expired")
	assert.Equal(t, MainMenuButtons(), h.HandleCallback(ctx, testChat, callbackMainMenu).Buttons)
}
