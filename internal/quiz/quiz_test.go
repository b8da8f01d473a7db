package quiz

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nihonwa/pkg/models"
)

func sampleItems(n int) []models.LearnableItem {
	items := make([]models.LearnableItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, models.LearnableItem{
			ID:      fmt.Sprintf("w%d", i),
			Kind:    models.KindVocabulary,
			Level:   models.N5,
			Term:    fmt.Sprintf("語%d", i),
			Reading: fmt.Sprintf("ご%d", i),
			Meaning: fmt.Sprintf("word %d", i),
		})
	}
	return items
}

func TestLessons(t *testing.T) {
	lessons := Lessons(models.N5, sampleItems(23), 10)
	require.Len(t, lessons, 3)

	assert.Equal(t, "n5-lesson-1", lessons[0].ID)
	assert.Equal(t, "n5-lesson-3", lessons[2].ID)
	assert.Len(t, lessons[0].ItemIDs, 10)
	assert.Len(t, lessons[2].ItemIDs, 3)
	assert.Equal(t, "w11", lessons[1].ItemIDs[0])

	assert.Empty(t, Lessons(models.N5, nil, 10))
}

func TestUnlock(t *testing.T) {
	lessons := Lessons(models.N4, sampleItems(30), 10)
	done := map[string]bool{"n4-lesson-1": true}

	unlocked := Unlock(lessons, func(id string) bool { return done[id] })
	assert.False(t, unlocked[0].Locked)
	assert.False(t, unlocked[1].Locked)
	assert.True(t, unlocked[2].Locked)
	assert.False(t, lessons[2].Locked)
}

func TestFindAndItems(t *testing.T) {
	pool := sampleItems(12)
	lessons := Lessons(models.N5, pool, 5)

	lesson, ok := Find(lessons, 3)
	require.True(t, ok)
	items := lesson.Items(pool)
	require.Len(t, items, 2)
	assert.Equal(t, "w11", items[0].ID)

	_, ok = Find(lessons, 4)
	assert.False(t, ok)
}

func TestGenerator_Exercises(t *testing.T) {
	pool := sampleItems(8)
	gen := NewSeededGenerator(42)

	exercises := gen.Exercises(pool[:4], pool)
	require.Len(t, exercises, 4)

	types := map[ExerciseType]int{}
	for _, ex := range exercises {
		types[ex.Type]++
		assert.Len(t, ex.Options, OptionCount)

		switch ex.Type {
		case MeaningChoice:
			assert.Equal(t, ex.Item.Meaning, ex.Correct())
			assert.Contains(t, ex.Prompt, ex.Item.Term)
		case TermChoice:
			assert.Equal(t, ex.Item.Term, ex.Correct())
			assert.Contains(t, ex.Prompt, ex.Item.Meaning)
		}

		seen := map[string]bool{}
		for _, opt := range ex.Options {
			assert.False(t, seen[opt], "duplicate option %q", opt)
			seen[opt] = true
		}
	}
	assert.Equal(t, 2, types[MeaningChoice])
	assert.Equal(t, 2, types[TermChoice])
}

func TestGenerator_SmallPool(t *testing.T) {
	pool := sampleItems(2)
	exercises := NewSeededGenerator(1).Exercises(pool[:1], pool)
	require.Len(t, exercises, 1)
	assert.Len(t, exercises[0].Options, 2)
}

func TestSession(t *testing.T) {
	pool := sampleItems(6)
	lesson := Lessons(models.N5, pool, 3)[0]
	exercises := NewSeededGenerator(7).Exercises(lesson.Items(pool), pool)
	session := NewSession(lesson, exercises)

	ex, ok := session.Current()
	require.True(t, ok)
	correct, _, err := session.Answer(ex.CorrectIndex)
	require.NoError(t, err)
	assert.True(t, correct)

	ex, _ = session.Current()
	_, _, err = session.Answer(len(ex.Options))
	assert.True(t, errors.Is(err, ErrInvalidOption))

	correct, _, err = session.Answer((ex.CorrectIndex + 1) % len(ex.Options))
	require.NoError(t, err)
	assert.False(t, correct)

	ex, _ = session.Current()
	_, _, err = session.Answer(ex.CorrectIndex)
	require.NoError(t, err)

	assert.True(t, session.Done())
	assert.Equal(t, 3, session.Answered())
	_, _, err = session.Answer(0)
	assert.True(t, errors.Is(err, ErrSessionFinished))

	attempt := session.Attempt()
	assert.Equal(t, "n5-lesson-1", attempt.LessonID)
	assert.Equal(t, models.N5, attempt.Level)
	assert.Equal(t, 2, attempt.Correct)
	assert.Equal(t, 3, attempt.Total)
}
