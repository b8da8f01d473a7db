package progress

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/example/nihonwa/internal/jlpt"
	"github.com/example/nihonwa/pkg/models"
)

// Pass marks for lesson completion, in percent
const (
	LessonPassPercentage  = 70
	ReadingPassPercentage = 80
)

// ReadingPassagesPerLevel is the number of passed passages that counts as a
// full reading skill
const ReadingPassagesPerLevel = 10

// LessonAttempt is one finished run through a lesson
type LessonAttempt struct {
	LessonID    string
	Level       models.JLPTLevel // Derived from LessonID when empty
	SectionType models.SectionType
	Correct     int
	Total       int
}

// LessonOutcome is what CompleteLesson recorded
type LessonOutcome struct {
	Record     models.LessonProgressRecord
	Percentage float64
	XPAwarded  int
	TotalXP    int
	Passed     bool
	Estimate   *models.EstimatedJLPTScore // Nil when no completed lesson exists at the level
}

// CompleteLesson grades an attempt, records it, awards XP and refreshes the
// level's JLPT estimate in a single write. Passing a reading lesson also
// counts a read article and updates the reading skill.
func (s *Store) CompleteLesson(ctx context.Context, attempt LessonAttempt) (LessonOutcome, error) {
	if attempt.LessonID == "" {
		return LessonOutcome{}, errors.New("lesson ID must not be empty")
	}
	if attempt.SectionType == "" {
		attempt.SectionType = models.SectionLanguageKnowledge
	}
	if attempt.Level == "" {
		level, err := models.LevelFromLessonID(attempt.LessonID)
		if err != nil {
			return LessonOutcome{}, errors.Wrapf(err, "lesson %s has no level", attempt.LessonID)
		}
		attempt.Level = level
	}
	if attempt.Correct < 0 || attempt.Correct > attempt.Total {
		return LessonOutcome{}, errors.Errorf("correct answers %d out of range for %d questions", attempt.Correct, attempt.Total)
	}

	sectionScore, err := jlpt.LessonScore(attempt.Correct, attempt.Total, attempt.SectionType, attempt.Level)
	if err != nil {
		return LessonOutcome{}, err
	}

	percentage := float64(attempt.Correct) / float64(attempt.Total) * 100
	passMark := float64(LessonPassPercentage)
	if attempt.SectionType == models.SectionReading {
		passMark = ReadingPassPercentage
	}
	passed := percentage >= passMark
	xp := int(math.Round(percentage * 10))

	s.mu.Lock()
	defer s.mu.Unlock()

	completedAt := s.now()
	score := int(math.Round(percentage))
	outcome := LessonOutcome{Percentage: percentage, XPAwarded: xp, Passed: passed}

	err = s.updateActive(ctx, "complete_lesson", func(_ *State, data *ProfileData) error {
		record, err := upsertLesson(data, attempt.LessonID, LessonUpdate{
			Level:          &attempt.Level,
			Completed:      &passed,
			SectionType:    &attempt.SectionType,
			SectionScore:   &sectionScore,
			CorrectAnswers: &attempt.Correct,
			TotalQuestions: &attempt.Total,
			CompletedAt:    &completedAt,
			Score:          &score,
			XP:             &xp,
		})
		if err != nil {
			return err
		}
		outcome.Record = record

		data.TotalXP += xp
		outcome.TotalXP = data.TotalXP

		if passed && attempt.SectionType == models.SectionReading {
			p := data.level(attempt.Level)
			p.ArticlesRead++
			p.Skills.Reading = clampPercent(float64(p.ArticlesRead) / ReadingPassagesPerLevel * 100)
		}

		outcome.Estimate, err = s.recalculate(data, attempt.Level)
		return err
	})
	if err != nil {
		return LessonOutcome{}, err
	}

	s.log.Info("Lesson completed",
		"lesson", attempt.LessonID,
		"level", attempt.Level,
		"section", attempt.SectionType,
		"percentage", score,
		"passed", passed,
		"xp", xp)
	return outcome, nil
}
