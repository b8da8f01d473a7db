package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/example/nihonwa/internal/jlpt"
	"github.com/example/nihonwa/pkg/models"
)

// SkillsUpdate sets the non-nil skill percentages; values are clamped to [0,100]
type SkillsUpdate struct {
	Vocabulary *float64
	Kanji      *float64
	Grammar    *float64
	Reading    *float64
}

// LevelProgressUpdate lists the level fields to change; nil fields are kept
type LevelProgressUpdate struct {
	Skills                  *SkillsUpdate
	VocabularyMastered      *int
	KanjiMastered           *int
	GrammarPatternsMastered *int
	ArticlesRead            *int
	EstimatedScore          *models.EstimatedJLPTScore
}

// LessonUpdate lists the lesson record fields to change; nil fields are kept.
// A new record takes its level from Level, or from the lesson ID prefix.
type LessonUpdate struct {
	Level          *models.JLPTLevel
	Completed      *bool
	SectionType    *models.SectionType
	SectionScore   *int
	CorrectAnswers *int
	TotalQuestions *int
	CompletedAt    *time.Time
	Score          *int
	XP             *int
}

// UpdateLevelProgress merges update into the active profile's progress at level
func (s *Store) UpdateLevelProgress(ctx context.Context, level models.JLPTLevel, update LevelProgressUpdate) error {
	if !level.Valid() {
		return errors.Wrapf(models.ErrUnknownLevel, "%q", level)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateActive(ctx, "update_level_progress", func(_ *State, data *ProfileData) error {
		mergeLevel(data.level(level), update)
		return nil
	})
}

func mergeLevel(p *models.LevelProgress, u LevelProgressUpdate) {
	if u.Skills != nil {
		setSkill(&p.Skills.Vocabulary, u.Skills.Vocabulary)
		setSkill(&p.Skills.Kanji, u.Skills.Kanji)
		setSkill(&p.Skills.Grammar, u.Skills.Grammar)
		setSkill(&p.Skills.Reading, u.Skills.Reading)
	}
	if u.VocabularyMastered != nil {
		p.VocabularyMastered = *u.VocabularyMastered
	}
	if u.KanjiMastered != nil {
		p.KanjiMastered = *u.KanjiMastered
	}
	if u.GrammarPatternsMastered != nil {
		p.GrammarPatternsMastered = *u.GrammarPatternsMastered
	}
	if u.ArticlesRead != nil {
		p.ArticlesRead = *u.ArticlesRead
	}
	if u.EstimatedScore != nil {
		score := *u.EstimatedScore
		p.EstimatedScore = &score
	}
}

func setSkill(dst *float64, v *float64) {
	if v != nil {
		*dst = clampPercent(*v)
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// RecordLessonResult creates or overwrites the active profile's record for
// lessonID. Retakes replace earlier values.
func (s *Store) RecordLessonResult(ctx context.Context, lessonID string, update LessonUpdate) (models.LessonProgressRecord, error) {
	if lessonID == "" {
		return models.LessonProgressRecord{}, errors.New("lesson ID must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var record models.LessonProgressRecord
	err := s.updateActive(ctx, "record_lesson_result", func(_ *State, data *ProfileData) error {
		var err error
		record, err = upsertLesson(data, lessonID, update)
		return err
	})
	return record, err
}

func upsertLesson(data *ProfileData, lessonID string, u LessonUpdate) (models.LessonProgressRecord, error) {
	if u.SectionType != nil && !validSection(*u.SectionType) {
		return models.LessonProgressRecord{}, errors.Wrapf(models.ErrUnknownSection, "lesson %s: %q", lessonID, *u.SectionType)
	}
	if u.SectionScore != nil && *u.SectionScore < 0 {
		return models.LessonProgressRecord{}, errors.Wrapf(jlpt.ErrNegativeScore, "lesson %s: %d", lessonID, *u.SectionScore)
	}

	i := data.lessonIndex(lessonID)
	if i == -1 {
		record := models.LessonProgressRecord{
			LessonID:    lessonID,
			SectionType: models.SectionLanguageKnowledge,
		}
		if u.Level != nil {
			record.Level = *u.Level
		} else {
			level, err := models.LevelFromLessonID(lessonID)
			if err != nil {
				return models.LessonProgressRecord{}, errors.Wrapf(err, "lesson %s has no level", lessonID)
			}
			record.Level = level
		}
		data.LessonProgress = append(data.LessonProgress, record)
		i = len(data.LessonProgress) - 1
	}

	r := &data.LessonProgress[i]
	if u.Level != nil {
		r.Level = *u.Level
	}
	if !r.Level.Valid() {
		return models.LessonProgressRecord{}, errors.Wrapf(models.ErrUnknownLevel, "lesson %s: %q", lessonID, r.Level)
	}
	if u.Completed != nil {
		r.Completed = *u.Completed
	}
	if u.SectionType != nil {
		r.SectionType = *u.SectionType
	}
	if u.SectionScore != nil {
		r.SectionScore = *u.SectionScore
	}
	if u.CorrectAnswers != nil {
		r.CorrectAnswers = *u.CorrectAnswers
	}
	if u.TotalQuestions != nil {
		r.TotalQuestions = *u.TotalQuestions
	}
	if u.CompletedAt != nil {
		r.CompletedAt = *u.CompletedAt
	}
	if u.Score != nil {
		r.Score = *u.Score
	}
	if u.XP != nil {
		r.XP = *u.XP
	}
	return *r, nil
}

func validSection(section models.SectionType) bool {
	switch section {
	case models.SectionLanguageKnowledge, models.SectionReading, models.SectionListening:
		return true
	}
	return false
}

// AwardXP adds amount to the active profile's XP total
func (s *Store) AwardXP(ctx context.Context, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int
	err := s.updateActive(ctx, "award_xp", func(_ *State, data *ProfileData) error {
		data.TotalXP += amount
		total = data.TotalXP
		return nil
	})
	return total, err
}

// RecalculateEstimatedScore re-estimates the active profile's JLPT score at
// level from its completed lessons. Without completed lessons the cached
// estimate is left as it is and nil is returned.
func (s *Store) RecalculateEstimatedScore(ctx context.Context, level models.JLPTLevel) (*models.EstimatedJLPTScore, error) {
	if !level.Valid() {
		return nil, errors.Wrapf(models.ErrUnknownLevel, "%q", level)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var estimate *models.EstimatedJLPTScore
	err := s.updateActive(ctx, "recalculate_estimated_score", func(_ *State, data *ProfileData) error {
		var err error
		estimate, err = s.recalculate(data, level)
		return err
	})
	return estimate, err
}

// recalculate refreshes the cached estimate of level inside data
func (s *Store) recalculate(data *ProfileData, level models.JLPTLevel) (*models.EstimatedJLPTScore, error) {
	var scores []jlpt.SectionScore
	for _, r := range data.LessonProgress {
		if r.Completed && r.Level == level {
			scores = append(scores, jlpt.SectionScore{SectionType: r.SectionType, Score: r.SectionScore})
		}
	}
	if len(scores) == 0 {
		return nil, nil
	}

	result, err := jlpt.EstimatedScore(scores, level)
	if err != nil {
		return nil, err
	}
	estimate := result.Estimate(s.now())
	data.level(level).EstimatedScore = &estimate

	out := estimate
	return &out, nil
}
