package models

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// SectionType is the JLPT section a lesson contributes to
type SectionType string

const (
	SectionLanguageKnowledge SectionType = "languageKnowledge"
	SectionReading           SectionType = "reading"
	SectionListening         SectionType = "listening"
)

// ErrUnknownSection is returned for section names outside SectionType
var ErrUnknownSection = errors.New("unknown JLPT section")

// ParseSectionType accepts the canonical names and a few short aliases
func ParseSectionType(s string) (SectionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "languageknowledge", "language", "knowledge", "lk":
		return SectionLanguageKnowledge, nil
	case "reading":
		return SectionReading, nil
	case "listening":
		return SectionListening, nil
	}
	return "", errors.Wrapf(ErrUnknownSection, "%q", s)
}

// SkillProgress holds skill percentages, each in [0,100]
type SkillProgress struct {
	Vocabulary float64 `json:"vocabulary"`
	Kanji      float64 `json:"kanji"`
	Grammar    float64 `json:"grammar"`
	Reading    float64 `json:"reading"`
}

// EstimatedJLPTScore is the cached projection shown on the dashboard
type EstimatedJLPTScore struct {
	Total             int       `json:"total"`              // 0-180
	LanguageKnowledge int       `json:"language_knowledge"` // 0-60, or 0-120 on N4/N5
	Reading           int       `json:"reading"`            // 0-60, always 0 on N4/N5
	Listening         int       `json:"listening"`          // 0-60
	Passed            bool      `json:"passed"`
	LastUpdated       time.Time `json:"last_updated"`
}

// LevelProgress tracks a profile's progress within one JLPT level
type LevelProgress struct {
	Level                   JLPTLevel           `json:"level"`
	Skills                  SkillProgress       `json:"skills"`
	VocabularyMastered      int                 `json:"vocabulary_mastered"`
	KanjiMastered           int                 `json:"kanji_mastered"`
	GrammarPatternsMastered int                 `json:"grammar_patterns_mastered"`
	ArticlesRead            int                 `json:"articles_read"`
	EstimatedScore          *EstimatedJLPTScore `json:"estimated_jlpt_score,omitempty"`
}

// LessonProgressRecord is the latest attempt at a lesson; retakes overwrite it
type LessonProgressRecord struct {
	LessonID       string      `json:"lesson_id"`
	Level          JLPTLevel   `json:"level"`
	Completed      bool        `json:"completed"`
	SectionType    SectionType `json:"section_type"`
	SectionScore   int         `json:"section_score"`
	CorrectAnswers int         `json:"correct_answers"`
	TotalQuestions int         `json:"total_questions"`
	CompletedAt    time.Time   `json:"completed_at"`
	Score          int         `json:"score"` // Percentage correct (legacy)
	XP             int         `json:"xp"`    // XP granted for the attempt (legacy)
}
