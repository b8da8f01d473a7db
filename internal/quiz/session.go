package quiz

import (
	"github.com/pkg/errors"

	"github.com/example/nihonwa/internal/progress"
	"github.com/example/nihonwa/pkg/models"
)

var (
	// ErrSessionFinished is returned when answering after the last exercise
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrInvalidOption is returned for option indexes outside the exercise
	ErrInvalidOption = errors.New("invalid option")
)

// Session is one run through a lesson's exercises
type Session struct {
	LessonID  string
	Level     models.JLPTLevel
	Exercises []Exercise
	Correct   int
	current   int
}

// NewSession starts a run through exercises
func NewSession(lesson Lesson, exercises []Exercise) *Session {
	return &Session{LessonID: lesson.ID, Level: lesson.Level, Exercises: exercises}
}

// Current returns the exercise waiting for an answer
func (s *Session) Current() (Exercise, bool) {
	if s.Done() {
		return Exercise{}, false
	}
	return s.Exercises[s.current], true
}

// Answered returns how many exercises have been answered
func (s *Session) Answered() int {
	return s.current
}

// Done reports whether every exercise has been answered
func (s *Session) Done() bool {
	return s.current >= len(s.Exercises)
}

// Answer grades the chosen option of the current exercise and moves on
func (s *Session) Answer(option int) (bool, Exercise, error) {
	ex, ok := s.Current()
	if !ok {
		return false, Exercise{}, ErrSessionFinished
	}
	if option < 0 || option >= len(ex.Options) {
		return false, ex, errors.Wrapf(ErrInvalidOption, "%d", option)
	}

	correct := option == ex.CorrectIndex
	if correct {
		s.Correct++
	}
	s.current++
	return correct, ex, nil
}

// Attempt converts the finished session into a lesson attempt
func (s *Session) Attempt() progress.LessonAttempt {
	return progress.LessonAttempt{
		LessonID:    s.LessonID,
		Level:       s.Level,
		SectionType: models.SectionLanguageKnowledge,
		Correct:     s.Correct,
		Total:       len(s.Exercises),
	}
}
