package models

import (
	"fmt"
	"strings"
)

// LessonID builds the identifier of the n-th lesson (1-based) of a level,
// e.g. "n5-lesson-3"
func LessonID(level JLPTLevel, n int) string {
	return fmt.Sprintf("%s-lesson-%d", strings.ToLower(string(level)), n)
}

// LevelFromLessonID reads the level prefix of a lesson identifier
func LevelFromLessonID(id string) (JLPTLevel, error) {
	prefix, _, _ := strings.Cut(id, "-")
	return ParseLevel(prefix)
}
