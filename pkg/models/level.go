package models

import (
	"strings"

	"github.com/pkg/errors"
)

// JLPTLevel is one of the five JLPT levels, N5 (easiest) to N1 (hardest)
type JLPTLevel string

const (
	N5 JLPTLevel = "N5"
	N4 JLPTLevel = "N4"
	N3 JLPTLevel = "N3"
	N2 JLPTLevel = "N2"
	N1 JLPTLevel = "N1"
)

// Levels lists every level in study order
var Levels = []JLPTLevel{N5, N4, N3, N2, N1}

// ErrUnknownLevel is returned for level keys outside N5..N1
var ErrUnknownLevel = errors.New("unknown JLPT level")

// LevelInfo describes a level for display and skill targets
type LevelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Vocabulary  int    `json:"vocabulary"` // Words expected at this level
	Kanji       int    `json:"kanji"`      // Kanji expected at this level
}

// LevelInfos holds the per-level study targets
var LevelInfos = map[JLPTLevel]LevelInfo{
	N5: {Name: "N5 - Beginner", Description: "Basic Japanese for everyday situations", Vocabulary: 800, Kanji: 100},
	N4: {Name: "N4 - Elementary", Description: "Understand basic Japanese in daily contexts", Vocabulary: 1500, Kanji: 300},
	N3: {Name: "N3 - Intermediate", Description: "Understand Japanese in everyday situations", Vocabulary: 3750, Kanji: 650},
	N2: {Name: "N2 - Advanced", Description: "Understand Japanese in a variety of contexts", Vocabulary: 6000, Kanji: 1000},
	N1: {Name: "N1 - Native Level", Description: "Understand Japanese in a wide range of situations", Vocabulary: 10000, Kanji: 2000},
}

// ParseLevel accepts "N5", "n5" and surrounding whitespace
func ParseLevel(s string) (JLPTLevel, error) {
	level := JLPTLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !level.Valid() {
		return "", errors.Wrapf(ErrUnknownLevel, "%q", s)
	}
	return level, nil
}

// Valid reports whether the level is one of N5..N1
func (l JLPTLevel) Valid() bool {
	return l.Index() >= 0
}

// Index returns the position of the level in Levels, or -1
func (l JLPTLevel) Index() int {
	for i, level := range Levels {
		if level == l {
			return i
		}
	}
	return -1
}

// Next returns the following (harder) level
func (l JLPTLevel) Next() (JLPTLevel, bool) {
	i := l.Index()
	if i == -1 || i == len(Levels)-1 {
		return "", false
	}
	return Levels[i+1], true
}

// Previous returns the preceding (easier) level
func (l JLPTLevel) Previous() (JLPTLevel, bool) {
	i := l.Index()
	if i <= 0 {
		return "", false
	}
	return Levels[i-1], true
}

func (l JLPTLevel) String() string {
	return string(l)
}
