package models

import "time"

// ItemKind distinguishes the learnable item collections
type ItemKind string

const (
	KindVocabulary ItemKind = "vocabulary"
	KindKanji      ItemKind = "kanji"
	KindGrammar    ItemKind = "grammar"
)

// ItemKinds lists every collection
var ItemKinds = []ItemKind{KindVocabulary, KindKanji, KindGrammar}

// Valid reports whether the kind is a known collection
func (k ItemKind) Valid() bool {
	switch k {
	case KindVocabulary, KindKanji, KindGrammar:
		return true
	}
	return false
}

// SRSState is the SM-2 scheduling state embedded in an item
type SRSState struct {
	EaseFactor  float64 `json:"ease_factor"` // Never below 1.3
	Interval    int     `json:"interval"`    // Days until next review
	Repetitions int     `json:"repetitions"` // Consecutive correct reviews
}

// LearnableItem is a vocabulary word, kanji character or grammar pattern.
// The scheduler only reads and writes Mastered, LastReviewed, NextReview and SRS.
type LearnableItem struct {
	ID           string     `json:"id"`
	Kind         ItemKind   `json:"kind"`
	Level        JLPTLevel  `json:"level"`
	Term         string     `json:"term"`    // Word, character or pattern
	Reading      string     `json:"reading"` // Kana reading or on/kun readings
	Meaning      string     `json:"meaning"`
	Examples     []string   `json:"examples,omitempty"`
	Mastered     bool       `json:"mastered"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty"`
	NextReview   *time.Time `json:"next_review,omitempty"`
	SRS          *SRSState  `json:"srs,omitempty"`
}
