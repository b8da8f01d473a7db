// Package quiz builds lessons and multiple choice exercises from learnable
// items and grades a run through them.
package quiz

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/example/nihonwa/pkg/models"
)

// ExerciseType represents different types of exercises
type ExerciseType string

const (
	// MeaningChoice shows the Japanese term and asks for its meaning
	MeaningChoice ExerciseType = "multiple-choice-jp"
	// TermChoice shows the meaning and asks for the Japanese term
	TermChoice ExerciseType = "multiple-choice-en"
)

// OptionCount is the number of choices offered per exercise
const OptionCount = 4

// Exercise is a single multiple choice question
type Exercise struct {
	ID           string
	Type         ExerciseType
	Item         models.LearnableItem
	Prompt       string
	Options      []string
	CorrectIndex int
}

// Correct returns the right option
func (e Exercise) Correct() string {
	return e.Options[e.CorrectIndex]
}

// Generator creates exercises
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator creates a generator seeded from the clock
func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator creates a generator with reproducible output
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Exercises creates one exercise per item, alternating between the two
// question directions, and shuffles them. Wrong options come from pool.
func (g *Generator) Exercises(items, pool []models.LearnableItem) []Exercise {
	exercises := make([]Exercise, 0, len(items))
	for i, item := range items {
		typ := MeaningChoice
		if i%2 == 1 {
			typ = TermChoice
		}
		exercises = append(exercises, g.exercise(item, pool, typ))
	}

	g.rnd.Shuffle(len(exercises), func(i, j int) {
		exercises[i], exercises[j] = exercises[j], exercises[i]
	})
	return exercises
}

func (g *Generator) exercise(item models.LearnableItem, pool []models.LearnableItem, typ ExerciseType) Exercise {
	ex := Exercise{
		ID:   fmt.Sprintf("ex-%s-%s", item.ID, typ),
		Type: typ,
		Item: item,
	}

	answer := func(it models.LearnableItem) string { return it.Meaning }
	if typ == TermChoice {
		answer = func(it models.LearnableItem) string { return it.Term }
		ex.Prompt = fmt.Sprintf("How do you say %q in Japanese?", item.Meaning)
	} else if item.Reading != "" && item.Reading != item.Term {
		ex.Prompt = fmt.Sprintf("What does %q (%s) mean?", item.Term, item.Reading)
	} else {
		ex.Prompt = fmt.Sprintf("What does %q mean?", item.Term)
	}

	correct := answer(item)
	ex.Options = append(g.wrongOptions(correct, pool, answer), correct)
	ex.CorrectIndex = len(ex.Options) - 1

	// Shuffle options, tracking the correct answer
	g.rnd.Shuffle(len(ex.Options), func(i, j int) {
		if i == ex.CorrectIndex {
			ex.CorrectIndex = j
		} else if j == ex.CorrectIndex {
			ex.CorrectIndex = i
		}
		ex.Options[i], ex.Options[j] = ex.Options[j], ex.Options[i]
	})
	return ex
}

// wrongOptions picks up to OptionCount-1 distinct answers other than correct
func (g *Generator) wrongOptions(correct string, pool []models.LearnableItem, answer func(models.LearnableItem) string) []string {
	seen := map[string]bool{correct: true}
	var candidates []string
	for _, it := range pool {
		a := answer(it)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		candidates = append(candidates, a)
	}

	g.rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > OptionCount-1 {
		candidates = candidates[:OptionCount-1]
	}
	return candidates
}
