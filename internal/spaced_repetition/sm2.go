package spaced_repetition

import (
	"math"
	"time"

	"github.com/example/nihonwa/pkg/models"
)

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Answers at or above this quality count as correct
	PassThreshold int
	// Ease factor given to items on their first review
	InitialEaseFactor float64
	// Lower bound for the ease factor
	MinEaseFactor float64
	// Clock used for next review dates
	Now func() time.Time
}

// NewSM2 creates an SM2 with the standard parameters
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold:     3,
		InitialEaseFactor: 2.5,
		MinEaseFactor:     1.3,
		Now:               time.Now,
	}
}

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// Response is the answer given on a three-button flashcard
type Response string

const (
	ResponseIncorrect Response = "incorrect"
	ResponseCorrect   Response = "correct"
	ResponsePerfect   Response = "perfect"
)

// Valid reports whether r is one of the flashcard buttons
func (r Response) Valid() bool {
	switch r {
	case ResponseIncorrect, ResponseCorrect, ResponsePerfect:
		return true
	}
	return false
}

// QualityFromResponse maps flashcard buttons onto SM-2 quality. Unknown
// responses count as incorrect.
func QualityFromResponse(r Response) QualityResponse {
	switch r {
	case ResponseCorrect:
		return QualityCorrectHesitation
	case ResponsePerfect:
		return QualityPerfect
	default:
		return QualityIncorrect
	}
}

// Review is the outcome of scheduling one answer
type Review struct {
	NextReview time.Time
	State      models.SRSState
}

// DefaultState returns the state of an item that has never been reviewed
func (sm *SM2) DefaultState() models.SRSState {
	ease := sm.InitialEaseFactor
	if ease < sm.MinEaseFactor {
		ease = sm.MinEaseFactor
	}
	return models.SRSState{EaseFactor: ease}
}

// Next computes the state after answering with the given quality.
// A nil state is treated as a first encounter. Quality outside 0..5 is
// clamped into range, and negative intervals or repetition counts in a
// damaged state are read as zero.
func (sm *SM2) Next(quality QualityResponse, current *models.SRSState) Review {
	q := clampQuality(quality)

	state := sm.DefaultState()
	if current != nil {
		state = *current
	}
	if state.Interval < 0 {
		state.Interval = 0
	}
	if state.Repetitions < 0 {
		state.Repetitions = 0
	}

	if int(q) >= sm.PassThreshold {
		switch state.Repetitions {
		case 0:
			state.Interval = 1
		case 1:
			state.Interval = 6
		default:
			state.Interval = int(math.Round(float64(state.Interval) * state.EaseFactor))
		}
		state.Repetitions++
	} else {
		// Ease factor is kept; only the streak restarts
		state.Repetitions = 0
		state.Interval = 1
	}

	diff := 5.0 - float64(q)
	state.EaseFactor = state.EaseFactor + (0.1 - diff*(0.08+diff*0.02))
	if state.EaseFactor < sm.MinEaseFactor {
		state.EaseFactor = sm.MinEaseFactor
	}

	return Review{
		NextReview: sm.now().AddDate(0, 0, state.Interval),
		State:      state,
	}
}

// Apply schedules the item's next review and records the answer on it
func (sm *SM2) Apply(item *models.LearnableItem, quality QualityResponse) Review {
	review := sm.Next(quality, item.SRS)

	reviewedAt := sm.now()
	next := review.NextReview
	state := review.State

	item.SRS = &state
	item.LastReviewed = &reviewedAt
	item.NextReview = &next
	item.Mastered = int(clampQuality(quality)) >= sm.PassThreshold

	return review
}

func (sm *SM2) now() time.Time {
	if sm.Now == nil {
		return time.Now()
	}
	return sm.Now()
}

func clampQuality(q QualityResponse) QualityResponse {
	if q < QualityBlackout {
		return QualityBlackout
	}
	if q > QualityPerfect {
		return QualityPerfect
	}
	return q
}
