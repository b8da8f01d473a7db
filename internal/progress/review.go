package progress

import (
	"context"

	"github.com/pkg/errors"

	"github.com/example/nihonwa/internal/spaced_repetition"
	"github.com/example/nihonwa/pkg/models"
)

// ReviewOutcome is the result of answering one flashcard
type ReviewOutcome struct {
	Item   models.LearnableItem
	Review spaced_repetition.Review
	Level  models.LevelProgress // Active profile's progress at the item's level
}

// ReviewItem schedules the item's next review from the answer quality and
// saves it. The schedule is shared by every profile; whether the item counts
// as mastered is tracked per profile, and the active profile's counters and
// skill percentages follow its own answers only.
func (s *Store) ReviewItem(ctx context.Context, itemID string, quality spaced_repetition.QualityResponse) (ReviewOutcome, error) {
	if s.items == nil {
		return ReviewOutcome{}, ErrNoItemStore
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.ActiveProfileID == "" {
		s.log.Warn("Ignoring operation without an active profile", "op", "review_item", "item", itemID)
		return ReviewOutcome{}, ErrNoActiveProfile
	}

	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return ReviewOutcome{}, errors.Wrapf(err, "failed to load item %s", itemID)
	}
	before := *item
	review := s.sm2.Apply(item, quality)

	if err := s.items.Put(ctx, item); err != nil {
		return ReviewOutcome{}, &PersistError{Err: err}
	}

	outcome := ReviewOutcome{Item: *item, Review: review}
	err = s.updateActive(ctx, "review_item", func(_ *State, data *ProfileData) error {
		if !item.Level.Valid() {
			return nil
		}
		if data.Mastered == nil {
			data.Mastered = map[string]bool{}
		}
		p := data.level(item.Level)
		if data.Mastered[item.ID] != item.Mastered {
			delta := 1
			if !item.Mastered {
				delta = -1
			}
			applyMastered(p, item.Kind, delta)
		}
		if item.Mastered {
			data.Mastered[item.ID] = true
		} else {
			delete(data.Mastered, item.ID)
		}
		outcome.Level = *p
		return nil
	})
	if err != nil {
		// Progress was not written, restore the item
		if restoreErr := s.items.Put(ctx, &before); restoreErr != nil {
			s.log.Error("Failed to restore item after progress write failed", "item", itemID, "error", restoreErr)
		}
		return ReviewOutcome{}, err
	}

	s.log.Debug("Item reviewed",
		"item", itemID,
		"quality", int(quality),
		"interval", review.State.Interval,
		"mastered", item.Mastered)
	return outcome, nil
}

func applyMastered(p *models.LevelProgress, kind models.ItemKind, delta int) {
	info := models.LevelInfos[p.Level]
	switch kind {
	case models.KindVocabulary:
		p.VocabularyMastered = nonNegative(p.VocabularyMastered + delta)
		if info.Vocabulary > 0 {
			p.Skills.Vocabulary = clampPercent(float64(p.VocabularyMastered) / float64(info.Vocabulary) * 100)
		}
	case models.KindKanji:
		p.KanjiMastered = nonNegative(p.KanjiMastered + delta)
		if info.Kanji > 0 {
			p.Skills.Kanji = clampPercent(float64(p.KanjiMastered) / float64(info.Kanji) * 100)
		}
	case models.KindGrammar:
		p.GrammarPatternsMastered = nonNegative(p.GrammarPatternsMastered + delta)
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// DueItems returns up to limit items of kind at level that are due now
func (s *Store) DueItems(ctx context.Context, kind models.ItemKind, level models.JLPTLevel, limit int) ([]models.LearnableItem, error) {
	if s.items == nil {
		return nil, ErrNoItemStore
	}
	items, err := s.items.GetByLevel(ctx, kind, level)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load items")
	}
	return s.sm2.DueItems(items, s.now(), limit), nil
}

// Items returns every item of kind at level
func (s *Store) Items(ctx context.Context, kind models.ItemKind, level models.JLPTLevel) ([]models.LearnableItem, error) {
	if s.items == nil {
		return nil, ErrNoItemStore
	}
	items, err := s.items.GetByLevel(ctx, kind, level)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load items")
	}
	return items, nil
}
