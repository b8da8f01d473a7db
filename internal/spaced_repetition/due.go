package spaced_repetition

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/example/nihonwa/pkg/models"
)

// IsDue reports whether an item with the given next review time should be
// shown at now. Items that were never reviewed are always due.
func IsDue(nextReview *time.Time, now time.Time) bool {
	if nextReview == nil {
		return true
	}
	return !now.Before(*nextReview)
}

// DueItems returns up to limit items due at now, in review order.
// A non-positive limit returns every due item.
func (sm *SM2) DueItems(items []models.LearnableItem, now time.Time, limit int) []models.LearnableItem {
	var due []models.LearnableItem
	for _, item := range items {
		if IsDue(item.NextReview, now) {
			due = append(due, item)
		}
	}

	// Sort due items by priority:
	// 1. Items that have never been reviewed
	// 2. Items with lowest ease factor (hardest items)
	// 3. Items with earliest next review date
	sort.SliceStable(due, func(i, j int) bool {
		newI, newJ := due[i].NextReview == nil, due[j].NextReview == nil
		if newI != newJ {
			return newI
		}
		if newI {
			return false
		}

		easeI, easeJ := sm.easeOf(due[i]), sm.easeOf(due[j])
		if easeI != easeJ {
			return easeI < easeJ
		}

		return due[i].NextReview.Before(*due[j].NextReview)
	})

	if limit > 0 && len(due) > limit {
		return due[:limit]
	}
	return due
}

func (sm *SM2) easeOf(item models.LearnableItem) float64 {
	if item.SRS == nil {
		return sm.InitialEaseFactor
	}
	return item.SRS.EaseFactor
}

// IntervalText renders an interval in days for display
func IntervalText(days int) string {
	switch {
	case days <= 0:
		return "Now"
	case days == 1:
		return "1 day"
	case days < 30:
		return fmt.Sprintf("%d days", days)
	case days < 365:
		months := int(math.Round(float64(days) / 30))
		if months == 1 {
			return "1 month"
		}
		return fmt.Sprintf("%d months", months)
	}
	years := int(math.Round(float64(days) / 365))
	if years == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", years)
}
