package quiz

import (
	"fmt"

	"github.com/example/nihonwa/pkg/models"
)

// Lesson is a fixed group of vocabulary items studied together
type Lesson struct {
	ID      string
	Level   models.JLPTLevel
	Title   string
	Order   int // 1-based
	ItemIDs []string
	Locked  bool
}

// Lessons splits a level's items into lessons of size items each, keeping
// the given order. Lesson IDs follow models.LessonID.
func Lessons(level models.JLPTLevel, items []models.LearnableItem, size int) []Lesson {
	if size <= 0 {
		size = 10
	}
	var lessons []Lesson
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		order := len(lessons) + 1
		ids := make([]string, 0, end-start)
		for _, item := range items[start:end] {
			ids = append(ids, item.ID)
		}
		lessons = append(lessons, Lesson{
			ID:      models.LessonID(level, order),
			Level:   level,
			Title:   fmt.Sprintf("%s Lesson %d", level, order),
			Order:   order,
			ItemIDs: ids,
		})
	}
	return lessons
}

// Unlock marks every lesson after an uncompleted one as locked.
// The first lesson is always open.
func Unlock(lessons []Lesson, completed func(lessonID string) bool) []Lesson {
	out := make([]Lesson, len(lessons))
	copy(out, lessons)
	for i := range out {
		out[i].Locked = i > 0 && !completed(out[i-1].ID)
	}
	return out
}

// Find returns the lesson with the given order (1-based)
func Find(lessons []Lesson, order int) (Lesson, bool) {
	for _, l := range lessons {
		if l.Order == order {
			return l, true
		}
	}
	return Lesson{}, false
}

// Items picks the lesson's items out of pool, in lesson order
func (l Lesson) Items(pool []models.LearnableItem) []models.LearnableItem {
	byID := make(map[string]models.LearnableItem, len(pool))
	for _, item := range pool {
		byID[item.ID] = item
	}
	items := make([]models.LearnableItem, 0, len(l.ItemIDs))
	for _, id := range l.ItemIDs {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items
}
