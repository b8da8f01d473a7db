package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/nihonwa/pkg/models"
)

// ErrItemNotFound is returned when no item matches a lookup
var ErrItemNotFound = errors.New("learnable item not found")

const itemColumns = `id, kind, level, term, reading, meaning, examples, mastered,
	last_reviewed, next_review, ease_factor, interval_days, repetitions`

// itemRow mirrors a learnable_items row
type itemRow struct {
	ID           string          `db:"id"`
	Kind         string          `db:"kind"`
	Level        string          `db:"level"`
	Term         string          `db:"term"`
	Reading      string          `db:"reading"`
	Meaning      string          `db:"meaning"`
	Examples     string          `db:"examples"`
	Mastered     bool            `db:"mastered"`
	LastReviewed sql.NullTime    `db:"last_reviewed"`
	NextReview   sql.NullTime    `db:"next_review"`
	EaseFactor   sql.NullFloat64 `db:"ease_factor"`
	IntervalDays sql.NullInt64   `db:"interval_days"`
	Repetitions  sql.NullInt64   `db:"repetitions"`
}

func (r itemRow) toModel() (models.LearnableItem, error) {
	item := models.LearnableItem{
		ID:       r.ID,
		Kind:     models.ItemKind(r.Kind),
		Level:    models.JLPTLevel(r.Level),
		Term:     r.Term,
		Reading:  r.Reading,
		Meaning:  r.Meaning,
		Mastered: r.Mastered,
	}
	if r.Examples != "" {
		if err := json.Unmarshal([]byte(r.Examples), &item.Examples); err != nil {
			return item, errors.Wrapf(err, "failed to parse examples of item %s", r.ID)
		}
	}
	if r.LastReviewed.Valid {
		t := r.LastReviewed.Time
		item.LastReviewed = &t
	}
	if r.NextReview.Valid {
		t := r.NextReview.Time
		item.NextReview = &t
	}
	if r.EaseFactor.Valid {
		item.SRS = &models.SRSState{
			EaseFactor:  r.EaseFactor.Float64,
			Interval:    int(r.IntervalDays.Int64),
			Repetitions: int(r.Repetitions.Int64),
		}
	}
	return item, nil
}

// ItemRepository stores vocabulary, kanji and grammar items
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new repository instance
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Get returns an item by ID
func (r *ItemRepository) Get(ctx context.Context, id string) (*models.LearnableItem, error) {
	return r.getOne(ctx, "SELECT "+itemColumns+" FROM learnable_items WHERE id = ?", id)
}

// GetByTerm returns the item with the given term in a kind and level
func (r *ItemRepository) GetByTerm(ctx context.Context, kind models.ItemKind, level models.JLPTLevel, term string) (*models.LearnableItem, error) {
	return r.getOne(ctx,
		"SELECT "+itemColumns+" FROM learnable_items WHERE kind = ? AND level = ? AND term = ? LIMIT 1",
		string(kind), string(level), term)
}

// GetByLevel returns every item of a kind at level, ordered by term
func (r *ItemRepository) GetByLevel(ctx context.Context, kind models.ItemKind, level models.JLPTLevel) ([]models.LearnableItem, error) {
	return r.getMany(ctx,
		"SELECT "+itemColumns+" FROM learnable_items WHERE kind = ? AND level = ? ORDER BY term, id",
		string(kind), string(level))
}

// GetMastered returns items of a kind filtered by their mastery flag
func (r *ItemRepository) GetMastered(ctx context.Context, kind models.ItemKind, mastered bool) ([]models.LearnableItem, error) {
	return r.getMany(ctx,
		"SELECT "+itemColumns+" FROM learnable_items WHERE kind = ? AND mastered = ? ORDER BY level, term, id",
		string(kind), mastered)
}

// CountByLevel returns how many items of a kind exist at level
func (r *ItemRepository) CountByLevel(ctx context.Context, kind models.ItemKind, level models.JLPTLevel) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		r.db.Rebind("SELECT COUNT(*) FROM learnable_items WHERE kind = ? AND level = ?"),
		string(kind), string(level))
	if err != nil {
		return 0, errors.Wrap(err, "failed to count items")
	}
	return count, nil
}

// Put inserts the item or replaces the stored copy with the same ID
func (r *ItemRepository) Put(ctx context.Context, item *models.LearnableItem) error {
	if item.ID == "" {
		return errors.New("item ID must not be empty")
	}

	examples := item.Examples
	if examples == nil {
		examples = []string{}
	}
	examplesJSON, err := json.Marshal(examples)
	if err != nil {
		return errors.Wrap(err, "failed to marshal examples")
	}

	var lastReviewed, nextReview sql.NullTime
	if item.LastReviewed != nil {
		lastReviewed = sql.NullTime{Time: *item.LastReviewed, Valid: true}
	}
	if item.NextReview != nil {
		nextReview = sql.NullTime{Time: *item.NextReview, Valid: true}
	}
	var ease sql.NullFloat64
	var interval, repetitions sql.NullInt64
	if item.SRS != nil {
		ease = sql.NullFloat64{Float64: item.SRS.EaseFactor, Valid: true}
		interval = sql.NullInt64{Int64: int64(item.SRS.Interval), Valid: true}
		repetitions = sql.NullInt64{Int64: int64(item.SRS.Repetitions), Valid: true}
	}

	query := r.db.Rebind(`
		INSERT INTO learnable_items (
			id, kind, level, term, reading, meaning, examples, mastered,
			last_reviewed, next_review, ease_factor, interval_days, repetitions,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			kind = excluded.kind,
			level = excluded.level,
			term = excluded.term,
			reading = excluded.reading,
			meaning = excluded.meaning,
			examples = excluded.examples,
			mastered = excluded.mastered,
			last_reviewed = excluded.last_reviewed,
			next_review = excluded.next_review,
			ease_factor = excluded.ease_factor,
			interval_days = excluded.interval_days,
			repetitions = excluded.repetitions,
			updated_at = CURRENT_TIMESTAMP
	`)
	_, err = r.db.ExecContext(ctx, query,
		item.ID,
		string(item.Kind),
		string(item.Level),
		item.Term,
		item.Reading,
		item.Meaning,
		string(examplesJSON),
		item.Mastered,
		lastReviewed,
		nextReview,
		ease,
		interval,
		repetitions,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to save item %s", item.ID)
	}
	return nil
}

// Delete removes an item
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM learnable_items WHERE id = ?"), id)
	if err != nil {
		return errors.Wrapf(err, "failed to delete item %s", id)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.Wrapf(ErrItemNotFound, "id %s", id)
	}
	return nil
}

func (r *ItemRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.LearnableItem, error) {
	var row itemRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get item")
	}
	item, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]models.LearnableItem, error) {
	var rows []itemRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to get items")
	}
	items := make([]models.LearnableItem, 0, len(rows))
	for _, row := range rows {
		item, err := row.toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
