package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nihonwa/pkg/models"
)

type fakeSource struct {
	profiles []models.UserProfile
	due      map[models.JLPTLevel]int
	err      error
}

func (f *fakeSource) Profiles() []models.UserProfile {
	return f.profiles
}

func (f *fakeSource) DueItems(_ context.Context, kind models.ItemKind, level models.JLPTLevel, _ int) ([]models.LearnableItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	if kind != models.KindVocabulary {
		return nil, nil
	}
	return make([]models.LearnableItem, f.due[level]), nil
}

type sentReminder struct {
	profileID string
	due       int
}

type fakeNotifier struct {
	sent []sentReminder
}

func (f *fakeNotifier) SendReminder(profile models.UserProfile, due int) error {
	f.sent = append(f.sent, sentReminder{profile.ID, due})
	return nil
}

func newTestScheduler(source Source, notifier Notifier, hour int) *Scheduler {
	s := New(source, notifier, Config{StartHour: 8, EndHour: 22, BatchSize: 10}, nil)
	s.now = func() time.Time { return time.Date(2026, 1, 10, hour, 30, 0, 0, time.Local) }
	return s
}

func TestRunCheck(t *testing.T) {
	source := &fakeSource{
		profiles: []models.UserProfile{
			{ID: "a", CurrentLevel: models.N5},
			{ID: "b", CurrentLevel: models.N4},
			{ID: "c", CurrentLevel: models.N3},
		},
		due: map[models.JLPTLevel]int{models.N5: 25, models.N4: 3},
	}
	notifier := &fakeNotifier{}

	sent := newTestScheduler(source, notifier, 9).RunCheck(context.Background())
	assert.Equal(t, 2, sent)
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, sentReminder{"a", 10}, notifier.sent[0])
	assert.Equal(t, sentReminder{"b", 3}, notifier.sent[1])
}

func TestRunCheck_OutsideWindow(t *testing.T) {
	source := &fakeSource{
		profiles: []models.UserProfile{{ID: "a", CurrentLevel: models.N5}},
		due:      map[models.JLPTLevel]int{models.N5: 5},
	}
	notifier := &fakeNotifier{}

	assert.Equal(t, 0, newTestScheduler(source, notifier, 23).RunCheck(context.Background()))
	assert.Empty(t, notifier.sent)
}

func TestRunCheck_SourceError(t *testing.T) {
	source := &fakeSource{
		profiles: []models.UserProfile{{ID: "a", CurrentLevel: models.N5}},
		err:      errors.New("db down"),
	}
	notifier := &fakeNotifier{}

	assert.Equal(t, 0, newTestScheduler(source, notifier, 12).RunCheck(context.Background()))
	assert.Empty(t, notifier.sent)
}

func TestInWindow(t *testing.T) {
	s := New(nil, nil, Config{StartHour: 8, EndHour: 22}, nil)
	assert.True(t, s.InWindow(8))
	assert.True(t, s.InWindow(22))
	assert.False(t, s.InWindow(7))
	assert.False(t, s.InWindow(23))

	overnight := New(nil, nil, Config{StartHour: 22, EndHour: 2}, nil)
	assert.True(t, overnight.InWindow(23))
	assert.True(t, overnight.InWindow(1))
	assert.False(t, overnight.InWindow(12))
}
