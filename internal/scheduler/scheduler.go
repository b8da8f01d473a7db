package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"

	"github.com/example/nihonwa/internal/logger"
	"github.com/example/nihonwa/pkg/models"
)

// Notifier sends review reminders
type Notifier interface {
	SendReminder(profile models.UserProfile, due int) error
}

// Source lists profiles and the items due for review
type Source interface {
	Profiles() []models.UserProfile
	DueItems(ctx context.Context, kind models.ItemKind, level models.JLPTLevel, limit int) ([]models.LearnableItem, error)
}

// Config holds the reminder window and batch size
type Config struct {
	StartHour int // Reminders are sent from this hour...
	EndHour   int // ...up to and including this one
	BatchSize int // Upper bound on the count reported per profile
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    Source
	notifier  Notifier
	config    Config
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new scheduler instance
func New(source Source, notifier Notifier, config Config, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		source:    source,
		notifier:  notifier,
		config:    config,
		log:       log,
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start(ctx context.Context) error {
	// Hourly check for profiles with due reviews
	_, err := s.scheduler.Every(1).Hour().Do(func() {
		s.RunCheck(ctx)
	})
	if err != nil {
		return errors.Wrap(err, "failed to schedule reminder job")
	}

	s.scheduler.StartAsync()
	s.log.Info("Reminder scheduler started", "start_hour", s.config.StartHour, "end_hour", s.config.EndHour)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// InWindow reports whether hour lies in the notification window. A window
// whose start is after its end wraps past midnight.
func (s *Scheduler) InWindow(hour int) bool {
	start, end := s.config.StartHour, s.config.EndHour
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}

// RunCheck sends a reminder to every profile with due items and returns the
// number of reminders sent
func (s *Scheduler) RunCheck(ctx context.Context) int {
	hour := s.now().Hour()
	if !s.InWindow(hour) {
		s.log.Debug("Outside notification hours, skipping reminders",
			"hour", hour, "start", s.config.StartHour, "end", s.config.EndHour)
		return 0
	}

	sent := 0
	for _, profile := range s.source.Profiles() {
		ok, err := s.RemindProfile(ctx, profile)
		if err != nil {
			s.log.Error("Failed to send reminder", "profile", profile.ID, "error", err)
			continue
		}
		if ok {
			sent++
		}
	}
	return sent
}

// RemindProfile sends a reminder if the profile's current level has due
// vocabulary or kanji, ignoring the notification window
func (s *Scheduler) RemindProfile(ctx context.Context, profile models.UserProfile) (bool, error) {
	due := 0
	for _, kind := range []models.ItemKind{models.KindVocabulary, models.KindKanji} {
		items, err := s.source.DueItems(ctx, kind, profile.CurrentLevel, 0)
		if err != nil {
			return false, errors.Wrapf(err, "failed to get due %s", kind)
		}
		due += len(items)
	}
	if due == 0 {
		return false, nil
	}

	// Don't report more than one batch
	if s.config.BatchSize > 0 && due > s.config.BatchSize {
		due = s.config.BatchSize
	}
	if err := s.notifier.SendReminder(profile, due); err != nil {
		return false, err
	}
	return true, nil
}
