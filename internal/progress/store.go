// Package progress owns per-profile learning progress: lesson records, XP,
// level counters and cached JLPT estimates. Every mutation writes the whole
// state through a BlobStore before it becomes visible to readers.
package progress

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"

	"github.com/example/nihonwa/internal/logger"
	"github.com/example/nihonwa/internal/spaced_repetition"
	"github.com/example/nihonwa/pkg/models"
)

var (
	// ErrNoActiveProfile is returned by operations that need an active profile
	ErrNoActiveProfile = errors.New("no active profile")
	// ErrProfileNotFound is returned for unknown profile IDs
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists is returned when creating a profile with a taken ID
	ErrProfileExists = errors.New("profile already exists")
	// ErrInvalidProfile is returned for profiles without a name or with a bad level
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrNoItemStore is returned by item operations on a store built without one
	ErrNoItemStore = errors.New("no item store configured")
)

// PersistError reports that the state could not be written. The in-memory
// state is unchanged when it is returned.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return "failed to persist progress: " + e.Err.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// BlobStore is a durable string-keyed blob store
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte) error
	Remove(ctx context.Context, key string) error
}

// ItemStore holds learnable items
type ItemStore interface {
	Get(ctx context.Context, id string) (*models.LearnableItem, error)
	GetByLevel(ctx context.Context, kind models.ItemKind, level models.JLPTLevel) ([]models.LearnableItem, error)
	Put(ctx context.Context, item *models.LearnableItem) error
}

// Store is the profile-scoped progress store. It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	state *State

	blobs BlobStore
	items ItemStore
	sm2   *spaced_repetition.SM2
	log   *logger.Logger
	now   func() time.Time
	key   string
}

// Option configures a Store
type Option func(*Store)

// WithItemStore enables item reviews
func WithItemStore(items ItemStore) Option {
	return func(s *Store) { s.items = items }
}

// WithClock overrides time.Now for timestamps and review scheduling
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithScheduler replaces the default SM-2 parameters
func WithScheduler(sm2 *spaced_repetition.SM2) Option {
	return func(s *Store) { s.sm2 = sm2 }
}

// WithStorageKey stores the state under a key other than StorageKey
func WithStorageKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New loads the saved state from blobs and returns a ready store
func New(ctx context.Context, blobs BlobStore, log *logger.Logger, opts ...Option) (*Store, error) {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Store{
		blobs: blobs,
		log:   log,
		now:   time.Now,
		key:   StorageKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	sm2 := spaced_repetition.NewSM2()
	if s.sm2 != nil {
		sm2 = new(spaced_repetition.SM2)
		*sm2 = *s.sm2
	}
	sm2.Now = s.now
	s.sm2 = sm2

	payload, err := blobs.Get(ctx, s.key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load progress state")
	}
	state, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	s.state = state

	s.log.Debug("Progress state loaded", "profiles", len(state.Profiles), "active", state.ActiveProfileID)
	return s, nil
}

// update runs fn on a copy of the state and swaps it in once persisted
func (s *Store) update(ctx context.Context, fn func(next *State) error) error {
	next := s.state.clone()
	if err := fn(next); err != nil {
		return err
	}
	return s.commit(ctx, next)
}

// updateActive is update scoped to the active profile's data
func (s *Store) updateActive(ctx context.Context, op string, fn func(next *State, data *ProfileData) error) error {
	id := s.state.ActiveProfileID
	if id == "" {
		s.log.Warn("Ignoring operation without an active profile", "op", op)
		return ErrNoActiveProfile
	}
	return s.update(ctx, func(next *State) error {
		return fn(next, next.dataFor(id))
	})
}

func (s *Store) commit(ctx context.Context, next *State) error {
	payload, err := Encode(next)
	if err != nil {
		return &PersistError{Err: err}
	}
	if err := s.blobs.Set(ctx, s.key, payload); err != nil {
		s.log.Error("Failed to persist progress state", "error", err)
		return &PersistError{Err: err}
	}
	s.state = next
	return nil
}

// activeData returns the active profile's data or nil when there is none yet
func (s *Store) activeData() *ProfileData {
	if s.state.ActiveProfileID == "" {
		return nil
	}
	return s.state.Data[s.state.ActiveProfileID]
}

// CreateProfile registers a profile. An empty ID is replaced by a new UUID,
// an empty level defaults to N5 and zero timestamps are set to now.
func (s *Store) CreateProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return models.UserProfile{}, errors.Wrap(ErrInvalidProfile, "name is required")
	}
	if profile.CurrentLevel == "" {
		profile.CurrentLevel = models.N5
	}
	if !profile.CurrentLevel.Valid() {
		return models.UserProfile{}, errors.Wrapf(ErrInvalidProfile, "level %q", profile.CurrentLevel)
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.LastActive.IsZero() {
		profile.LastActive = now
	}

	err := s.update(ctx, func(next *State) error {
		if next.profileIndex(profile.ID) != -1 {
			return errors.Wrapf(ErrProfileExists, "id %s", profile.ID)
		}
		next.Profiles = append(next.Profiles, profile)
		return nil
	})
	if err != nil {
		return models.UserProfile{}, err
	}

	s.log.Info("Profile created", "profile", profile.ID, "name", profile.Name)
	return profile, nil
}

// SetActiveProfile switches the active profile; "" clears it
func (s *Store) SetActiveProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.update(ctx, func(next *State) error {
		if id == "" {
			next.ActiveProfileID = ""
			return nil
		}
		i := next.profileIndex(id)
		if i == -1 {
			return errors.Wrapf(ErrProfileNotFound, "id %s", id)
		}
		next.ActiveProfileID = id
		next.Profiles[i].LastActive = s.now()
		next.dataFor(id)
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug("Active profile changed", "profile", id)
	return nil
}

// UpdateProfile changes a profile's name and current level
func (s *Store) UpdateProfile(ctx context.Context, id, name string, level models.JLPTLevel) (models.UserProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.UserProfile{}, errors.Wrap(ErrInvalidProfile, "name is required")
	}
	if !level.Valid() {
		return models.UserProfile{}, errors.Wrapf(ErrInvalidProfile, "level %q", level)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated models.UserProfile
	err := s.update(ctx, func(next *State) error {
		i := next.profileIndex(id)
		if i == -1 {
			return errors.Wrapf(ErrProfileNotFound, "id %s", id)
		}
		next.Profiles[i].Name = name
		next.Profiles[i].CurrentLevel = level
		updated = next.Profiles[i]
		return nil
	})
	return updated, err
}

// DeleteProfile removes a profile and its data, clearing the active
// pointer if it was active
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.update(ctx, func(next *State) error {
		i := next.profileIndex(id)
		if i == -1 {
			return errors.Wrapf(ErrProfileNotFound, "id %s", id)
		}
		next.Profiles = append(next.Profiles[:i], next.Profiles[i+1:]...)
		delete(next.Data, id)
		if next.ActiveProfileID == id {
			next.ActiveProfileID = ""
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("Profile deleted", "profile", id)
	return nil
}

// Profiles returns every registered profile
func (s *Store) Profiles() []models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := make([]models.UserProfile, len(s.state.Profiles))
	copy(profiles, s.state.Profiles)
	return profiles
}

// Profile returns a profile by ID
func (s *Store) Profile(id string) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.profileIndex(id)
	if i == -1 {
		return models.UserProfile{}, errors.Wrapf(ErrProfileNotFound, "id %s", id)
	}
	return s.state.Profiles[i], nil
}

// ActiveProfile returns the active profile, if any
func (s *Store) ActiveProfile() (models.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.profileIndex(s.state.ActiveProfileID)
	if s.state.ActiveProfileID == "" || i == -1 {
		return models.UserProfile{}, false
	}
	return s.state.Profiles[i], true
}

// Progress returns the active profile's per-level progress, or zero
// defaults when no profile is active
func (s *Store) Progress() []models.LevelProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.activeData()
	if data == nil {
		return NewProfileData().Progress
	}
	return deepcopy.Copy(data.Progress).([]models.LevelProgress)
}

// LevelProgress returns the active profile's progress at one level
func (s *Store) LevelProgress(level models.JLPTLevel) models.LevelProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.activeData()
	if data == nil {
		return models.LevelProgress{Level: level}
	}
	i := data.levelIndex(level)
	if i == -1 {
		return models.LevelProgress{Level: level}
	}
	return deepcopy.Copy(data.Progress[i]).(models.LevelProgress)
}

// LessonProgress returns the active profile's lesson records
func (s *Store) LessonProgress() []models.LessonProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.activeData()
	if data == nil {
		return []models.LessonProgressRecord{}
	}
	records := make([]models.LessonProgressRecord, len(data.LessonProgress))
	copy(records, data.LessonProgress)
	return records
}

// Lesson returns the active profile's record for one lesson
func (s *Store) Lesson(lessonID string) (models.LessonProgressRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.activeData()
	if data == nil {
		return models.LessonProgressRecord{}, false
	}
	i := data.lessonIndex(lessonID)
	if i == -1 {
		return models.LessonProgressRecord{}, false
	}
	return data.LessonProgress[i], true
}

// TotalXP returns the active profile's XP total
func (s *Store) TotalXP() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.activeData()
	if data == nil {
		return 0
	}
	return data.TotalXP
}

// Snapshot returns a copy of the whole state
func (s *Store) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}
