package progress

import (
	"encoding/json"

	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"

	"github.com/example/nihonwa/pkg/models"
)

// StorageKey is the blob key the whole state is saved under
const StorageKey = "nihonwa-storage"

const stateVersion = 1

// ProfileData is everything tracked for one profile
type ProfileData struct {
	LessonProgress []models.LessonProgressRecord `json:"lesson_progress"`
	TotalXP        int                           `json:"total_xp"`
	Progress       []models.LevelProgress        `json:"progress"` // One entry per level
	// Items this profile has mastered, by item id. Review schedules are
	// shared between profiles, mastery is not.
	Mastered map[string]bool `json:"mastered_items"`
}

// State is the persisted document: every profile and its data
type State struct {
	Profiles        []models.UserProfile    `json:"profiles"`
	ActiveProfileID string                  `json:"active_profile_id,omitempty"`
	Data            map[string]*ProfileData `json:"data"`
}

type envelope struct {
	Version int    `json:"version"`
	State   *State `json:"state"`
}

// NewState returns an empty state
func NewState() *State {
	return &State{
		Profiles: []models.UserProfile{},
		Data:     map[string]*ProfileData{},
	}
}

// NewProfileData returns the zero-valued progress of a fresh profile
func NewProfileData() *ProfileData {
	data := &ProfileData{
		LessonProgress: []models.LessonProgressRecord{},
		Progress:       make([]models.LevelProgress, 0, len(models.Levels)),
		Mastered:       map[string]bool{},
	}
	for _, level := range models.Levels {
		data.Progress = append(data.Progress, models.LevelProgress{Level: level})
	}
	return data
}

// Encode serializes the state for the blob store
func Encode(s *State) ([]byte, error) {
	payload, err := json.Marshal(envelope{Version: stateVersion, State: s})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode progress state")
	}
	return payload, nil
}

// Decode parses a payload written by Encode. An empty payload yields an
// empty state. Data without a matching profile is dropped.
func Decode(payload []byte) (*State, error) {
	if len(payload) == 0 {
		return NewState(), nil
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, errors.Wrap(err, "failed to decode progress state")
	}
	if env.Version != stateVersion {
		return nil, errors.Errorf("unsupported progress state version %d", env.Version)
	}

	s := env.State
	if s == nil {
		s = NewState()
	}
	if s.Profiles == nil {
		s.Profiles = []models.UserProfile{}
	}
	if s.Data == nil {
		s.Data = map[string]*ProfileData{}
	}
	for id, data := range s.Data {
		if data == nil || s.profileIndex(id) == -1 {
			delete(s.Data, id)
			continue
		}
		data.normalize()
	}
	if s.ActiveProfileID != "" && s.profileIndex(s.ActiveProfileID) == -1 {
		s.ActiveProfileID = ""
	}
	return s, nil
}

func (s *State) clone() *State {
	return deepcopy.Copy(s).(*State)
}

func (s *State) profileIndex(id string) int {
	for i, p := range s.Profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// dataFor returns the profile's data, creating it on first use
func (s *State) dataFor(id string) *ProfileData {
	data, ok := s.Data[id]
	if !ok || data == nil {
		data = NewProfileData()
		s.Data[id] = data
	}
	return data
}

// normalize fills in slices and levels missing from older documents
func (d *ProfileData) normalize() {
	if d.LessonProgress == nil {
		d.LessonProgress = []models.LessonProgressRecord{}
	}
	if d.Mastered == nil {
		d.Mastered = map[string]bool{}
	}
	for _, level := range models.Levels {
		if d.levelIndex(level) == -1 {
			d.Progress = append(d.Progress, models.LevelProgress{Level: level})
		}
	}
}

func (d *ProfileData) levelIndex(level models.JLPTLevel) int {
	for i, p := range d.Progress {
		if p.Level == level {
			return i
		}
	}
	return -1
}

// level returns a pointer into Progress for level
func (d *ProfileData) level(level models.JLPTLevel) *models.LevelProgress {
	i := d.levelIndex(level)
	if i == -1 {
		d.Progress = append(d.Progress, models.LevelProgress{Level: level})
		i = len(d.Progress) - 1
	}
	return &d.Progress[i]
}

func (d *ProfileData) lessonIndex(id string) int {
	for i, r := range d.LessonProgress {
		if r.LessonID == id {
			return i
		}
	}
	return -1
}
