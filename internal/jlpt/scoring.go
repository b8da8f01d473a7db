// Package jlpt estimates JLPT results from lesson performance.
//
// Scores follow the official scaled bands: N1-N3 report language knowledge
// and reading as separate 60-point sections, while N4-N5 fold reading into a
// single 120-point language knowledge section. Every section has a minimum
// that must be reached independently of the total.
package jlpt

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/example/nihonwa/pkg/models"
)

var (
	// ErrNoQuestions is returned when a lesson score is requested for zero questions
	ErrNoQuestions = errors.New("total questions must be positive")
	// ErrNegativeScore is returned when a section score below zero is aggregated
	ErrNegativeScore = errors.New("section score must not be negative")
)

// Requirements are the passing rules of one level
type Requirements struct {
	TotalPassMark      int
	SectionMinimum     int
	HasSeparateReading bool // false for N4-N5
}

var requirements = map[models.JLPTLevel]Requirements{
	models.N5: {TotalPassMark: 80, SectionMinimum: 19, HasSeparateReading: false},
	models.N4: {TotalPassMark: 90, SectionMinimum: 19, HasSeparateReading: false},
	models.N3: {TotalPassMark: 95, SectionMinimum: 19, HasSeparateReading: true},
	models.N2: {TotalPassMark: 90, SectionMinimum: 19, HasSeparateReading: true},
	models.N1: {TotalPassMark: 100, SectionMinimum: 19, HasSeparateReading: true},
}

// RequirementsFor returns the passing rules for level
func RequirementsFor(level models.JLPTLevel) (Requirements, error) {
	req, ok := requirements[level]
	if !ok {
		return Requirements{}, errors.Wrapf(models.ErrUnknownLevel, "%q", level)
	}
	return req, nil
}

// PercentageToScaled converts a percentage into a score out of maxScore
func PercentageToScaled(percentage float64, maxScore int) int {
	clamped := math.Max(0, math.Min(100, percentage))
	return int(math.Round(clamped / 100 * float64(maxScore)))
}

// SectionMaxScore returns the top score of a section at level
func SectionMaxScore(section models.SectionType, level models.JLPTLevel) (int, error) {
	req, err := RequirementsFor(level)
	if err != nil {
		return 0, err
	}
	if err := checkSection(section); err != nil {
		return 0, err
	}
	if section == models.SectionLanguageKnowledge && !req.HasSeparateReading {
		return 120, nil
	}
	return 60, nil
}

// SectionMinimum returns the minimum passing score of a section at level
func SectionMinimum(section models.SectionType, level models.JLPTLevel) (int, error) {
	req, err := RequirementsFor(level)
	if err != nil {
		return 0, err
	}
	if err := checkSection(section); err != nil {
		return 0, err
	}
	if section == models.SectionLanguageKnowledge && !req.HasSeparateReading {
		return req.SectionMinimum * 2, nil
	}
	return req.SectionMinimum, nil
}

// SectionName returns the display name of a section at level
func SectionName(section models.SectionType, level models.JLPTLevel) (string, error) {
	req, err := RequirementsFor(level)
	if err != nil {
		return "", err
	}
	switch section {
	case models.SectionLanguageKnowledge:
		if req.HasSeparateReading {
			return "Language Knowledge (Vocabulary/Grammar)", nil
		}
		return "Language Knowledge (Vocabulary/Grammar/Reading)", nil
	case models.SectionReading:
		return "Reading", nil
	case models.SectionListening:
		return "Listening", nil
	}
	return "", errors.Wrapf(models.ErrUnknownSection, "%q", section)
}

// LessonScore converts a lesson result into a scaled section score
func LessonScore(correct, total int, section models.SectionType, level models.JLPTLevel) (int, error) {
	if total <= 0 {
		return 0, errors.Wrapf(ErrNoQuestions, "got %d", total)
	}
	maxScore, err := SectionMaxScore(section, level)
	if err != nil {
		return 0, err
	}
	percentage := float64(correct) / float64(total) * 100
	return PercentageToScaled(percentage, maxScore), nil
}

// SectionScore is one completed lesson's contribution
type SectionScore struct {
	SectionType models.SectionType
	Score       int
}

// SectionsStatus reports which sections reach their minimum
type SectionsStatus struct {
	LanguageKnowledge bool
	Reading           bool
}

// Breakdown explains a result
type Breakdown struct {
	TotalRequired  int
	SectionMinimum int
	SectionsStatus SectionsStatus
}

// Result is an estimated JLPT score
type Result struct {
	Total             int
	LanguageKnowledge int
	Reading           int
	Listening         int
	Passed            bool
	SectionsPassed    bool
	Breakdown         Breakdown
}

// EstimatedScore averages lesson scores per section and applies the level's
// passing rules. Listening scores are accepted but not counted: no lesson
// produces them yet.
func EstimatedScore(scores []SectionScore, level models.JLPTLevel) (Result, error) {
	req, err := RequirementsFor(level)
	if err != nil {
		return Result{}, err
	}

	var knowledge, reading []int
	for _, s := range scores {
		if s.Score < 0 {
			return Result{}, errors.Wrapf(ErrNegativeScore, "%s: %d", s.SectionType, s.Score)
		}
		switch s.SectionType {
		case models.SectionLanguageKnowledge:
			knowledge = append(knowledge, s.Score)
		case models.SectionReading:
			reading = append(reading, s.Score)
		case models.SectionListening:
		default:
			return Result{}, errors.Wrapf(models.ErrUnknownSection, "%q", s.SectionType)
		}
	}

	avgKnowledge := average(knowledge)
	avgReading := 0
	if req.HasSeparateReading {
		avgReading = average(reading)
	}

	status := SectionsStatus{Reading: true}
	if req.HasSeparateReading {
		status.LanguageKnowledge = avgKnowledge >= req.SectionMinimum
		status.Reading = avgReading >= req.SectionMinimum
	} else {
		status.LanguageKnowledge = avgKnowledge >= req.SectionMinimum*2
	}

	total := avgKnowledge + avgReading
	sectionsPassed := status.LanguageKnowledge && status.Reading

	return Result{
		Total:             total,
		LanguageKnowledge: avgKnowledge,
		Reading:           avgReading,
		Passed:            total >= req.TotalPassMark && sectionsPassed,
		SectionsPassed:    sectionsPassed,
		Breakdown: Breakdown{
			TotalRequired:  req.TotalPassMark,
			SectionMinimum: req.SectionMinimum,
			SectionsStatus: status,
		},
	}, nil
}

// Estimate converts the result into the cached progress form
func (r Result) Estimate(at time.Time) models.EstimatedJLPTScore {
	return models.EstimatedJLPTScore{
		Total:             r.Total,
		LanguageKnowledge: r.LanguageKnowledge,
		Reading:           r.Reading,
		Listening:         r.Listening,
		Passed:            r.Passed,
		LastUpdated:       at,
	}
}

func average(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}

func checkSection(section models.SectionType) error {
	switch section {
	case models.SectionLanguageKnowledge, models.SectionReading, models.SectionListening:
		return nil
	}
	return errors.Wrapf(models.ErrUnknownSection, "%q", section)
}
