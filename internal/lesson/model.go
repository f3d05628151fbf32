package lesson

import (
	"errors"
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
)

var (
	ErrNotFound          = errors.New("lesson not found")
	ErrForbidden         = errors.New("lesson belongs to another provider")
	ErrTitleRequired     = errors.New("title must be at least 3 characters")
	ErrContentRequired   = errors.New("content must be at least 10 characters")
	ErrCategoryRequired  = errors.New("category is required")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidDuration   = errors.New("duration must be between 1 and 600 minutes")
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Difficulties lists every valid difficulty.
var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Lesson is a short educational article about a government process.
type Lesson struct {
	ID              string
	ProviderID      string
	Title           string
	Summary         string
	Content         string
	Category        string
	Difficulty      Difficulty
	DurationMinutes int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Filter narrows lesson listings. Empty fields impose nothing.
type Filter struct {
	Query      string
	Category   string
	Difficulty Difficulty
	request.ListParams
}
