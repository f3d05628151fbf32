package quiz

import (
	"errors"
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/lesson"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
)

var (
	ErrNotFound            = errors.New("quiz not found")
	ErrForbidden           = errors.New("quiz belongs to another provider")
	ErrTitleRequired       = errors.New("title must be at least 3 characters")
	ErrCategoryRequired    = errors.New("category is required")
	ErrInvalidDifficulty   = errors.New("invalid difficulty")
	ErrNoQuestions         = errors.New("a quiz needs at least one question")
	ErrInvalidQuestion     = errors.New("invalid question")
	ErrInvalidPassingScore = errors.New("passing score must be between 0 and 100")
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrAnswerCount         = errors.New("answer count does not match question count")
	ErrInvalidAnswer       = errors.New("answer is out of range")
)

// Unanswered marks a skipped question in a submission.
const Unanswered = -1

const DefaultPassingScore = 70

type Question struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation,omitempty"`
}

type Quiz struct {
	ID           string
	ProviderID   string
	LessonID     *string
	Title        string
	Description  string
	Category     string
	Difficulty   lesson.Difficulty
	Questions    []Question
	PassingScore int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (q *Quiz) clone() *Quiz {
	c := *q
	if q.LessonID != nil {
		id := *q.LessonID
		c.LessonID = &id
	}
	c.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]string(nil), question.Options...)
		c.Questions[i] = question
	}
	return &c
}

// AnswerResult grades one question of a submission.
type AnswerResult struct {
	Selected    int
	Correct     bool
	AnswerIndex int
	Explanation string
}

// Result is the graded outcome of a submission.
type Result struct {
	QuizID  string
	Score   int
	Total   int
	Percent int
	Passed  bool
	Answers []AnswerResult
}

type Filter struct {
	Query      string
	Category   string
	Difficulty lesson.Difficulty
	LessonID   string
	request.ListParams
}
