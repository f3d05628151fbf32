package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/lesson"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/sanitize"
)

const (
	minTitleLength = 3
	minOptions     = 2
	maxOptions     = 6
)

// Input replaces every mutable field of a quiz. A nil PassingScore uses DefaultPassingScore.
type Input struct {
	LessonID     *string
	Title        string
	Description  string
	Category     string
	Difficulty   lesson.Difficulty
	Questions    []Question
	PassingScore *int
}

// LessonChecker verifies that a referenced lesson exists.
type LessonChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service interface {
	List(ctx context.Context, filter Filter) ([]*Quiz, int, error)
	ListByProvider(ctx context.Context, providerID string, filter Filter) ([]*Quiz, int, error)
	GetByID(ctx context.Context, id string) (*Quiz, error)
	Create(ctx context.Context, providerID string, in Input) (*Quiz, error)
	Update(ctx context.Context, providerID, id string, in Input) (*Quiz, error)
	Delete(ctx context.Context, providerID, id string) error
	Submit(ctx context.Context, id string, answers []int) (*Result, error)
}

type service struct {
	repo    Repository
	lessons LessonChecker
	log     *zap.Logger
	now     func() time.Time
}

func NewService(repo Repository, lessons LessonChecker, logger *zap.Logger) Service {
	return &service{repo: repo, lessons: lessons, log: logger, now: time.Now}
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Quiz, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListByProvider(ctx context.Context, providerID string, filter Filter) ([]*Quiz, int, error) {
	return s.repo.ListByProvider(ctx, providerID, filter)
}

func (s *service) GetByID(ctx context.Context, id string) (*Quiz, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, providerID string, in Input) (*Quiz, error) {
	q := &Quiz{ProviderID: providerID}
	if err := s.apply(ctx, q, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, q, s.now().UTC()); err != nil {
		return nil, err
	}

	s.log.Info("quiz created",
		zap.String("quiz_id", q.ID),
		zap.String("provider_id", providerID),
		zap.Int("questions", len(q.Questions)),
	)
	return q, nil
}

func (s *service) Update(ctx context.Context, providerID, id string, in Input) (*Quiz, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.ProviderID != providerID {
		return nil, ErrForbidden
	}
	if err := s.apply(ctx, q, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, q, s.now().UTC()); err != nil {
		return nil, err
	}

	s.log.Info("quiz updated", zap.String("quiz_id", q.ID))
	return q, nil
}

func (s *service) Delete(ctx context.Context, providerID, id string) error {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if q.ProviderID != providerID {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("quiz deleted", zap.String("quiz_id", id))
	return nil
}

func (s *service) Submit(ctx context.Context, id string, answers []int) (*Result, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := Grade(q, answers)
	if err != nil {
		return nil, err
	}

	s.log.Debug("quiz submitted",
		zap.String("quiz_id", id),
		zap.Int("score", res.Score),
		zap.Int("total", res.Total),
		zap.Bool("passed", res.Passed),
	)
	return res, nil
}

func (s *service) apply(ctx context.Context, q *Quiz, in Input) error {
	if in.Difficulty == "" {
		in.Difficulty = lesson.DifficultyBeginner
	}
	passing := DefaultPassingScore
	if in.PassingScore != nil {
		passing = *in.PassingScore
	}

	q.Title = sanitize.PlainText(in.Title)
	q.Description = sanitize.PlainText(in.Description)
	q.Category = strings.ToLower(sanitize.PlainText(in.Category))
	q.Difficulty = in.Difficulty
	q.PassingScore = passing
	q.LessonID = nil
	if in.LessonID != nil && *in.LessonID != "" {
		id := *in.LessonID
		q.LessonID = &id
	}

	q.Questions = make([]Question, 0, len(in.Questions))
	for _, question := range in.Questions {
		// Options are not compacted: AnswerIndex refers to their positions.
		options := make([]string, len(question.Options))
		for i, o := range question.Options {
			options[i] = sanitize.PlainText(o)
		}
		q.Questions = append(q.Questions, Question{
			Prompt:      sanitize.PlainText(question.Prompt),
			Options:     options,
			AnswerIndex: question.AnswerIndex,
			Explanation: sanitize.PlainText(question.Explanation),
		})
	}

	if err := validate(q); err != nil {
		return err
	}

	if q.LessonID != nil && s.lessons != nil {
		ok, err := s.lessons.Exists(ctx, *q.LessonID)
		if err != nil {
			return fmt.Errorf("check lesson: %w", err)
		}
		if !ok {
			return ErrLessonNotFound
		}
	}
	return nil
}

func validate(q *Quiz) error {
	if utf8.RuneCountInString(q.Title) < minTitleLength {
		return ErrTitleRequired
	}
	if q.Category == "" {
		return ErrCategoryRequired
	}
	if !q.Difficulty.Valid() {
		return ErrInvalidDifficulty
	}
	if q.PassingScore < 0 || q.PassingScore > 100 {
		return ErrInvalidPassingScore
	}
	if len(q.Questions) == 0 {
		return ErrNoQuestions
	}
	for i, question := range q.Questions {
		switch {
		case question.Prompt == "":
			return fmt.Errorf("%w %d: prompt is required", ErrInvalidQuestion, i+1)
		case len(question.Options) < minOptions || len(question.Options) > maxOptions:
			return fmt.Errorf("%w %d: needs %d to %d options", ErrInvalidQuestion, i+1, minOptions, maxOptions)
		case question.AnswerIndex < 0 || question.AnswerIndex >= len(question.Options):
			return fmt.Errorf("%w %d: answer must reference an option", ErrInvalidQuestion, i+1)
		}
		for _, o := range question.Options {
			if o == "" {
				return fmt.Errorf("%w %d: options cannot be blank", ErrInvalidQuestion, i+1)
			}
		}
	}
	return nil
}
