package lesson

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/sanitize"
)

const (
	minTitleLength   = 3
	minContentLength = 10
	maxDuration      = 600
)

// Input holds every mutable lesson field; updates replace all of them.
type Input struct {
	Title           string
	Summary         string
	Content         string
	Category        string
	Difficulty      Difficulty
	DurationMinutes int
}

type Service interface {
	List(ctx context.Context, filter Filter) ([]*Lesson, int, error)
	ListByProvider(ctx context.Context, providerID string, filter Filter) ([]*Lesson, int, error)
	GetByID(ctx context.Context, id string) (*Lesson, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, providerID string, in Input) (*Lesson, error)
	Update(ctx context.Context, providerID, id string, in Input) (*Lesson, error)
	Delete(ctx context.Context, providerID, id string) error
}

type service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, log: logger, now: time.Now}
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Lesson, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListByProvider(ctx context.Context, providerID string, filter Filter) ([]*Lesson, int, error) {
	return s.repo.ListByProvider(ctx, providerID, filter)
}

func (s *service) GetByID(ctx context.Context, id string) (*Lesson, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *service) Create(ctx context.Context, providerID string, in Input) (*Lesson, error) {
	l := &Lesson{ProviderID: providerID}
	if err := apply(l, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, l, s.now().UTC()); err != nil {
		return nil, err
	}

	s.log.Info("lesson created", zap.String("lesson_id", l.ID), zap.String("provider_id", providerID))
	return l, nil
}

func (s *service) Update(ctx context.Context, providerID, id string, in Input) (*Lesson, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.ProviderID != providerID {
		return nil, ErrForbidden
	}
	if err := apply(l, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l, s.now().UTC()); err != nil {
		return nil, err
	}

	s.log.Info("lesson updated", zap.String("lesson_id", l.ID))
	return l, nil
}

func (s *service) Delete(ctx context.Context, providerID, id string) error {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.ProviderID != providerID {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("lesson deleted", zap.String("lesson_id", id))
	return nil
}

func apply(l *Lesson, in Input) error {
	if in.Difficulty == "" {
		in.Difficulty = DifficultyBeginner
	}

	l.Title = sanitize.PlainText(in.Title)
	l.Summary = sanitize.PlainText(in.Summary)
	l.Content = sanitize.RichText(in.Content)
	l.Category = strings.ToLower(sanitize.PlainText(in.Category))
	l.Difficulty = in.Difficulty
	l.DurationMinutes = in.DurationMinutes

	switch {
	case utf8.RuneCountInString(l.Title) < minTitleLength:
		return ErrTitleRequired
	case utf8.RuneCountInString(l.Content) < minContentLength:
		return ErrContentRequired
	case l.Category == "":
		return ErrCategoryRequired
	case !l.Difficulty.Valid():
		return ErrInvalidDifficulty
	case l.DurationMinutes < 1 || l.DurationMinutes > maxDuration:
		return ErrInvalidDuration
	}
	return nil
}
