package listing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/cache"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/sanitize"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/validation"
)

const (
	minNameLength        = 3
	minDescriptionLength = 10

	allServicesKey = "services:all"
)

var ErrImageNotFound = errors.New("image not found")

// Input carries every mutable field of a service listing.
type Input struct {
	Name            string
	Description     string
	LongDescription string
	Category        string
	Address         string
	Area            string
	Phone           string
	Email           string
	Website         string
	Hours           []DayHours
	Requirements    []string
	Tags            []string
	Featured        bool
	Accessible      bool
	OnlineAvailable bool
	Guide           []GuideStep
	ImageIDs        []string
}

// Query selects a page of the directory.
type Query struct {
	Search       SearchFilter
	Refine       RefineFilter
	FeaturedOnly bool
	request.ListParams
}

// ImageChecker reports whether an uploaded image exists.
type ImageChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Directory is the service directory use-case layer.
type Directory interface {
	List(ctx context.Context, q Query) ([]*Service, int, error)
	Featured(ctx context.Context) ([]*Service, error)
	Categories(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, id string) (*Service, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListByProvider(ctx context.Context, providerID string) ([]*Service, error)
	Create(ctx context.Context, providerID string, in Input) (*Service, error)
	Update(ctx context.Context, providerID, id string, in Input) (*Service, error)
	Delete(ctx context.Context, providerID, id string) error
}

type directory struct {
	repo   Repository
	cache  cache.Cache
	ttl    time.Duration
	images ImageChecker
	log    *zap.Logger
	now    func() time.Time

	// gen counts invalidations; a cache fill that overlaps one is discarded.
	gen atomic.Uint64
}

// NewDirectory builds the directory. images may be nil, in which case image IDs are not checked.
func NewDirectory(repo Repository, c cache.Cache, ttl time.Duration, images ImageChecker, logger *zap.Logger) Directory {
	return &directory{repo: repo, cache: c, ttl: ttl, images: images, log: logger, now: time.Now}
}

func (d *directory) List(ctx context.Context, q Query) ([]*Service, int, error) {
	all, err := d.all(ctx)
	if err != nil {
		return nil, 0, err
	}

	filtered := Apply(all, q.Search, q.Refine)
	if q.FeaturedOnly {
		filtered = featured(filtered)
	}
	page, total := request.Paginate(filtered, q.ListParams)
	return page, total, nil
}

func (d *directory) Featured(ctx context.Context) ([]*Service, error) {
	all, err := d.all(ctx)
	if err != nil {
		return nil, err
	}
	return featured(all), nil
}

func (d *directory) Categories(ctx context.Context) ([]string, error) {
	all, err := d.all(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	categories := []string{}
	for _, s := range all {
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}
		categories = append(categories, s.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (d *directory) GetByID(ctx context.Context, id string) (*Service, error) {
	return d.repo.GetByID(ctx, id)
}

func (d *directory) Exists(ctx context.Context, id string) (bool, error) {
	_, err := d.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *directory) ListByProvider(ctx context.Context, providerID string) ([]*Service, error) {
	return d.repo.ListByProvider(ctx, providerID)
}

func (d *directory) Create(ctx context.Context, providerID string, in Input) (*Service, error) {
	s := &Service{ProviderID: providerID}
	apply(s, in)
	if err := d.validate(ctx, s); err != nil {
		return nil, err
	}

	if err := d.repo.Create(ctx, s, d.now().UTC()); err != nil {
		return nil, err
	}
	d.invalidate(ctx)

	d.log.Info("service created", zap.String("service_id", s.ID), zap.String("provider_id", providerID))
	return s, nil
}

func (d *directory) Update(ctx context.Context, providerID, id string, in Input) (*Service, error) {
	s, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.ProviderID != providerID {
		return nil, ErrForbidden
	}

	apply(s, in)
	if err := d.validate(ctx, s); err != nil {
		return nil, err
	}

	if err := d.repo.Update(ctx, s, d.now().UTC()); err != nil {
		return nil, err
	}
	d.invalidate(ctx)

	d.log.Info("service updated", zap.String("service_id", s.ID))
	return s, nil
}

func (d *directory) Delete(ctx context.Context, providerID, id string) error {
	s, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s.ProviderID != providerID {
		return ErrForbidden
	}
	if err := d.repo.Delete(ctx, id); err != nil {
		return err
	}
	d.invalidate(ctx)

	d.log.Info("service deleted", zap.String("service_id", id))
	return nil
}

// all returns the whole directory, served from the cache when possible.
// Cache failures are logged and fall through to the repository.
func (d *directory) all(ctx context.Context) ([]*Service, error) {
	var cached []*Service
	err := d.cache.Get(ctx, allServicesKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		d.log.Warn("read service cache failed", zap.Error(err))
	}

	gen := d.gen.Load()
	all, err := d.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	if d.gen.Load() != gen {
		return all, nil
	}
	if err := d.cache.Set(ctx, allServicesKey, all, d.ttl); err != nil {
		d.log.Warn("write service cache failed", zap.Error(err))
	}
	// A write that landed between the check and Set may have been overwritten.
	if d.gen.Load() != gen {
		d.drop(ctx)
	}
	return all, nil
}

// invalidate must run after the write it follows has been committed.
func (d *directory) invalidate(ctx context.Context) {
	d.gen.Add(1)
	d.drop(ctx)
}

func (d *directory) drop(ctx context.Context) {
	if err := d.cache.Delete(ctx, allServicesKey); err != nil {
		d.log.Error("invalidate service cache failed", zap.Error(err))
	}
}

func (d *directory) validate(ctx context.Context, s *Service) error {
	if utf8.RuneCountInString(s.Name) < minNameLength {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(s.Description) < minDescriptionLength {
		return ErrDescriptionRequired
	}
	if s.Category == "" {
		return ErrCategoryRequired
	}
	if s.Address == "" && !s.OnlineAvailable {
		return ErrAddressRequired
	}
	if s.Phone != "" && !validation.IsPhone(s.Phone) {
		return ErrInvalidPhone
	}
	if err := validateHours(s.Hours); err != nil {
		return err
	}
	for _, step := range s.Guide {
		if step.Title == "" {
			return ErrInvalidGuide
		}
	}

	if d.images != nil {
		for _, id := range s.ImageIDs {
			ok, err := d.images.Exists(ctx, id)
			if err != nil {
				return fmt.Errorf("check image %s: %w", id, err)
			}
			if !ok {
				return ErrImageNotFound
			}
		}
	}
	return nil
}

func validateHours(hours []DayHours) error {
	seen := make(map[string]bool, len(hours))
	for _, h := range hours {
		if !isWeekday(h.Day) || seen[h.Day] {
			return fmt.Errorf("%w: day %q", ErrInvalidHours, h.Day)
		}
		seen[h.Day] = true
		if h.Closed {
			continue
		}

		open, err := time.Parse("15:04", h.Open)
		if err != nil {
			return fmt.Errorf("%w: open time %q", ErrInvalidHours, h.Open)
		}
		closing, err := time.Parse("15:04", h.Close)
		if err != nil {
			return fmt.Errorf("%w: close time %q", ErrInvalidHours, h.Close)
		}
		if !open.Before(closing) {
			return fmt.Errorf("%w: %s opens after it closes", ErrInvalidHours, h.Day)
		}
	}
	return nil
}

func isWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// apply copies sanitized input onto s.
func apply(s *Service, in Input) {
	s.Name = sanitize.PlainText(in.Name)
	s.Description = sanitize.PlainText(in.Description)
	s.LongDescription = sanitize.RichText(in.LongDescription)
	s.Category = strings.ToLower(sanitize.PlainText(in.Category))
	s.Address = sanitize.PlainText(in.Address)
	s.Area = sanitize.PlainText(in.Area)
	s.Phone = validation.NormalizePhone(in.Phone)
	s.Email = strings.TrimSpace(in.Email)
	s.Website = strings.TrimSpace(in.Website)
	s.Requirements = sanitize.PlainTexts(in.Requirements)
	s.Tags = sanitize.PlainTexts(in.Tags)
	s.Featured = in.Featured
	s.Accessible = in.Accessible
	s.OnlineAvailable = in.OnlineAvailable
	s.ImageIDs = append([]string{}, in.ImageIDs...)

	s.Hours = make([]DayHours, 0, len(in.Hours))
	for _, h := range in.Hours {
		h.Day = strings.ToLower(strings.TrimSpace(h.Day))
		if h.Closed {
			h.Open, h.Close = "", ""
		}
		s.Hours = append(s.Hours, h)
	}

	s.Guide = make([]GuideStep, 0, len(in.Guide))
	for _, g := range in.Guide {
		s.Guide = append(s.Guide, GuideStep{
			Title:             sanitize.PlainText(g.Title),
			Description:       sanitize.PlainText(g.Description),
			Tips:              sanitize.PlainTexts(g.Tips),
			RequiredDocuments: sanitize.PlainTexts(g.RequiredDocuments),
		})
	}
}

func featured(services []*Service) []*Service {
	out := make([]*Service, 0, len(services))
	for _, s := range services {
		if s.Featured {
			out = append(out, s)
		}
	}
	return out
}
