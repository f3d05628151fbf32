package listing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/cache"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
)

type fakeImages map[string]bool

func (f fakeImages) Exists(_ context.Context, id string) (bool, error) {
	return f[id], nil
}

type countingRepo struct {
	*MemoryRepository
	allCalls int
}

func (r *countingRepo) All(ctx context.Context) ([]*Service, error) {
	r.allCalls++
	return r.MemoryRepository.All(ctx)
}

// gatedRepo takes its All snapshot, then holds it until release is closed.
type gatedRepo struct {
	*MemoryRepository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *gatedRepo) All(ctx context.Context) ([]*Service, error) {
	all, err := r.MemoryRepository.All(ctx)
	r.once.Do(func() {
		close(r.entered)
		<-r.release
	})
	return all, err
}

type failingCache struct{}

func (failingCache) Get(context.Context, string, any) error { return errors.New("connection refused") }
func (failingCache) Set(context.Context, string, any, time.Duration) error {
	return errors.New("connection refused")
}
func (failingCache) Delete(context.Context, ...string) error { return errors.New("connection refused") }

func validInput(name string) Input {
	return Input{
		Name:        name,
		Description: "A service description long enough",
		Category:    "Civil-Registry",
		Address:     "12 Rizal St",
		Area:        "Downtown",
		Phone:       "+63 2 8123-4567",
		Hours: []DayHours{
			{Day: "Monday", Open: "08:00", Close: "17:00"},
			{Day: "sunday", Closed: true, Open: "09:00"},
		},
		Tags: []string{"documents", "<b>psa</b>", ""},
		Guide: []GuideStep{
			{Title: "Fill out the form", Description: "Use black ink", RequiredDocuments: []string{"Valid ID"}},
		},
	}
}

func newTestDirectory(t *testing.T) (Directory, *countingRepo) {
	t.Helper()
	repo := &countingRepo{MemoryRepository: NewMemoryRepository()}
	return NewDirectory(repo, cache.NewMemoryCache(), time.Minute, nil, zap.NewNop()), repo
}

func TestCreateNormalizesInput(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	s, err := d.Create(ctx, "prov-1", validInput("Birth Certificate"))
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "prov-1", s.ProviderID)
	assert.Equal(t, "civil-registry", s.Category)
	assert.Equal(t, "+63281234567", s.Phone)
	assert.Equal(t, []string{"documents", "psa"}, s.Tags)
	assert.Equal(t, "monday", s.Hours[0].Day)
	assert.Empty(t, s.Hours[1].Open)

	got, err := d.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Name, got.Name)
	assert.Equal(t, []string{"Valid ID"}, got.Guide[0].RequiredDocuments)
}

func TestCreateValidation(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Input)
		want   error
	}{
		{"short name", func(in *Input) { in.Name = "ab" }, ErrNameRequired},
		{"short description", func(in *Input) { in.Description = "short" }, ErrDescriptionRequired},
		{"missing category", func(in *Input) { in.Category = " " }, ErrCategoryRequired},
		{"missing address", func(in *Input) { in.Address = "" }, ErrAddressRequired},
		{"bad phone", func(in *Input) { in.Phone = "call us" }, ErrInvalidPhone},
		{"unknown day", func(in *Input) { in.Hours[0].Day = "funday" }, ErrInvalidHours},
		{"duplicate day", func(in *Input) { in.Hours[1] = in.Hours[0] }, ErrInvalidHours},
		{"closes before opening", func(in *Input) { in.Hours[0].Close = "07:00" }, ErrInvalidHours},
		{"bad time", func(in *Input) { in.Hours[0].Open = "8am" }, ErrInvalidHours},
		{"guide without title", func(in *Input) { in.Guide[0].Title = "" }, ErrInvalidGuide},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput("Business Permit")
			tt.mutate(&in)
			_, err := d.Create(ctx, "prov-1", in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("online services need no address", func(t *testing.T) {
		in := validInput("Online Tax Filing")
		in.Address = ""
		in.OnlineAvailable = true
		_, err := d.Create(ctx, "prov-1", in)
		assert.NoError(t, err)
	})
}

func TestImageReferencesAreChecked(t *testing.T) {
	repo := NewMemoryRepository()
	d := NewDirectory(repo, cache.NewMemoryCache(), time.Minute, fakeImages{"img-1": true}, zap.NewNop())
	ctx := context.Background()

	in := validInput("Health Center")
	in.ImageIDs = []string{"img-1"}
	_, err := d.Create(ctx, "prov-1", in)
	require.NoError(t, err)

	in.ImageIDs = []string{"img-1", "img-2"}
	_, err = d.Create(ctx, "prov-1", in)
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestListUsesCacheAndInvalidatesOnWrite(t *testing.T) {
	d, repo := newTestDirectory(t)
	ctx := context.Background()

	a, err := d.Create(ctx, "prov-1", validInput("Birth Certificate"))
	require.NoError(t, err)

	_, total, err := d.List(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	_, _, err = d.List(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.allCalls)

	_, err = d.Create(ctx, "prov-1", validInput("Business Permit"))
	require.NoError(t, err)
	list, total, err := d.List(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, repo.allCalls)
	assert.Equal(t, "Birth Certificate", list[0].Name)

	require.NoError(t, d.Delete(ctx, "prov-1", a.ID))
	list, total, err = d.List(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Business Permit", list[0].Name)
}

func TestWriteDuringCacheFillIsNotLost(t *testing.T) {
	repo := &gatedRepo{
		MemoryRepository: NewMemoryRepository(),
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	d := NewDirectory(repo, cache.NewMemoryCache(), 0, nil, zap.NewNop())
	ctx := context.Background()

	done := make(chan int, 1)
	go func() {
		_, total, err := d.List(ctx, Query{})
		assert.NoError(t, err)
		done <- total
	}()
	<-repo.entered

	_, err := d.Create(ctx, "prov-1", validInput("Birth Certificate"))
	require.NoError(t, err)
	close(repo.release)
	assert.Equal(t, 0, <-done)

	_, total, err := d.List(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestListFallsBackWhenCacheFails(t *testing.T) {
	repo := NewMemoryRepository()
	d := NewDirectory(repo, failingCache{}, time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	_, err := d.Create(ctx, "prov-1", validInput("Birth Certificate"))
	require.NoError(t, err)

	list, total, err := d.List(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}

func TestListFiltersAndPaginates(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	for _, name := range []string{"Alpha Clinic", "Beta Clinic", "Gamma Office"} {
		in := validInput(name)
		in.Featured = name == "Gamma Office"
		_, err := d.Create(ctx, "prov-1", in)
		require.NoError(t, err)
	}

	list, total, err := d.List(ctx, Query{Search: SearchFilter{Query: "clinic"}, ListParams: request.ListParams{Page: 2, PageSize: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Beta Clinic", list[0].Name)

	list, _, err = d.List(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, "Gamma Office", list[0].Name, "featured services come first")

	featured, err := d.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "Gamma Office", featured[0].Name)

	list, total, err = d.List(ctx, Query{FeaturedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Gamma Office", list[0].Name)
}

func TestCategories(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	empty, err := d.Categories(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, c := range []string{"health", "business", "health"} {
		in := validInput("Service " + c)
		in.Category = c
		_, err := d.Create(ctx, "prov-1", in)
		require.NoError(t, err)
	}

	categories, err := d.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"business", "health"}, categories)
}

func TestOwnership(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	s, err := d.Create(ctx, "prov-1", validInput("Birth Certificate"))
	require.NoError(t, err)

	_, err = d.Update(ctx, "prov-2", s.ID, validInput("Hijacked"))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, d.Delete(ctx, "prov-2", s.ID), ErrForbidden)

	updated, err := d.Update(ctx, "prov-1", s.ID, validInput("Birth Certificate Copy"))
	require.NoError(t, err)
	assert.Equal(t, "Birth Certificate Copy", updated.Name)
	assert.Equal(t, s.CreatedAt, updated.CreatedAt)

	mine, err := d.ListByProvider(ctx, "prov-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := d.ListByProvider(ctx, "prov-2")
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestMissingService(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = d.Update(ctx, "prov-1", "missing", validInput("Anything"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, d.Delete(ctx, "prov-1", "missing"), ErrNotFound)

	ok, err := d.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
