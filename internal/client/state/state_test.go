package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/civic-directory-backend/internal/announcement"
	"github.com/nekogravitycat/civic-directory-backend/internal/app"
	"github.com/nekogravitycat/civic-directory-backend/internal/client"
	"github.com/nekogravitycat/civic-directory-backend/internal/listing"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/storage"
	"github.com/nekogravitycat/civic-directory-backend/internal/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	container *app.Container
	api       *client.Simulated
}

func newFixture(t *testing.T, cfg client.SimulatedConfig) *fixture {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	c, err := app.NewContainer(app.Config{
		Storage:    store,
		CacheTTL:   time.Minute,
		JWTSecret:  "test-secret",
		JWTTTL:     30 * time.Minute,
		BcryptCost: 4,
	})
	require.NoError(t, err)
	return &fixture{container: c, api: client.NewSimulated(c, cfg)}
}

func (f *fixture) signUp(t *testing.T, phone string, role user.Role) *AuthState {
	t.Helper()
	auth := NewAuthState(f.api)
	req := user.RegisterRequest{Phone: phone, Password: "password123", DisplayName: "Maria", Role: role}
	if role == user.RoleProvider {
		req.Organization = "City Health Office"
	}
	require.NoError(t, auth.Register(context.Background(), req))
	return auth
}

func ids(list []*announcement.Announcement) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

func TestAuthState(t *testing.T) {
	f := newFixture(t, client.SimulatedConfig{})
	ctx := context.Background()

	provider := f.signUp(t, "+639171234567", user.RoleProvider)
	svc, err := f.container.Services.Directory.Create(ctx, provider.Snapshot().User.ID, listing.Input{
		Name:        "Barangay Health Center",
		Description: "Primary care and vaccinations",
		Category:    "health",
		Address:     "12 Rizal Street",
	})
	require.NoError(t, err)

	auth := f.signUp(t, "+639171234568", user.RoleCitizen)
	require.True(t, auth.Snapshot().IsAuthenticated())

	t.Run("Toggle favorite", func(t *testing.T) {
		require.NoError(t, auth.ToggleFavorite(ctx, svc.ID))
		assert.True(t, auth.IsFavorite(svc.ID))
		assert.Equal(t, []string{svc.ID}, auth.Snapshot().User.Favorites)

		require.NoError(t, auth.ToggleFavorite(ctx, svc.ID))
		assert.False(t, auth.IsFavorite(svc.ID))
	})

	t.Run("Update profile", func(t *testing.T) {
		name := "Maria Clara"
		require.NoError(t, auth.UpdateProfile(ctx, user.UpdateProfileRequest{DisplayName: &name}))
		assert.Equal(t, "Maria Clara", auth.Snapshot().User.DisplayName)
	})

	t.Run("Logout", func(t *testing.T) {
		auth.Logout()
		snap := auth.Snapshot()
		assert.False(t, snap.IsAuthenticated())
		assert.Nil(t, snap.User)

		err := auth.ToggleFavorite(ctx, svc.ID)
		assert.ErrorIs(t, err, ErrNotSignedIn)
		assert.Equal(t, ErrNotSignedIn.Error(), auth.Snapshot().Error)
	})

	t.Run("Failed login keeps a message", func(t *testing.T) {
		err := auth.Login(ctx, "+639171234568", "wrong-password")
		assert.ErrorIs(t, err, client.ErrUnauthorized)

		snap := auth.Snapshot()
		assert.False(t, snap.IsAuthenticated())
		assert.False(t, snap.Loading)
		assert.Equal(t, user.ErrInvalidCredentials.Error(), snap.Error)

		require.NoError(t, auth.Login(ctx, "+639171234568", "password123"))
		assert.Empty(t, auth.Snapshot().Error)
	})
}

func TestServicesState(t *testing.T) {
	f := newFixture(t, client.SimulatedConfig{})
	ctx := context.Background()

	provider := f.signUp(t, "+639171234567", user.RoleProvider)
	providerID := provider.Snapshot().User.ID
	for _, in := range []listing.Input{
		{Name: "Health Center", Description: "Vaccinations and checkups", Category: "health", Address: "Rizal Street", Accessible: true},
		{Name: "Business Permits", Description: "Permits issued online", Category: "permits", OnlineAvailable: true},
		{Name: "Transport Office", Description: "Franchise renewals", Category: "transport", Address: "Mabini Avenue", Area: "San Roque"},
	} {
		_, err := f.container.Services.Directory.Create(ctx, providerID, in)
		require.NoError(t, err)
	}

	st := NewServicesState(f.api)
	require.NoError(t, st.Load(ctx))

	snap := st.Snapshot()
	require.Len(t, snap.Services, 3)
	assert.Equal(t, snap.Services, snap.Filtered)

	st.SetSearch(listing.SearchFilter{Query: "PERMIT"})
	filtered := st.Snapshot().Filtered
	require.Len(t, filtered, 1)
	assert.Equal(t, "Business Permits", filtered[0].Name)

	st.SetSearch(listing.SearchFilter{})
	categories := []string{"health", "transport"}
	st.SetRefine(listing.RefineFilter{Categories: categories})
	categories[0] = "permits"
	assert.Len(t, st.Snapshot().Filtered, 2)

	st.SetRefine(listing.RefineFilter{Categories: []string{"health", "transport"}, Locations: []string{"san roque"}})
	filtered = st.Snapshot().Filtered
	require.Len(t, filtered, 1)
	assert.Equal(t, "Transport Office", filtered[0].Name)

	st.ClearFilters()
	assert.Len(t, st.Snapshot().Filtered, 3)

	require.NoError(t, st.Select(ctx, filtered[0].ID))
	assert.Equal(t, "Transport Office", st.Snapshot().Selected.Name)

	err := st.Select(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.NotEmpty(t, st.Snapshot().Error)
}

func TestServicesStateLoadFailure(t *testing.T) {
	f := newFixture(t, client.SimulatedConfig{
		Fail: func(string) error { return errors.New("network unreachable") },
	})
	st := NewServicesState(f.api)

	err := st.Load(context.Background())
	require.Error(t, err)

	snap := st.Snapshot()
	assert.Equal(t, "network unreachable", snap.Error)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Services)
}

func TestAnnouncementsStateLifecycle(t *testing.T) {
	f := newFixture(t, client.SimulatedConfig{})
	ctx := context.Background()
	auth := f.signUp(t, "+639171234567", user.RoleProvider)
	st := NewAnnouncementsState(f.api, auth)

	require.NoError(t, st.LoadPublic(ctx))
	require.NoError(t, st.LoadMine(ctx))

	// assertMatchesBackend checks that the local lists agree with a fresh read.
	assertMatchesBackend := func(t *testing.T) {
		t.Helper()
		public, err := f.api.ListPublicAnnouncements(ctx)
		require.NoError(t, err)
		mine, err := f.api.ListProviderAnnouncements(ctx, auth.Token())
		require.NoError(t, err)

		snap := st.Snapshot()
		assert.Equal(t, ids(public), ids(snap.Public))
		assert.Equal(t, ids(mine), ids(snap.Mine))
	}

	in := client.AnnouncementInput{Title: "Road closure", Content: "Road closure along Rizal Street.", Status: announcement.StatusDraft}

	a, err := st.Create(ctx, in)
	require.NoError(t, err)
	snap := st.Snapshot()
	assert.Contains(t, ids(snap.Mine), a.ID)
	assert.NotContains(t, ids(snap.Public), a.ID)
	assertMatchesBackend(t)

	in.Category = announcement.CategoryTransport
	in.Status = announcement.StatusPublished
	_, err = st.Update(ctx, a.ID, in)
	require.NoError(t, err)
	snap = st.Snapshot()
	assert.Contains(t, ids(snap.Mine), a.ID)
	assert.Contains(t, ids(snap.Public), a.ID)
	assertMatchesBackend(t)

	// Updating a visible record replaces it rather than adding a second entry.
	in.Title = "Road closure extended"
	_, err = st.Update(ctx, a.ID, in)
	require.NoError(t, err)
	snap = st.Snapshot()
	require.Len(t, snap.Public, 1)
	assert.Equal(t, "Road closure extended", snap.Public[0].Title)

	past := time.Now().Add(-time.Hour)
	in.ExpiresAt = &past
	_, err = st.Update(ctx, a.ID, in)
	require.NoError(t, err)
	snap = st.Snapshot()
	assert.Contains(t, ids(snap.Mine), a.ID)
	assert.NotContains(t, ids(snap.Public), a.ID)
	assertMatchesBackend(t)

	before := st.Snapshot()
	_, err = st.Update(ctx, "00000000-0000-0000-0000-000000000000", in)
	assert.ErrorIs(t, err, client.ErrNotFound)
	after := st.Snapshot()
	assert.Equal(t, ids(before.Public), ids(after.Public))
	assert.Equal(t, ids(before.Mine), ids(after.Mine))
	assert.Equal(t, announcement.ErrNotFound.Error(), after.Error)

	require.NoError(t, st.Delete(ctx, a.ID))
	snap = st.Snapshot()
	assert.NotContains(t, ids(snap.Mine), a.ID)
	assert.NotContains(t, ids(snap.Public), a.ID)
	assert.Empty(t, snap.Error)
	assertMatchesBackend(t)
}

func TestAnnouncementsStateRequiresSession(t *testing.T) {
	f := newFixture(t, client.SimulatedConfig{})
	st := NewAnnouncementsState(f.api, NewAuthState(f.api))

	_, err := st.Create(context.Background(), client.AnnouncementInput{Title: "Nope", Content: "Not signed in at all."})
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Empty(t, st.Snapshot().Mine)
}

func TestAbandonedRequestStillApplies(t *testing.T) {
	f := newFixture(t, client.SimulatedConfig{Latency: 20 * time.Millisecond})
	auth := f.signUp(t, "+639171234567", user.RoleProvider)
	st := NewAnnouncementsState(f.api, auth)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, err := st.Create(ctx, client.AnnouncementInput{
		Title:   "Water interruption",
		Content: "No water supply from 9 AM to 3 PM.",
		Status:  announcement.StatusPublished,
	})
	require.NoError(t, err)
	snap := st.Snapshot()
	assert.Contains(t, ids(snap.Mine), a.ID)
	assert.Contains(t, ids(snap.Public), a.ID)
}

func TestAnnouncementsStateConcurrentWrites(t *testing.T) {
	f := newFixture(t, client.SimulatedConfig{Latency: time.Millisecond})
	auth := f.signUp(t, "+639171234567", user.RoleProvider)
	st := NewAnnouncementsState(f.api, auth)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Create(context.Background(), client.AnnouncementInput{
				Title:   "Weekly notice",
				Content: "Office hours are unchanged this week.",
				Status:  announcement.StatusPublished,
			})
			assert.NoError(t, err)
			_ = st.Snapshot()
		}()
	}
	wg.Wait()

	snap := st.Snapshot()
	assert.Len(t, snap.Mine, n)
	assert.Len(t, snap.Public, n)
	assert.False(t, snap.Loading)

	public, err := f.api.ListPublicAnnouncements(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ids(public), ids(snap.Public))
}

func TestPublishedDraftKeepsBackendOrder(t *testing.T) {
	f := newFixture(t, client.SimulatedConfig{})
	ctx := context.Background()
	auth := f.signUp(t, "+639171234567", user.RoleProvider)
	st := NewAnnouncementsState(f.api, auth)

	older, err := st.Create(ctx, client.AnnouncementInput{
		Title:   "Vaccination drive",
		Content: "Free flu shots at the barangay hall.",
		Status:  announcement.StatusDraft,
	})
	require.NoError(t, err)
	newer, err := st.Create(ctx, client.AnnouncementInput{
		Title:   "Road closure",
		Content: "Road closure along Rizal Street.",
		Status:  announcement.StatusPublished,
	})
	require.NoError(t, err)

	_, err = st.Update(ctx, older.ID, client.AnnouncementInput{
		Title:    older.Title,
		Content:  older.Content,
		Category: older.Category,
		Status:   announcement.StatusPublished,
	})
	require.NoError(t, err)

	public, err := f.api.ListPublicAnnouncements(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{newer.ID, older.ID}, ids(public))
	assert.Equal(t, ids(public), ids(st.Snapshot().Public))
}

func TestLoadingCoversEveryPendingRequest(t *testing.T) {
	started := make(chan struct{})
	gate := make(chan struct{})
	f := newFixture(t, client.SimulatedConfig{Fail: func(op string) error {
		if op == "ListProviderAnnouncements" {
			close(started)
			<-gate
		}
		return nil
	}})
	auth := f.signUp(t, "+639171234567", user.RoleProvider)
	st := NewAnnouncementsState(f.api, auth)

	done := make(chan error, 1)
	go func() { done <- st.LoadMine(context.Background()) }()
	<-started

	require.NoError(t, st.LoadPublic(context.Background()))
	assert.True(t, st.Snapshot().Loading)

	close(gate)
	require.NoError(t, <-done)
	assert.False(t, st.Snapshot().Loading)
}
