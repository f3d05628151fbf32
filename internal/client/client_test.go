package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/civic-directory-backend/internal/announcement"
	"github.com/nekogravitycat/civic-directory-backend/internal/app"
	"github.com/nekogravitycat/civic-directory-backend/internal/listing"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/storage"
	"github.com/nekogravitycat/civic-directory-backend/internal/user"
)

const missingID = "00000000-0000-0000-0000-000000000000"

func init() {
	gin.SetMode(gin.TestMode)
}

func newContainer(t *testing.T) *app.Container {
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
	return c
}

// backends returns a fresh HTTP and a fresh simulated client, each with its
// own container so they can be exercised with the same scenario.
func backends(t *testing.T) map[string]struct {
	api API
	c   *app.Container
} {
	t.Helper()

	httpContainer := newContainer(t)
	srv := httptest.NewServer(httpContainer.Router)
	t.Cleanup(srv.Close)

	simContainer := newContainer(t)

	return map[string]struct {
		api API
		c   *app.Container
	}{
		"http":      {api: NewHTTPClient(srv.URL+"/v1", srv.Client()), c: httpContainer},
		"simulated": {api: NewSimulated(simContainer, SimulatedConfig{}), c: simContainer},
	}
}

func ids(list []*announcement.Announcement) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

func TestAPIContract(t *testing.T) {
	for name, b := range backends(t) {
		api := b.api
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			provider, err := api.Register(ctx, user.RegisterRequest{
				Phone:        "+639171234567",
				Password:     "password123",
				DisplayName:  "Maria",
				Role:         user.RoleProvider,
				Organization: "City Health Office",
			})
			require.NoError(t, err)
			require.NotEmpty(t, provider.Token)
			assert.Equal(t, user.RoleProvider, provider.User.Role)

			citizen, err := api.Register(ctx, user.RegisterRequest{
				Phone:       "+639171234568",
				Password:    "password123",
				DisplayName: "Ana",
			})
			require.NoError(t, err)

			t.Run("Login", func(t *testing.T) {
				s, err := api.Login(ctx, "+63 917 123 4568", "password123")
				require.NoError(t, err)
				assert.Equal(t, citizen.User.ID, s.User.ID)

				_, err = api.Login(ctx, "+639171234568", "wrong-password")
				assert.ErrorIs(t, err, ErrUnauthorized)

				_, err = api.Me(ctx, "not-a-token")
				assert.ErrorIs(t, err, ErrUnauthorized)
			})

			t.Run("Announcement lifecycle", func(t *testing.T) {
				in := AnnouncementInput{Title: "X-ray schedule", Content: "Free chest X-ray every Friday morning.", Status: announcement.StatusDraft}
				a, err := api.CreateAnnouncement(ctx, provider.Token, in)
				require.NoError(t, err)
				assert.Equal(t, "City Health Office", a.AuthorName)

				public, err := api.ListPublicAnnouncements(ctx)
				require.NoError(t, err)
				mine, err := api.ListProviderAnnouncements(ctx, provider.Token)
				require.NoError(t, err)
				assert.NotContains(t, ids(public), a.ID)
				assert.Contains(t, ids(mine), a.ID)

				in.Category = announcement.CategoryHealth
				in.Status = announcement.StatusPublished
				_, err = api.UpdateAnnouncement(ctx, provider.Token, a.ID, in)
				require.NoError(t, err)
				public, err = api.ListPublicAnnouncements(ctx)
				require.NoError(t, err)
				assert.Contains(t, ids(public), a.ID)

				past := time.Now().Add(-time.Hour)
				in.ExpiresAt = &past
				_, err = api.UpdateAnnouncement(ctx, provider.Token, a.ID, in)
				require.NoError(t, err)
				public, err = api.ListPublicAnnouncements(ctx)
				require.NoError(t, err)
				assert.NotContains(t, ids(public), a.ID)

				_, err = api.UpdateAnnouncement(ctx, provider.Token, missingID, in)
				assert.ErrorIs(t, err, ErrNotFound)

				_, err = api.CreateAnnouncement(ctx, citizen.Token, in)
				assert.ErrorIs(t, err, ErrForbidden)

				require.NoError(t, api.DeleteAnnouncement(ctx, provider.Token, a.ID))
				mine, err = api.ListProviderAnnouncements(ctx, provider.Token)
				require.NoError(t, err)
				assert.NotContains(t, ids(mine), a.ID)
				assert.ErrorIs(t, api.DeleteAnnouncement(ctx, provider.Token, a.ID), ErrNotFound)
			})

			t.Run("Services and favorites", func(t *testing.T) {
				svc, err := b.c.Services.Directory.Create(ctx, provider.User.ID, listing.Input{
					Name:        "Barangay Health Center",
					Description: "Primary care and vaccinations",
					Category:    "health",
					Address:     "12 Rizal Street",
				})
				require.NoError(t, err)

				list, err := api.ListServices(ctx)
				require.NoError(t, err)
				require.Len(t, list, 1)
				assert.Equal(t, svc.ID, list[0].ID)

				got, err := api.GetService(ctx, svc.ID)
				require.NoError(t, err)
				assert.Equal(t, "Barangay Health Center", got.Name)

				_, err = api.GetService(ctx, missingID)
				assert.ErrorIs(t, err, ErrNotFound)

				favs, err := api.AddFavorite(ctx, citizen.Token, svc.ID)
				require.NoError(t, err)
				assert.Equal(t, []string{svc.ID}, favs)

				me, err := api.Me(ctx, citizen.Token)
				require.NoError(t, err)
				assert.Equal(t, []string{svc.ID}, me.Favorites)

				favs, err = api.RemoveFavorite(ctx, citizen.Token, svc.ID)
				require.NoError(t, err)
				assert.Empty(t, favs)

				_, err = api.AddFavorite(ctx, citizen.Token, missingID)
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("Update profile", func(t *testing.T) {
				name := "Ana Santos"
				u, err := api.UpdateProfile(ctx, citizen.Token, user.UpdateProfileRequest{DisplayName: &name})
				require.NoError(t, err)
				assert.Equal(t, "Ana Santos", u.DisplayName)
			})
		})
	}
}

func TestSimulatedLatency(t *testing.T) {
	sim := NewSimulated(newContainer(t), SimulatedConfig{Latency: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.ListServices(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatedFailureInjection(t *testing.T) {
	boom := errors.New("network unreachable")
	sim := NewSimulated(newContainer(t), SimulatedConfig{
		Latency: time.Millisecond,
		Fail: func(op string) error {
			if op == "ListPublicAnnouncements" {
				return boom
			}
			return nil
		},
	})

	_, err := sim.ListPublicAnnouncements(context.Background())
	assert.ErrorIs(t, err, boom)

	list, err := sim.ListServices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
