package app

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	listingHttp "github.com/nekogravitycat/civic-directory-backend/internal/listing/http"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/response"
	userHttp "github.com/nekogravitycat/civic-directory-backend/internal/user/http"
)

func (a *testApp) createService(t *testing.T, token string, body listingHttp.ServiceBody) listingHttp.Response {
	t.Helper()
	w := a.executeRequest(http.MethodPost, "/v1/services", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[listingHttp.Response](t, w)
}

func serviceNames(t *testing.T, a *testApp, path string) []string {
	t.Helper()
	w := a.executeRequest(http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[response.PageResponse[listingHttp.Response]](t, w)
	names := make([]string, 0, len(page.Items))
	for _, s := range page.Items {
		names = append(names, s.Name)
	}
	return names
}

func TestServiceDirectory(t *testing.T) {
	a := newTestApp(t)
	providerToken, _ := a.register(t, "+639171234567", "Maria", "service-provider", "City Health Office")
	otherToken, _ := a.register(t, "+639171234568", "Jose", "service-provider", "Transport Office")
	citizenToken, _ := a.register(t, "+639171234569", "Ana", "citizen", "")

	clinic := a.createService(t, providerToken, listingHttp.ServiceBody{
		Name:        "Barangay Health Center",
		Description: "Primary care and free vaccinations",
		Category:    "Health",
		Address:     "12 Rizal Street",
		Area:        "Poblacion",
		Phone:       "+63 2 8123 4567",
		Tags:        []string{"vaccine", "clinic"},
		Accessible:  true,
		Hours: []listingHttp.DayHoursBody{
			{Day: "monday", Open: "08:00", Close: "17:00"},
			{Day: "sunday", Closed: true},
		},
		Guide: []listingHttp.GuideStepBody{
			{Title: "Bring a valid ID", RequiredDocuments: []string{"Barangay ID"}},
		},
	})
	a.createService(t, providerToken, listingHttp.ServiceBody{
		Name:            "Online Business Permit",
		Description:     "Apply for business permits from home",
		Category:        "permits",
		OnlineAvailable: true,
		Featured:        true,
	})
	a.createService(t, otherToken, listingHttp.ServiceBody{
		Name:        "Jeepney Route Office",
		Description: "Route information and franchise renewals",
		Category:    "transport",
		Address:     "88 Mabini Avenue",
		Area:        "San Roque",
	})

	t.Run("Create normalizes input", func(t *testing.T) {
		assert.Equal(t, "health", clinic.Category)
		assert.Equal(t, "+63281234567", clinic.Phone)
		assert.Len(t, clinic.Hours, 2)
		assert.Equal(t, []string{}, clinic.ImageURLs)
	})

	t.Run("Featured first", func(t *testing.T) {
		names := serviceNames(t, a, "/v1/services")
		require.Len(t, names, 3)
		assert.Equal(t, "Online Business Permit", names[0])
		assert.Equal(t, []string{"Online Business Permit"}, serviceNames(t, a, "/v1/services?featured=true"))

		w := a.executeRequest(http.MethodGet, "/v1/services/featured", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		featured := decode[struct {
			Items []listingHttp.Response `json:"items"`
		}](t, w)
		require.Len(t, featured.Items, 1)
		assert.True(t, featured.Items[0].Featured)
	})

	t.Run("Filters", func(t *testing.T) {
		assert.Equal(t, []string{"Barangay Health Center"}, serviceNames(t, a, "/v1/services?q=VACCINE"))
		assert.Equal(t, []string{"Jeepney Route Office"}, serviceNames(t, a, "/v1/services?location=san+roque"))
		assert.Equal(t, []string{"Barangay Health Center"}, serviceNames(t, a, "/v1/services?category=health"))
		assert.ElementsMatch(t,
			[]string{"Barangay Health Center", "Jeepney Route Office"},
			serviceNames(t, a, "/v1/services?categories=health,transport"))
		assert.Equal(t, []string{"Barangay Health Center"}, serviceNames(t, a, "/v1/services?accessible=true"))
		assert.Equal(t, []string{"Online Business Permit"}, serviceNames(t, a, "/v1/services?online=true"))
		assert.Empty(t, serviceNames(t, a, "/v1/services?q=clinic&category=transport"))
	})

	t.Run("Pagination", func(t *testing.T) {
		w := a.executeRequest(http.MethodGet, "/v1/services?page=2&page_size=2", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[response.PageResponse[listingHttp.Response]](t, w)
		assert.Equal(t, 3, page.Total)
		assert.Len(t, page.Items, 1)
	})

	t.Run("Categories", func(t *testing.T) {
		w := a.executeRequest(http.MethodGet, "/v1/services/categories", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[listingHttp.CategoriesResponse](t, w)
		assert.Equal(t, []string{"health", "permits", "transport"}, resp.Categories)
	})

	t.Run("Get", func(t *testing.T) {
		w := a.executeRequest(http.MethodGet, "/v1/services/"+clinic.ID, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Barangay Health Center", decode[listingHttp.Response](t, w).Name)

		w = a.executeRequest(http.MethodGet, "/v1/services/00000000-0000-0000-0000-000000000000", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Validation", func(t *testing.T) {
		w := a.executeRequest(http.MethodPost, "/v1/services", listingHttp.ServiceBody{
			Name:        "Walk-in Office",
			Description: "Needs an address when not online",
			Category:    "permits",
		}, providerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.executeRequest(http.MethodPost, "/v1/services", listingHttp.ServiceBody{
			Name:        "Night Office",
			Description: "Closing time before opening time",
			Category:    "permits",
			Address:     "1 Main Street",
			Hours:       []listingHttp.DayHoursBody{{Day: "monday", Open: "18:00", Close: "08:00"}},
		}, providerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.executeRequest(http.MethodPost, "/v1/services", listingHttp.ServiceBody{
			Name:        "Citizen Office",
			Description: "Citizens cannot publish services",
			Category:    "permits",
			Address:     "1 Main Street",
		}, citizenToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Update and ownership", func(t *testing.T) {
		body := listingHttp.ServiceBody{
			Name:        "Barangay Health Center",
			Description: "Primary care, vaccinations and dental",
			Category:    "health",
			Address:     "12 Rizal Street",
			Area:        "Poblacion",
			Tags:        []string{"vaccine", "dental"},
		}
		w := a.executeRequest(http.MethodPut, "/v1/services/"+clinic.ID, body, otherToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.executeRequest(http.MethodPut, "/v1/services/"+clinic.ID, body, providerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// The cached collection is refreshed after writes.
		assert.Equal(t, []string{"Barangay Health Center"}, serviceNames(t, a, "/v1/services?q=dental"))
		assert.Empty(t, serviceNames(t, a, "/v1/services?q=clinic"))
	})

	t.Run("Provider list", func(t *testing.T) {
		w := a.executeRequest(http.MethodGet, "/v1/provider/services", nil, providerToken)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[struct {
			Items []listingHttp.Response `json:"items"`
		}](t, w)
		assert.Len(t, resp.Items, 2)
	})

	t.Run("Favorites", func(t *testing.T) {
		w := a.executeRequest(http.MethodPut, "/v1/me/favorites/"+clinic.ID, nil, citizenToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, []string{clinic.ID}, decode[userHttp.FavoritesResponse](t, w).Favorites)

		// Adding twice keeps a single entry.
		w = a.executeRequest(http.MethodPut, "/v1/me/favorites/"+clinic.ID, nil, citizenToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[userHttp.FavoritesResponse](t, w).Favorites, 1)

		w = a.executeRequest(http.MethodPut, "/v1/me/favorites/00000000-0000-0000-0000-000000000000", nil, citizenToken)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = a.executeRequest(http.MethodGet, "/v1/me", nil, citizenToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{clinic.ID}, decode[userHttp.MeResponse](t, w).User.Favorites)

		w = a.executeRequest(http.MethodDelete, "/v1/me/favorites/"+clinic.ID, nil, citizenToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[userHttp.FavoritesResponse](t, w).Favorites)

		assert.Equal(t, http.StatusUnauthorized, a.executeRequest(http.MethodGet, "/v1/me/favorites", nil, "").Code)
	})

	t.Run("Delete", func(t *testing.T) {
		w := a.executeRequest(http.MethodDelete, "/v1/services/"+clinic.ID, nil, otherToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.executeRequest(http.MethodDelete, "/v1/services/"+clinic.ID, nil, providerToken)
		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, http.StatusNotFound, a.executeRequest(http.MethodGet, "/v1/services/"+clinic.ID, nil, "").Code)
		assert.Len(t, serviceNames(t, a, "/v1/services"), 2)
	})
}
