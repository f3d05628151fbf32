package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/announcement"
	annHttp "github.com/nekogravitycat/civic-directory-backend/internal/announcement/http"
	"github.com/nekogravitycat/civic-directory-backend/internal/listing"
	listingHttp "github.com/nekogravitycat/civic-directory-backend/internal/listing/http"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/response"
	"github.com/nekogravitycat/civic-directory-backend/internal/user"
	userHttp "github.com/nekogravitycat/civic-directory-backend/internal/user/http"
)

// HTTPClient implements API against a running server.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPClient creates a client for baseURL, e.g. "https://example.org/v1".
// If httpClient is nil, a default with timeout is used.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), hc: httpClient}
}

func (c *HTTPClient) Register(ctx context.Context, req user.RegisterRequest) (*Session, error) {
	var resp userHttp.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "", userHttp.RegisterRequest{
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.Password,
		DisplayName:     req.DisplayName,
		Role:            string(req.Role),
		Organization:    req.Organization,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &Session{Token: resp.AccessToken, User: toUser(resp.User)}, nil
}

func (c *HTTPClient) Login(ctx context.Context, phone, password string) (*Session, error) {
	var resp userHttp.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", userHttp.LoginRequest{Phone: phone, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &Session{Token: resp.AccessToken, User: toUser(resp.User)}, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*user.User, error) {
	var resp userHttp.MeResponse
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return toUser(resp.User), nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, token string, req user.UpdateProfileRequest) (*user.User, error) {
	var resp userHttp.MeResponse
	err := c.do(ctx, http.MethodPatch, "/me", token, userHttp.UpdateProfileRequest{
		DisplayName:  req.DisplayName,
		Phone:        req.Phone,
		Organization: req.Organization,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return toUser(resp.User), nil
}

func (c *HTTPClient) AddFavorite(ctx context.Context, token, serviceID string) ([]string, error) {
	var resp userHttp.FavoritesResponse
	if err := c.do(ctx, http.MethodPut, "/me/favorites/"+url.PathEscape(serviceID), token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Favorites, nil
}

func (c *HTTPClient) RemoveFavorite(ctx context.Context, token, serviceID string) ([]string, error) {
	var resp userHttp.FavoritesResponse
	if err := c.do(ctx, http.MethodDelete, "/me/favorites/"+url.PathEscape(serviceID), token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Favorites, nil
}

func (c *HTTPClient) ListServices(ctx context.Context) ([]*listing.Service, error) {
	return collectPages(func(page int) ([]*listing.Service, int, error) {
		var resp response.PageResponse[listingHttp.Response]
		if err := c.do(ctx, http.MethodGet, "/services"+pageQuery(page), "", nil, &resp); err != nil {
			return nil, 0, err
		}
		items := make([]*listing.Service, len(resp.Items))
		for i, item := range resp.Items {
			items[i] = toService(item)
		}
		return items, resp.Total, nil
	})
}

func (c *HTTPClient) GetService(ctx context.Context, id string) (*listing.Service, error) {
	var resp listingHttp.Response
	if err := c.do(ctx, http.MethodGet, "/services/"+url.PathEscape(id), "", nil, &resp); err != nil {
		return nil, err
	}
	return toService(resp), nil
}

func (c *HTTPClient) ListPublicAnnouncements(ctx context.Context) ([]*announcement.Announcement, error) {
	return c.listAnnouncements(ctx, "/announcements", "")
}

func (c *HTTPClient) ListProviderAnnouncements(ctx context.Context, token string) ([]*announcement.Announcement, error) {
	return c.listAnnouncements(ctx, "/provider/announcements", token)
}

func (c *HTTPClient) listAnnouncements(ctx context.Context, path, token string) ([]*announcement.Announcement, error) {
	return collectPages(func(page int) ([]*announcement.Announcement, int, error) {
		var resp response.PageResponse[annHttp.Response]
		if err := c.do(ctx, http.MethodGet, path+pageQuery(page), token, nil, &resp); err != nil {
			return nil, 0, err
		}
		items := make([]*announcement.Announcement, len(resp.Items))
		for i, item := range resp.Items {
			items[i] = toAnnouncement(item)
		}
		return items, resp.Total, nil
	})
}

func (c *HTTPClient) CreateAnnouncement(ctx context.Context, token string, in AnnouncementInput) (*announcement.Announcement, error) {
	var resp annHttp.Response
	err := c.do(ctx, http.MethodPost, "/announcements", token, annHttp.CreateBody{
		Title:     in.Title,
		Content:   in.Content,
		Category:  string(in.Category),
		Status:    string(in.Status),
		ExpiresAt: in.ExpiresAt,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return toAnnouncement(resp), nil
}

func (c *HTTPClient) UpdateAnnouncement(ctx context.Context, token, id string, in AnnouncementInput) (*announcement.Announcement, error) {
	var resp annHttp.Response
	err := c.do(ctx, http.MethodPut, "/announcements/"+url.PathEscape(id), token, annHttp.UpdateBody{
		Title:     in.Title,
		Content:   in.Content,
		Category:  string(in.Category),
		Status:    string(in.Status),
		ExpiresAt: in.ExpiresAt,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return toAnnouncement(resp), nil
}

func (c *HTTPClient) DeleteAnnouncement(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/announcements/"+url.PathEscape(id), token, nil, nil)
}

// do sends a JSON request and decodes a JSON response into out when it is
// not nil. Non-2xx responses become *APIError.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func pageQuery(page int) string {
	return "?page=" + strconv.Itoa(page) + "&page_size=" + strconv.Itoa(request.MaxPageSize)
}

func toUser(r userHttp.UserResponse) *user.User {
	return &user.User{
		ID:           r.ID,
		DisplayName:  r.DisplayName,
		Phone:        r.Phone,
		Role:         user.Role(r.Role),
		Organization: r.Organization,
		Favorites:    r.Favorites,
		CreatedAt:    r.CreatedAt,
		LastLoginAt:  r.LastLoginAt,
	}
}

func toService(r listingHttp.Response) *listing.Service {
	return &listing.Service{
		ID:              r.ID,
		ProviderID:      r.ProviderID,
		Name:            r.Name,
		Description:     r.Description,
		LongDescription: r.LongDescription,
		Category:        r.Category,
		Address:         r.Address,
		Area:            r.Area,
		Phone:           r.Phone,
		Email:           r.Email,
		Website:         r.Website,
		Hours:           r.Hours,
		Requirements:    r.Requirements,
		Tags:            r.Tags,
		Featured:        r.Featured,
		Accessible:      r.Accessible,
		OnlineAvailable: r.OnlineAvailable,
		Guide:           r.Guide,
		ImageIDs:        r.ImageIDs,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toAnnouncement(r annHttp.Response) *announcement.Announcement {
	return &announcement.Announcement{
		ID:          r.ID,
		Title:       r.Title,
		Content:     r.Content,
		Category:    announcement.Category(r.Category),
		ProviderID:  r.ProviderID,
		AuthorName:  r.AuthorName,
		PublishedAt: r.PublishedAt,
		ExpiresAt:   r.ExpiresAt,
		Status:      announcement.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
