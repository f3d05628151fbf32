package http

import (
	"strings"
	"time"

	"github.com/nekogravitycat/civic-directory-backend/internal/file"
	"github.com/nekogravitycat/civic-directory-backend/internal/listing"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
)

type Response struct {
	ID              string              `json:"id"`
	ProviderID      string              `json:"provider_id"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	LongDescription string              `json:"long_description"`
	Category        string              `json:"category"`
	Address         string              `json:"address"`
	Area            string              `json:"area"`
	Phone           string              `json:"phone"`
	Email           string              `json:"email"`
	Website         string              `json:"website"`
	Hours           []listing.DayHours  `json:"hours"`
	Requirements    []string            `json:"requirements"`
	Tags            []string            `json:"tags"`
	Featured        bool                `json:"featured"`
	Accessible      bool                `json:"accessible"`
	OnlineAvailable bool                `json:"online_available"`
	Guide           []listing.GuideStep `json:"guide"`
	ImageIDs        []string            `json:"image_ids"`
	ImageURLs       []string            `json:"image_urls"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func NewResponse(s *listing.Service) Response {
	urls := make([]string, len(s.ImageIDs))
	for i, id := range s.ImageIDs {
		urls[i] = file.FileURL(id)
	}
	return Response{
		ID:              s.ID,
		ProviderID:      s.ProviderID,
		Name:            s.Name,
		Description:     s.Description,
		LongDescription: s.LongDescription,
		Category:        s.Category,
		Address:         s.Address,
		Area:            s.Area,
		Phone:           s.Phone,
		Email:           s.Email,
		Website:         s.Website,
		Hours:           nonNil(s.Hours),
		Requirements:    nonNil(s.Requirements),
		Tags:            nonNil(s.Tags),
		Featured:        s.Featured,
		Accessible:      s.Accessible,
		OnlineAvailable: s.OnlineAvailable,
		Guide:           nonNil(s.Guide),
		ImageIDs:        nonNil(s.ImageIDs),
		ImageURLs:       urls,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// ListRequest combines the search bar, the refine panel and pagination.
// Multi-value parameters accept repeated keys or comma separated values.
type ListRequest struct {
	request.ListParams
	Query      string   `form:"q" binding:"max=200"`
	Location   string   `form:"location" binding:"max=200"`
	Category   string   `form:"category" binding:"max=50"`
	Categories []string `form:"categories"`
	Locations  []string `form:"locations"`
	Accessible bool     `form:"accessible"`
	Online     bool     `form:"online"`
	Featured   bool     `form:"featured"`
}

func (r *ListRequest) ToQuery() listing.Query {
	r.Normalize()
	return listing.Query{
		Search: listing.SearchFilter{
			Query:    r.Query,
			Location: r.Location,
			Category: r.Category,
		},
		Refine: listing.RefineFilter{
			Categories:      splitValues(r.Categories),
			Locations:       splitValues(r.Locations),
			Accessible:      r.Accessible,
			OnlineAvailable: r.Online,
		},
		FeaturedOnly: r.Featured,
		ListParams:   r.ListParams,
	}
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

type DayHoursBody struct {
	Day    string `json:"day" binding:"required,weekday"`
	Open   string `json:"open" binding:"required_if=Closed false,omitempty,datetime=15:04"`
	Close  string `json:"close" binding:"required_if=Closed false,omitempty,datetime=15:04"`
	Closed bool   `json:"closed"`
}

type GuideStepBody struct {
	Title             string   `json:"title" binding:"required,notblank,max=200"`
	Description       string   `json:"description" binding:"max=2000"`
	Tips              []string `json:"tips" binding:"omitempty,dive,max=500"`
	RequiredDocuments []string `json:"required_documents" binding:"omitempty,dive,max=200"`
}

// ServiceBody is used for both create and full update.
type ServiceBody struct {
	Name            string          `json:"name" binding:"required,notblank,max=200"`
	Description     string          `json:"description" binding:"required,notblank,max=500"`
	LongDescription string          `json:"long_description" binding:"max=20000"`
	Category        string          `json:"category" binding:"required,notblank,max=50"`
	Address         string          `json:"address" binding:"max=300"`
	Area            string          `json:"area" binding:"max=100"`
	Phone           string          `json:"phone" binding:"omitempty,phone"`
	Email           string          `json:"email" binding:"omitempty,email"`
	Website         string          `json:"website" binding:"omitempty,url"`
	Hours           []DayHoursBody  `json:"hours" binding:"omitempty,max=7,dive"`
	Requirements    []string        `json:"requirements" binding:"omitempty,dive,max=200"`
	Tags            []string        `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Featured        bool            `json:"featured"`
	Accessible      bool            `json:"accessible"`
	OnlineAvailable bool            `json:"online_available"`
	Guide           []GuideStepBody `json:"guide" binding:"omitempty,max=30,dive"`
	ImageIDs        []string        `json:"image_ids" binding:"omitempty,max=10,dive,uuid"`
}

func (b ServiceBody) Input() listing.Input {
	in := listing.Input{
		Name:            b.Name,
		Description:     b.Description,
		LongDescription: b.LongDescription,
		Category:        b.Category,
		Address:         b.Address,
		Area:            b.Area,
		Phone:           b.Phone,
		Email:           b.Email,
		Website:         b.Website,
		Requirements:    b.Requirements,
		Tags:            b.Tags,
		Featured:        b.Featured,
		Accessible:      b.Accessible,
		OnlineAvailable: b.OnlineAvailable,
		ImageIDs:        b.ImageIDs,
	}
	for _, h := range b.Hours {
		in.Hours = append(in.Hours, listing.DayHours{Day: h.Day, Open: h.Open, Close: h.Close, Closed: h.Closed})
	}
	for _, g := range b.Guide {
		in.Guide = append(in.Guide, listing.GuideStep{
			Title:             g.Title,
			Description:       g.Description,
			Tips:              g.Tips,
			RequiredDocuments: g.RequiredDocuments,
		})
	}
	return in
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
