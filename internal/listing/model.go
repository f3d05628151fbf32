package listing

import (
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("service not found")
	ErrForbidden           = errors.New("service belongs to another provider")
	ErrNameRequired        = errors.New("name must be at least 3 characters")
	ErrDescriptionRequired = errors.New("description must be at least 10 characters")
	ErrCategoryRequired    = errors.New("category is required")
	ErrAddressRequired     = errors.New("address is required")
	ErrInvalidPhone        = errors.New("contact phone is invalid")
	ErrInvalidHours        = errors.New("invalid opening hours")
	ErrInvalidGuide        = errors.New("every guide step needs a title")
)

// Weekdays in display order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DayHours describes one day of the weekly schedule. Times use 24h "HH:MM".
type DayHours struct {
	Day    string `json:"day"`
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed"`
}

// GuideStep is one entry of a step-by-step guide for obtaining a service.
type GuideStep struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Tips              []string `json:"tips,omitempty"`
	RequiredDocuments []string `json:"required_documents,omitempty"`
}

// Service is a directory listing for a government service.
type Service struct {
	ID              string      `json:"id"`
	ProviderID      string      `json:"provider_id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	LongDescription string      `json:"long_description"`
	Category        string      `json:"category"`
	Address         string      `json:"address"`
	Area            string      `json:"area"`
	Phone           string      `json:"phone"`
	Email           string      `json:"email"`
	Website         string      `json:"website"`
	Hours           []DayHours  `json:"hours"`
	Requirements    []string    `json:"requirements"`
	Tags            []string    `json:"tags"`
	Featured        bool        `json:"featured"`
	Accessible      bool        `json:"accessible"`
	OnlineAvailable bool        `json:"online_available"`
	Guide           []GuideStep `json:"guide"`
	ImageIDs        []string    `json:"image_ids"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (s *Service) clone() *Service {
	c := *s
	c.Hours = append([]DayHours(nil), s.Hours...)
	c.Requirements = append([]string(nil), s.Requirements...)
	c.Tags = append([]string(nil), s.Tags...)
	c.ImageIDs = append([]string(nil), s.ImageIDs...)
	if s.Guide != nil {
		c.Guide = make([]GuideStep, len(s.Guide))
		for i, g := range s.Guide {
			g.Tips = append([]string(nil), g.Tips...)
			g.RequiredDocuments = append([]string(nil), g.RequiredDocuments...)
			c.Guide[i] = g
		}
	}
	return &c
}
