package listing

import "strings"

// SearchFilter is the free-text search bar: query, location and a single category.
type SearchFilter struct {
	Query    string
	Location string
	Category string
}

// RefineFilter is the multi-select refine panel.
type RefineFilter struct {
	Categories      []string
	Locations       []string
	Accessible      bool
	OnlineAvailable bool
}

// Active reports whether any search criterion constrains the result.
func (f SearchFilter) Active() bool {
	return strings.TrimSpace(f.Query) != "" ||
		strings.TrimSpace(f.Location) != "" ||
		strings.TrimSpace(f.Category) != ""
}

// Active reports whether any refine criterion constrains the result.
func (f RefineFilter) Active() bool {
	return len(f.Categories) > 0 || len(f.Locations) > 0 || f.Accessible || f.OnlineAvailable
}

// Apply returns the services matching every active criterion of both filters,
// in input order. Inactive criteria (empty strings, empty slices, false flags)
// impose nothing; with no active criteria the input slice is returned as is.
// Apply never modifies its arguments.
func Apply(services []*Service, search SearchFilter, refine RefineFilter) []*Service {
	if !search.Active() && !refine.Active() {
		return services
	}

	out := make([]*Service, 0, len(services))
	for _, s := range services {
		if Matches(s, search, refine) {
			out = append(out, s)
		}
	}
	return out
}

// Matches reports whether a single service satisfies both filters.
func Matches(s *Service, search SearchFilter, refine RefineFilter) bool {
	if q := normalize(search.Query); q != "" && !matchesQuery(s, q) {
		return false
	}
	if loc := normalize(search.Location); loc != "" && !matchesLocation(s, loc) {
		return false
	}
	if cat := normalize(search.Category); cat != "" && normalize(s.Category) != cat {
		return false
	}

	if len(refine.Categories) > 0 && !anyEqual(s.Category, refine.Categories) {
		return false
	}
	if len(refine.Locations) > 0 && !anyLocation(s, refine.Locations) {
		return false
	}
	if refine.Accessible && !s.Accessible {
		return false
	}
	if refine.OnlineAvailable && !s.OnlineAvailable {
		return false
	}
	return true
}

// matchesQuery checks name, description and tags for q (already lower-cased).
func matchesQuery(s *Service, q string) bool {
	if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.Description), q) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func matchesLocation(s *Service, loc string) bool {
	return strings.Contains(strings.ToLower(s.Address), loc) || strings.Contains(strings.ToLower(s.Area), loc)
}

func anyEqual(v string, options []string) bool {
	v = normalize(v)
	for _, o := range options {
		if normalize(o) == v {
			return true
		}
	}
	return false
}

func anyLocation(s *Service, locations []string) bool {
	for _, l := range locations {
		if loc := normalize(l); loc != "" && matchesLocation(s, loc) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
