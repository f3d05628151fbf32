package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleDirectory() []*Service {
	return []*Service{
		{ID: "1", Name: "Birth Certificate Request", Description: "Request a certified copy", Category: "civil-registry",
			Address: "12 Rizal St", Area: "Downtown", Tags: []string{"documents", "PSA"}, OnlineAvailable: true},
		{ID: "2", Name: "Senior Citizen ID", Description: "Apply for the senior citizen card", Category: "social-welfare",
			Address: "4 Mabini Ave", Area: "Uptown", Tags: []string{"seniors"}, Accessible: true},
		{ID: "3", Name: "Business Permit", Description: "Register or renew a business", Category: "business",
			Address: "City Hall, 1 Main St", Area: "Downtown", Tags: []string{"permits"}, Accessible: true, OnlineAvailable: true},
		{ID: "4", Name: "Free Vaccination", Description: "Community vaccination drive", Category: "health",
			Address: "Barangay Hall", Area: "Riverside", Tags: []string{"medical"}},
	}
}

func idsOf(services []*Service) []string {
	out := make([]string, 0, len(services))
	for _, s := range services {
		out = append(out, s.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		search SearchFilter
		refine RefineFilter
		want   []string
	}{
		{name: "no criteria", want: []string{"1", "2", "3", "4"}},
		{name: "blank strings are inactive", search: SearchFilter{Query: "  ", Location: "\t"}, want: []string{"1", "2", "3", "4"}},
		{name: "query matches name case-insensitively", search: SearchFilter{Query: "BUSINESS"}, want: []string{"3"}},
		{name: "query matches description", search: SearchFilter{Query: "certified"}, want: []string{"1"}},
		{name: "query matches tag", search: SearchFilter{Query: "psa"}, want: []string{"1"}},
		{name: "location matches area", search: SearchFilter{Location: "downtown"}, want: []string{"1", "3"}},
		{name: "location matches address", search: SearchFilter{Location: "mabini"}, want: []string{"2"}},
		{name: "search category is exact", search: SearchFilter{Category: "Health"}, want: []string{"4"}},
		{name: "search category partial does not match", search: SearchFilter{Category: "heal"}, want: []string{}},
		{name: "refine categories any of", refine: RefineFilter{Categories: []string{"health", "business"}}, want: []string{"3", "4"}},
		{name: "refine locations any of", refine: RefineFilter{Locations: []string{"uptown", "riverside"}}, want: []string{"2", "4"}},
		{name: "accessible flag", refine: RefineFilter{Accessible: true}, want: []string{"2", "3"}},
		{name: "online flag", refine: RefineFilter{OnlineAvailable: true}, want: []string{"1", "3"}},
		{
			name:   "criteria are combined with AND",
			search: SearchFilter{Location: "downtown"},
			refine: RefineFilter{Accessible: true, OnlineAvailable: true},
			want:   []string{"3"},
		},
		{name: "nothing matches", search: SearchFilter{Query: "passport"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(sampleDirectory(), tt.search, tt.refine)
			assert.Equal(t, tt.want, idsOf(got))
		})
	}
}

func TestApplyWithoutCriteriaReturnsInput(t *testing.T) {
	in := sampleDirectory()
	out := Apply(in, SearchFilter{}, RefineFilter{Categories: []string{}})

	assert.Len(t, out, len(in))
	for i := range in {
		assert.Same(t, in[i], out[i])
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	search := SearchFilter{Location: "downtown"}
	refine := RefineFilter{OnlineAvailable: true}

	once := Apply(sampleDirectory(), search, refine)
	twice := Apply(once, search, refine)

	assert.Equal(t, idsOf(once), idsOf(twice))
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	in := sampleDirectory()
	before := idsOf(in)

	_ = Apply(in, SearchFilter{Query: "senior"}, RefineFilter{Accessible: true})

	assert.Equal(t, before, idsOf(in))
	assert.Equal(t, "Senior Citizen ID", in[1].Name)
}
