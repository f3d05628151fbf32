package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageResponse(t *testing.T) {
	p := NewPageResponse[string](nil, 1, 20, 0)
	assert.NotNil(t, p.Items)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext())

	p = NewPageResponse([]string{"a", "b"}, 1, 2, 5)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext())

	p = NewPageResponse([]string{"e"}, 3, 2, 5)
	assert.False(t, p.HasNext())
}
