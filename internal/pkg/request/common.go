package request

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListParams holds the shared pagination query parameters.
type ListParams struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize fills in defaults for missing pagination values.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the number of items to skip for the current page.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Paginate slices items for the given page parameters and returns the page with the total count.
func Paginate[T any](items []T, p ListParams) ([]T, int) {
	p.Normalize()
	total := len(items)
	start := p.Offset()
	if start >= total {
		return []T{}, total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	return items[start:end], total
}
