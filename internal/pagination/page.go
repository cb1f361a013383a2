package pagination

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100

	// MaxPage bounds Offset to MaxPage*MaxSize rows.
	MaxPage = 1_000_000
)

// Page is an offset page request.
type Page struct {
	Page int
	Size int
}

// PageResult represents a paginated result set
type PageResult[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
}

// Normalize clamps a page request: page below 1 becomes 1, page above MaxPage
// becomes MaxPage and a size outside 1..MaxSize becomes DefaultSize.
func Normalize(page, size int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size < 1 || size > MaxSize {
		size = DefaultSize
	}
	return Page{Page: page, Size: size}
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Size
}

// Limit returns the page size.
func (p Page) Limit() int {
	return p.Size
}
