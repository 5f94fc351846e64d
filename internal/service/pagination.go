package service

// Page is the listing result shape shared by all paginated operations.
type Page[T any] struct {
	CurrentPage int `json:"currentPage"`
	Pages       int `json:"pages"`
	Data        []T `json:"data"`
}

// PageOffset computes the item offset for a 1-based page number. Inputs
// are not validated here; out-of-range values simply produce a negative
// offset or an empty page, which callers treat as a valid result. Request
// parsing is responsible for rejecting nonsense input.
func PageOffset(page, limit int) int {
	return (page - 1) * limit
}

// PageCount returns ceil(total/limit), the number of pages the collection
// spans.
func PageCount(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// NewPage assembles a Page from a page number, the total matching count,
// the page size, and the items of the current page.
func NewPage[T any](page int, total int64, limit int, data []T) *Page[T] {
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		CurrentPage: page,
		Pages:       PageCount(total, limit),
		Data:        data,
	}
}
