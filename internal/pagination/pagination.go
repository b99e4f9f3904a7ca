package pagination

import "math"

// Page contains metadata for paginated listings.
type Page struct {
	Number     int
	Size       int
	Total      int
	TotalPages int
}

// Paginate converts a 1-based page number and page size into the LIMIT and
// OFFSET to apply. Page numbers below 1 are treated as the first page.
func Paginate(number, size int) (limit, offset int) {
	if number < 1 {
		number = 1
	}
	return size, (number - 1) * size
}

// TotalPages derives the page count for a match total. A non-positive size is
// degenerate and yields zero; callers resolve the page size from settings
// before asking.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(size)))
}

// New computes full page metadata for a listing response.
func New(number, size, total int) Page {
	if number < 1 {
		number = 1
	}
	return Page{
		Number:     number,
		Size:       size,
		Total:      total,
		TotalPages: TotalPages(total, size),
	}
}
