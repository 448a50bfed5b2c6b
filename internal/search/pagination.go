package search

import "math"

const (
	DefaultPageSize = 3
	MaxPageSize     = 100
)

// Normalize clamps page to >= 1 and falls back to the default size when size
// is non-positive or above MaxPageSize.
func Normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

// MaxPage is the largest page whose offset still fits in an int.
func MaxPage(size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return (math.MaxInt-size)/size + 1
}

func Calculate(page, size int) (offset, limit int) {
	page, size = Normalize(page, size)
	if page > MaxPage(size) {
		page = MaxPage(size)
	}
	offset = (page - 1) * size
	return offset, size
}

func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
