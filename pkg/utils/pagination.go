package utils

import "math"

func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// CalculateOffset returns the row offset of a 1-based page. Pages whose
// offset would overflow int land past any data set (math.MaxInt).
func CalculateOffset(page, perPage int) int {
	if page < 1 || perPage < 1 {
		return 0
	}
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (page - 1) * perPage
}

// PageBounds clamps an offset/limit pair to [0, length] for slicing.
func PageBounds(offset, limit, length int) (start, end int) {
	if offset < 0 || offset >= length {
		return length, length
	}
	if limit < 0 || limit > length-offset {
		return offset, length
	}
	return offset, offset + limit
}
