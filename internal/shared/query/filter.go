// Package query holds listing filters shared by the HTTP handlers.
package query

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageFilter carries pagination input from a list endpoint. Out-of-range
// values are normalized rather than rejected.
type PageFilter struct {
	Page     int
	PageSize int
}

// Limit returns the sanitized page size.
func (f PageFilter) Limit() int {
	if f.PageSize <= 0 {
		return defaultPageSize
	}
	if f.PageSize > maxPageSize {
		return maxPageSize
	}
	return f.PageSize
}

// Offset returns the row offset of the sanitized page.
func (f PageFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}
