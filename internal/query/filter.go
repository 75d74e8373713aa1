package query

import (
	"errors"
	"fmt"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/api"
)

// StatusAll disables status filtering.
const StatusAll api.OrderStatus = 0

const DefaultPageSize = 10

var (
	ErrInvalidPage     = errors.New("page must not be negative")
	ErrInvalidPageSize = errors.New("page size must be one of 10, 25, 50")
	ErrInvalidStatus   = errors.New("unknown order status")
)

var pageSizes = map[int]struct{}{10: {}, 25: {}, 50: {}}

// Filter is the user-controlled state behind the order list. Page is
// zero-based. Every setter except WithPage returns a filter positioned on the
// first page: narrowing or widening the result set invalidates the previous
// pagination position.
type Filter struct {
	Page       int
	PageSize   int
	Status     api.OrderStatus
	FromDate   *time.Time
	ToDate     *time.Time
	SearchText string
}

func Default() Filter {
	return Filter{PageSize: DefaultPageSize}
}

func (f Filter) WithPage(page int) (Filter, error) {
	if page < 0 {
		return f, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	f.Page = page
	return f, nil
}

func (f Filter) WithPageSize(size int) (Filter, error) {
	if _, ok := pageSizes[size]; !ok {
		return f, fmt.Errorf("%w: got %d", ErrInvalidPageSize, size)
	}
	f.Page = 0
	f.PageSize = size
	return f, nil
}

func (f Filter) WithStatus(status api.OrderStatus) (Filter, error) {
	switch status {
	case StatusAll, api.OrderStatusNew, api.OrderStatusPaid, api.OrderStatusDone:
	default:
		return f, fmt.Errorf("%w: %d", ErrInvalidStatus, status)
	}
	f.Page = 0
	f.Status = status
	return f, nil
}

// WithFromDate sets the lower date bound; nil clears it.
func (f Filter) WithFromDate(date *time.Time) Filter {
	f.Page = 0
	f.FromDate = copyDate(date)
	return f
}

// WithToDate sets the upper date bound; nil clears it.
func (f Filter) WithToDate(date *time.Time) Filter {
	f.Page = 0
	f.ToDate = copyDate(date)
	return f
}

func (f Filter) WithSearch(text string) Filter {
	f.Page = 0
	f.SearchText = text
	return f
}

func copyDate(date *time.Time) *time.Time {
	if date == nil {
		return nil
	}
	d := *date
	return &d
}
