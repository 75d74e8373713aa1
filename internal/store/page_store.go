package store

import (
	"sync"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/api"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/metrics"
)

// PageStore holds the order list page currently on display. It has a single
// writer, the list view; readers get the page by reference and must treat it
// as immutable. Writers never modify a stored page in place.
type PageStore struct {
	mu   sync.RWMutex
	page *api.OrderListPage
}

func NewPageStore() *PageStore {
	return &PageStore{}
}

// Get returns the displayed page, or nil before the first successful fetch.
func (s *PageStore) Get() *api.OrderListPage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// Replace swaps in a freshly fetched page.
func (s *PageStore) Replace(page *api.OrderListPage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.page = page
	metrics.DisplayedOrders.Set(float64(len(page.Results)))
}

// Splice substitutes order for the displayed entry with the same id. The count
// and every other entry are carried over unchanged. It reports false when the
// order is not on the displayed page.
func (s *PageStore) Splice(order *api.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		return false
	}

	idx := -1
	for i, o := range s.page.Results {
		if o.ID == order.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	results := make([]*api.Order, len(s.page.Results))
	copy(results, s.page.Results)
	results[idx] = order

	next := *s.page
	next.Results = results
	s.page = &next
	return true
}

// FindLine returns the displayed order owning the given line.
func (s *PageStore) FindLine(lineID int64) (*api.Order, *api.OrderLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.page == nil {
		return nil, nil, false
	}
	for _, o := range s.page.Results {
		for i := range o.OrderLines {
			if o.OrderLines[i].ID == lineID {
				line := o.OrderLines[i]
				return o, &line, true
			}
		}
	}
	return nil, nil, false
}
