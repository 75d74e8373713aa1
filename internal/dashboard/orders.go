package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/api"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/fetch"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/query"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/staff"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/store"
)

var ErrNotStaff = errors.New("action is available to staff only")

// Snapshot is what the order table renders.
type Snapshot struct {
	Filter       query.Filter
	Page         *api.OrderListPage
	Loading      bool
	ShowSearch   bool
	CanEditLines bool
	Generation   uint64
}

// OrderList is the paginated, filterable order table. It owns the filter and
// the displayed page; the page is only ever written by the fetch controller's
// latest generation and by line mutations splicing a single order.
type OrderList struct {
	client OrderAPI
	flag   staff.Source
	pages  *store.PageStore
	fetch  *fetch.Controller[*api.OrderListPage]
	logger *zap.Logger

	// actions serialises user actions so the filter and the fetch it
	// triggers are always observed in the same order.
	actions sync.Mutex

	mu      sync.RWMutex
	filter  query.Filter
	mounted bool
}

func NewOrderList(client OrderAPI, flag staff.Source, pages *store.PageStore, logger *zap.Logger) *OrderList {
	v := &OrderList{
		client: client,
		flag:   flag,
		pages:  pages,
		logger: logger,
		filter: query.Default(),
	}
	v.fetch = fetch.New[*api.OrderListPage]("orders", v.load, v.show, logger)
	return v
}

func (v *OrderList) load(ctx context.Context, rawQuery string) (*api.OrderListPage, error) {
	return v.client.ListOrders(ctx, rawQuery)
}

func (v *OrderList) show(_ uint64, page *api.OrderListPage) {
	v.pages.Replace(page)
}

// Mount starts the initial fetch. Mounting an already mounted view is a no-op
// that returns the live fetch.
func (v *OrderList) Mount() *fetch.Handle {
	v.actions.Lock()
	defer v.actions.Unlock()

	v.mu.Lock()
	v.mounted = true
	f := v.filter
	v.mu.Unlock()

	h, _ := v.fetch.Trigger(query.Build(f))
	return h
}

// Unmount cancels the live fetch. Filter and displayed page are kept.
func (v *OrderList) Unmount() {
	v.actions.Lock()
	defer v.actions.Unlock()

	v.mu.Lock()
	v.mounted = false
	v.mu.Unlock()

	v.fetch.Stop()
}

// Close cancels the live fetch for good and waits for in-flight requests.
func (v *OrderList) Close() {
	v.fetch.Close()
}

// Wait blocks until every fetch started so far has returned.
func (v *OrderList) Wait() {
	v.fetch.Wait()
}

func (v *OrderList) Filter() query.Filter {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filter
}

func (v *OrderList) Snapshot() Snapshot {
	flag := v.flag.Flag()

	// only the first fetch shows the loading indicator; later ones keep the
	// current page on screen until they replace it
	return Snapshot{
		Filter:       v.Filter(),
		Page:         v.pages.Get(),
		Loading:      !v.fetch.Settled(),
		ShowSearch:   flag.Allowed(),
		CanEditLines: flag.Allowed(),
		Generation:   v.fetch.Generation(),
	}
}

func (v *OrderList) SetPage(page int) (*fetch.Handle, error) {
	return v.change(func(f query.Filter) (query.Filter, error) {
		return f.WithPage(page)
	})
}

func (v *OrderList) SetPageSize(size int) (*fetch.Handle, error) {
	return v.change(func(f query.Filter) (query.Filter, error) {
		return f.WithPageSize(size)
	})
}

func (v *OrderList) SetStatus(status api.OrderStatus) (*fetch.Handle, error) {
	return v.change(func(f query.Filter) (query.Filter, error) {
		return f.WithStatus(status)
	})
}

func (v *OrderList) SetFromDate(date *time.Time) (*fetch.Handle, error) {
	return v.change(func(f query.Filter) (query.Filter, error) {
		return f.WithFromDate(date), nil
	})
}

func (v *OrderList) SetToDate(date *time.Time) (*fetch.Handle, error) {
	return v.change(func(f query.Filter) (query.Filter, error) {
		return f.WithToDate(date), nil
	})
}

// SetSearch changes the free-text search. The search field only exists for
// staff.
func (v *OrderList) SetSearch(text string) (*fetch.Handle, error) {
	if !v.flag.Flag().Allowed() {
		return nil, ErrNotStaff
	}
	return v.change(func(f query.Filter) (query.Filter, error) {
		return f.WithSearch(text), nil
	})
}

// Update applies several filter changes as one action, triggering at most one
// fetch.
func (v *OrderList) Update(fn func(query.Filter) (query.Filter, error)) (*fetch.Handle, error) {
	return v.change(fn)
}

func (v *OrderList) change(fn func(query.Filter) (query.Filter, error)) (*fetch.Handle, error) {
	v.actions.Lock()
	defer v.actions.Unlock()

	v.mu.Lock()
	next, err := fn(v.filter)
	if err != nil {
		v.mu.Unlock()
		return nil, err
	}
	v.filter = next
	mounted := v.mounted
	v.mu.Unlock()

	// an unmounted view fetches the new filter on its next Mount
	if !mounted {
		return nil, nil
	}

	h, _ := v.fetch.Trigger(query.Build(next))
	return h, nil
}

// Line returns the displayed line with the given id.
func (v *OrderList) Line(lineID int64) (api.OrderLine, bool) {
	_, line, ok := v.pages.FindLine(lineID)
	if !ok {
		return api.OrderLine{}, false
	}
	return *line, true
}
