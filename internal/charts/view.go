package charts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/api"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/fetch"
)

const DefaultPeriod = 30

var ErrInvalidPeriod = errors.New("period must be one of 30, 60, 90, 180 or 360 days")

// Periods lists the look-back windows the metric endpoints accept, in days.
var Periods = []int{30, 60, 90, 180, 360}

func ValidPeriod(period int) bool {
	for _, p := range Periods {
		if p == period {
			return true
		}
	}
	return false
}

// Loader fetches the metric for a period in days.
type Loader[T any] func(ctx context.Context, period int) (T, error)

type Snapshot[T any] struct {
	Period     int    `json:"period"`
	Data       T      `json:"data"`
	Loading    bool   `json:"loading"`
	Error      string `json:"error,omitempty"`
	Generation uint64 `json:"generation"`
}

// View is a chart backed by a single period parameter. A period change
// cancels the request in flight; the spinner stays up until the latest
// request succeeds.
type View[T any] struct {
	name   string
	load   Loader[T]
	fetch  *fetch.Controller[T]
	logger *zap.Logger

	// actions keeps the stored period and the triggered fetch in step.
	actions sync.Mutex

	mu      sync.RWMutex
	period  int
	mounted bool
	data    T
}

func New[T any](name string, load Loader[T], logger *zap.Logger) *View[T] {
	v := &View[T]{
		name:   name,
		load:   load,
		logger: logger,
		period: DefaultPeriod,
	}
	v.fetch = fetch.New[T](name, v.run, v.show, logger)
	return v
}

type OrdersPerDayLoader interface {
	OrdersPerDay(ctx context.Context, period int) ([]api.DayCount, error)
}

type MostBoughtProductsLoader interface {
	MostBoughtProducts(ctx context.Context, period int) ([]api.ProductCount, error)
}

func NewOrdersPerDay(client OrdersPerDayLoader, logger *zap.Logger) *View[[]api.DayCount] {
	return New[[]api.DayCount]("orders_per_day", client.OrdersPerDay, logger)
}

func NewMostBoughtProducts(client MostBoughtProductsLoader, logger *zap.Logger) *View[[]api.ProductCount] {
	return New[[]api.ProductCount]("most_bought_products", client.MostBoughtProducts, logger)
}

func (v *View[T]) run(ctx context.Context, key string) (T, error) {
	period, err := strconv.Atoi(key)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("bad period key %q: %w", key, err)
	}
	return v.load(ctx, period)
}

func (v *View[T]) show(_ uint64, data T) {
	v.mu.Lock()
	v.data = data
	v.mu.Unlock()
}

func (v *View[T]) Name() string {
	return v.name
}

func (v *View[T]) Mount() *fetch.Handle {
	v.actions.Lock()
	defer v.actions.Unlock()

	v.mu.Lock()
	v.mounted = true
	period := v.period
	v.mu.Unlock()

	h, _ := v.fetch.Trigger(strconv.Itoa(period))
	return h
}

func (v *View[T]) Unmount() {
	v.actions.Lock()
	defer v.actions.Unlock()

	v.mu.Lock()
	v.mounted = false
	v.mu.Unlock()

	v.fetch.Stop()
}

func (v *View[T]) Close() {
	v.fetch.Close()
}

func (v *View[T]) Wait() {
	v.fetch.Wait()
}

func (v *View[T]) Period() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.period
}

// SetPeriod switches the chart to another window. Setting the current period
// again does not refetch; an unmounted view fetches on its next Mount.
func (v *View[T]) SetPeriod(period int) (*fetch.Handle, error) {
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriod, period)
	}

	v.actions.Lock()
	defer v.actions.Unlock()

	v.mu.Lock()
	v.period = period
	mounted := v.mounted
	v.mu.Unlock()

	if !mounted {
		return nil, nil
	}

	h, started := v.fetch.Trigger(strconv.Itoa(period))
	if started {
		v.logger.Debug("chart period changed", zap.String("chart", v.name), zap.Int("period", period))
	}
	return h, nil
}

func (v *View[T]) Snapshot() Snapshot[T] {
	phase := v.fetch.Phase()

	v.mu.RLock()
	snap := Snapshot[T]{
		Period:  v.period,
		Data:    v.data,
		Loading: phase != fetch.Success,
	}
	v.mu.RUnlock()

	if err := v.fetch.LastError(); err != nil && phase == fetch.Error {
		snap.Error = err.Error()
	}
	snap.Generation = v.fetch.Generation()
	return snap
}

// Current is Snapshot for callers that serve every chart the same way.
func (v *View[T]) Current() interface{} {
	return v.Snapshot()
}
