package fetch

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/metrics"
)

// Phase is the state of the most recently started fetch.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Error
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "unknown"
}

// Outcome is how a single started fetch ended.
type Outcome int

const (
	Pending Outcome = iota
	Succeeded
	Failed
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Func performs the request identified by key. It must honour ctx
// cancellation, but results returned after cancellation are discarded anyway.
type Func[T any] func(ctx context.Context, key string) (T, error)

// ApplyFunc receives the payload of the current generation. It runs while the
// controller lock is held and must not call back into the controller.
type ApplyFunc[T any] func(generation uint64, payload T)

// Handle tracks one started fetch. Outcome and Err are valid once Done is closed.
type Handle struct {
	generation uint64
	done       chan struct{}
	outcome    Outcome
	err        error
}

func (h *Handle) Generation() uint64 {
	return h.generation
}

func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) Outcome() Outcome {
	select {
	case <-h.done:
		return h.outcome
	default:
		return Pending
	}
}

func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Wait blocks until the fetch ends or ctx is done, in which case it returns
// Pending.
func (h *Handle) Wait(ctx context.Context) Outcome {
	select {
	case <-h.done:
		return h.outcome
	case <-ctx.Done():
		return Pending
	}
}

// Controller owns the single live fetch of one view. Starting a fetch cancels
// the previous one, and only a completion carrying the latest generation may
// reach the apply callback, whatever order completions arrive in.
type Controller[T any] struct {
	view   string
	fetch  Func[T]
	apply  ApplyFunc[T]
	logger *zap.Logger

	mu         sync.Mutex
	generation uint64
	key        string
	started    bool
	cancel     context.CancelFunc
	current    *Handle
	phase      Phase
	err        error
	settled    bool
	closed     bool

	// running counts fetch goroutines; idle is closed when it drops to zero.
	running int
	idle    chan struct{}
}

func New[T any](view string, fetch Func[T], apply ApplyFunc[T], logger *zap.Logger) *Controller[T] {
	return &Controller[T]{
		view:   view,
		fetch:  fetch,
		apply:  apply,
		logger: logger.With(zap.String("view", view)),
	}
}

// Start begins a fetch for key unconditionally, superseding any in-flight one.
func (c *Controller[T]) Start(key string) *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.startLocked(key)
}

// Trigger starts a fetch only when key differs from the key of the last
// started fetch. The returned bool reports whether a fetch was started.
func (c *Controller[T]) Trigger(key string) (*Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started && key == c.key {
		return c.current, false
	}
	return c.startLocked(key), true
}

func (c *Controller[T]) startLocked(key string) *Handle {
	if c.closed {
		h := &Handle{done: make(chan struct{}), outcome: Cancelled}
		close(h.done)
		return h
	}

	if c.cancel != nil {
		c.cancel()
	}

	c.generation++
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{generation: c.generation, done: make(chan struct{})}

	c.cancel = cancel
	c.current = h
	c.key = key
	c.started = true
	c.phase = Loading

	metrics.FetchesTotal.WithLabelValues(c.view, "started").Inc()

	if c.running == 0 {
		c.idle = make(chan struct{})
	}
	c.running++
	go c.run(ctx, h, key)

	return h
}

// Cancel aborts h if it is still the live fetch. Cancelling anything else is a
// no-op. The phase returns to Idle and the next Trigger always starts a fetch.
func (c *Controller[T]) Cancel(h *Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h == nil || h != c.current || c.cancel == nil {
		return
	}
	c.cancelLocked()
}

// Stop cancels whatever fetch is live.
func (c *Controller[T]) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancelLocked()
	}
}

func (c *Controller[T]) cancelLocked() {
	c.cancel()
	c.cancel = nil
	c.generation++
	c.started = false
	if c.phase == Loading {
		c.phase = Idle
	}
}

// Close cancels the live fetch, refuses new ones and waits for every started
// fetch goroutine to return.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancelLocked()
	}
	c.closed = true
	c.mu.Unlock()

	c.Wait()
}

// Wait blocks until no fetch goroutine is running. Fetches started while it
// waits are waited for as well.
func (c *Controller[T]) Wait() {
	c.mu.Lock()
	running, idle := c.running, c.idle
	c.mu.Unlock()

	if running > 0 {
		<-idle
	}
}

// Renew restarts the live fetch with the same key if it was started at or
// before generation since, so its payload cannot predate a change the caller
// made after that point. It reports false when no such fetch is in flight.
func (c *Controller[T]) Renew(since uint64) (*Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil || c.current == nil || c.current.generation > since {
		return nil, false
	}
	c.logger.Debug("renewing fetch", zap.Uint64("generation", c.current.generation), zap.String("key", c.key))
	return c.startLocked(c.key), true
}

// Settled reports whether any fetch has finished with a result, successful or
// not. It never goes back to false.
func (c *Controller[T]) Settled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settled
}

func (c *Controller[T]) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// LastError returns the error of the latest failed fetch, cleared on success.
func (c *Controller[T]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Controller[T]) run(ctx context.Context, h *Handle, key string) {
	payload, err := c.fetch(ctx, key)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(h.done)
	defer c.releaseLocked()

	if ctx.Err() != nil || h.generation != c.generation {
		h.outcome = Cancelled
		if err == nil {
			metrics.FetchesTotal.WithLabelValues(c.view, "stale").Inc()
		} else {
			metrics.FetchesTotal.WithLabelValues(c.view, "cancelled").Inc()
		}
		c.logger.Debug("fetch superseded", zap.Uint64("generation", h.generation), zap.String("key", key))
		return
	}

	c.cancel()
	c.cancel = nil
	c.settled = true

	if err != nil {
		h.outcome = Failed
		h.err = err
		c.phase = Error
		c.err = err
		metrics.FetchesTotal.WithLabelValues(c.view, "failed").Inc()
		c.logger.Warn("fetch failed", zap.Uint64("generation", h.generation), zap.String("key", key), zap.Error(err))
		return
	}

	h.outcome = Succeeded
	c.phase = Success
	c.err = nil
	c.apply(h.generation, payload)
	metrics.FetchesTotal.WithLabelValues(c.view, "applied").Inc()
}

func (c *Controller[T]) releaseLocked() {
	c.running--
	if c.running == 0 {
		close(c.idle)
	}
}
