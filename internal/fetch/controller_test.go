package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reply struct {
	payload string
	err     error
}

// gatedFetcher completes each key only when the test sends on its gate and
// ignores cancellation, so late completions reach the controller.
type gatedFetcher struct {
	mu    sync.Mutex
	gates map[string]chan reply
	calls []string
}

func newGatedFetcher(keys ...string) *gatedFetcher {
	f := &gatedFetcher{gates: make(map[string]chan reply)}
	for _, k := range keys {
		f.gates[k] = make(chan reply, 1)
	}
	return f
}

func (f *gatedFetcher) fetch(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, key)
	gate := f.gates[key]
	f.mu.Unlock()

	r := <-gate
	return r.payload, r.err
}

func (f *gatedFetcher) release(key, payload string, err error) {
	f.gates[key] <- reply{payload: payload, err: err}
}

type recorder struct {
	mu      sync.Mutex
	applied []string
}

func (r *recorder) apply(_ uint64, payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, payload)
}

func (r *recorder) values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.applied...)
}

func waitHandle(t *testing.T, h *Handle) Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	outcome := h.Wait(ctx)
	require.NotEqual(t, Pending, outcome, "fetch did not finish in time")
	return outcome
}

func TestController_AppliesSuccess(t *testing.T) {
	f := newGatedFetcher("a")
	rec := &recorder{}
	c := New[string]("test", f.fetch, rec.apply, zap.NewNop())

	h := c.Start("a")
	assert.Equal(t, Loading, c.Phase())
	assert.Equal(t, Pending, h.Outcome())

	f.release("a", "page-a", nil)

	assert.Equal(t, Succeeded, waitHandle(t, h))
	assert.Equal(t, Success, c.Phase())
	assert.Equal(t, []string{"page-a"}, rec.values())
	assert.NoError(t, c.LastError())
}

func TestController_LateResponseOfSupersededFetchIsDiscarded(t *testing.T) {
	f := newGatedFetcher("first", "second")
	rec := &recorder{}
	c := New[string]("test", f.fetch, rec.apply, zap.NewNop())

	first := c.Start("first")
	second := c.Start("second")
	require.Greater(t, second.Generation(), first.Generation())

	f.release("second", "second-page", nil)
	assert.Equal(t, Succeeded, waitHandle(t, second))

	f.release("first", "first-page", nil)
	assert.Equal(t, Cancelled, waitHandle(t, first))

	c.Wait()
	assert.Equal(t, []string{"second-page"}, rec.values())
	assert.Equal(t, Success, c.Phase())
}

func TestController_SupersededFetchCompletingFirstIsDiscarded(t *testing.T) {
	f := newGatedFetcher("first", "second")
	rec := &recorder{}
	c := New[string]("test", f.fetch, rec.apply, zap.NewNop())

	first := c.Start("first")
	second := c.Start("second")

	f.release("first", "first-page", nil)
	assert.Equal(t, Cancelled, waitHandle(t, first))
	assert.Empty(t, rec.values())
	assert.Equal(t, Loading, c.Phase())

	f.release("second", "second-page", nil)
	assert.Equal(t, Succeeded, waitHandle(t, second))
	assert.Equal(t, []string{"second-page"}, rec.values())
}

func TestController_FailureKeepsAppliedData(t *testing.T) {
	f := newGatedFetcher("ok", "broken")
	rec := &recorder{}
	c := New[string]("test", f.fetch, rec.apply, zap.NewNop())

	h := c.Start("ok")
	f.release("ok", "good", nil)
	waitHandle(t, h)

	boom := errors.New("500 Internal Server Error")
	h = c.Start("broken")
	f.release("broken", "", boom)

	assert.Equal(t, Failed, waitHandle(t, h))
	assert.ErrorIs(t, h.Err(), boom)
	assert.Equal(t, Error, c.Phase())
	assert.ErrorIs(t, c.LastError(), boom)
	assert.Equal(t, []string{"good"}, rec.values())
}

func TestController_TriggerSkipsUnchangedKey(t *testing.T) {
	f := newGatedFetcher("a", "b")
	rec := &recorder{}
	c := New[string]("test", f.fetch, rec.apply, zap.NewNop())

	h1, started := c.Trigger("a")
	require.True(t, started)

	h2, started := c.Trigger("a")
	assert.False(t, started)
	assert.Same(t, h1, h2)

	_, started = c.Trigger("b")
	assert.True(t, started)

	f.release("a", "A", nil)
	f.release("b", "B", nil)
	c.Wait()

	assert.Equal(t, []string{"B"}, rec.values())
}

func TestController_Cancel(t *testing.T) {
	f := newGatedFetcher("a")
	rec := &recorder{}
	c := New[string]("test", f.fetch, rec.apply, zap.NewNop())

	h := c.Start("a")
	c.Cancel(h)
	assert.Equal(t, Idle, c.Phase())

	f.release("a", "A", nil)
	assert.Equal(t, Cancelled, waitHandle(t, h))
	assert.NoError(t, h.Err())
	assert.Empty(t, rec.values())

	// the same key starts again after a cancellation
	f.gates["a"] = make(chan reply, 1)
	_, started := c.Trigger("a")
	assert.True(t, started)
	f.release("a", "A2", nil)
	c.Wait()
	assert.Equal(t, []string{"A2"}, rec.values())
}

func TestController_CancelPropagatesToRequest(t *testing.T) {
	started := make(chan struct{})
	fetch := func(ctx context.Context, _ string) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}
	rec := &recorder{}
	c := New[string]("test", fetch, rec.apply, zap.NewNop())

	h := c.Start("a")
	<-started
	c.Close()

	assert.Equal(t, Cancelled, h.Outcome())
	assert.NoError(t, h.Err())
	assert.Empty(t, rec.values())

	after := c.Start("b")
	assert.Equal(t, Cancelled, after.Outcome())
}

func TestController_SettledAfterFirstResult(t *testing.T) {
	f := newGatedFetcher("a", "b")
	rec := &recorder{}
	c := New[string]("test", f.fetch, rec.apply, zap.NewNop())

	assert.False(t, c.Settled())

	h := c.Start("a")
	f.release("a", "", errors.New("502 Bad Gateway"))
	waitHandle(t, h)
	assert.True(t, c.Settled())

	// a later fetch in flight does not unsettle the view
	h = c.Start("b")
	assert.Equal(t, Loading, c.Phase())
	assert.True(t, c.Settled())

	f.release("b", "B", nil)
	waitHandle(t, h)
}

func TestController_SupersededFetchDoesNotSettle(t *testing.T) {
	f := newGatedFetcher("a")
	rec := &recorder{}
	c := New[string]("test", f.fetch, rec.apply, zap.NewNop())

	h := c.Start("a")
	c.Cancel(h)
	f.release("a", "A", nil)

	assert.Equal(t, Cancelled, waitHandle(t, h))
	assert.False(t, c.Settled())
}

func TestController_Renew(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	gate := make(chan struct{})
	fetch := func(ctx context.Context, key string) (string, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			<-gate
			return "old-" + key, nil
		}
		return "new-" + key, nil
	}
	rec := &recorder{}
	c := New[string]("test", fetch, rec.apply, zap.NewNop())

	h, ok := c.Renew(c.Generation())
	assert.False(t, ok)
	assert.Nil(t, h)

	first := c.Start("a")
	since := c.Generation()

	renewed, ok := c.Renew(since - 1)
	assert.False(t, ok, "fetch started after the mark must not be renewed")
	assert.Nil(t, renewed)

	renewed, ok = c.Renew(since)
	require.True(t, ok)
	assert.Greater(t, renewed.Generation(), first.Generation())
	assert.Equal(t, Succeeded, waitHandle(t, renewed))

	close(gate)
	assert.Equal(t, Cancelled, waitHandle(t, first))

	c.Wait()
	assert.Equal(t, []string{"new-a"}, rec.values())

	// the renewed fetch keeps the key, so triggering it again is a no-op
	_, started := c.Trigger("a")
	assert.False(t, started)
}

func TestController_WaitWithConcurrentTriggers(t *testing.T) {
	fetch := func(ctx context.Context, key string) (string, error) {
		return key, nil
	}
	rec := &recorder{}
	c := New[string]("test", fetch, rec.apply, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Start(string(rune('a' + i)))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Wait()
			}
		}()
	}
	wg.Wait()

	c.Close()
	assert.Equal(t, Cancelled, c.Start("z").Outcome())
}
