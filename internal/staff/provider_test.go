package staff

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

type blockingFetcher struct {
	release chan struct{}
	isStaff bool
	err     error

	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
}

func newBlockingFetcher(isStaff bool) *blockingFetcher {
	return &blockingFetcher{release: make(chan struct{}), isStaff: isStaff}
}

func (f *blockingFetcher) IsUserStaff(ctx context.Context) (bool, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-f.release:
		return f.isStaff, f.err
	}
}

func (f *blockingFetcher) stats() (calls, maxInFlight int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.maxInFlight
}

func waitResolved(t *testing.T, p *Provider) Flag {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	flag, err := p.Wait(ctx)
	require.NoError(t, err)
	return flag
}

func TestProvider_ResolvesOnce(t *testing.T) {
	f := newBlockingFetcher(true)
	p := NewProvider(f, zap.NewNop())
	defer p.Close()

	assert.False(t, p.Flag().Resolved)
	assert.False(t, p.Flag().Allowed())

	p.Mount()
	p.Mount()
	close(f.release)

	flag := waitResolved(t, p)
	assert.True(t, flag.Resolved)
	assert.True(t, flag.IsStaff)
	assert.True(t, flag.Allowed())

	p.Unmount()
	p.Unmount()
	p.Mount()

	calls, _ := f.stats()
	assert.Equal(t, 1, calls)
}

func TestProvider_RapidMountUnmountKeepsOneRequestInFlight(t *testing.T) {
	f := newBlockingFetcher(false)
	p := NewProvider(f, zap.NewNop())
	defer p.Close()

	for i := 0; i < 5; i++ {
		p.Mount()
		p.Unmount()
	}
	p.Mount()
	close(f.release)

	flag := waitResolved(t, p)
	assert.True(t, flag.Resolved)
	assert.False(t, flag.IsStaff)
	assert.False(t, flag.Allowed())

	p.Close()
	_, maxInFlight := f.stats()
	assert.Equal(t, 1, maxInFlight)
}

func TestProvider_UnmountBeforeResolutionCancels(t *testing.T) {
	f := newBlockingFetcher(true)
	p := NewProvider(f, zap.NewNop())

	p.Mount()
	p.Unmount()
	p.Close()

	assert.False(t, p.Flag().Resolved)
	select {
	case <-p.Resolved():
		t.Fatal("flag must stay unresolved")
	default:
	}
}

func TestProvider_FailureLeavesFlagUnresolved(t *testing.T) {
	f := newBlockingFetcher(true)
	f.err = errors.New("403 Forbidden")
	p := NewProvider(f, zap.NewNop())

	p.Mount()
	close(f.release)
	p.Close()

	assert.Equal(t, Flag{}, p.Flag())
}
