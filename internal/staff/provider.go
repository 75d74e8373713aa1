package staff

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Flag is the session's staff status. Resolved is false until the backend
// answered; staff-only controls stay hidden while it is false.
type Flag struct {
	Resolved bool `json:"resolved"`
	IsStaff  bool `json:"is_staff"`
}

// Allowed reports whether staff-only controls may be shown.
func (f Flag) Allowed() bool {
	return f.Resolved && f.IsStaff
}

// Source is the read-only view of the flag handed to dashboard views.
type Source interface {
	Flag() Flag
}

type Fetcher interface {
	IsUserStaff(ctx context.Context) (bool, error)
}

// Provider resolves the flag once per session. Mounts are reference counted:
// the request is cancelled when the last mount goes away before resolution,
// and at most one request is ever in flight.
type Provider struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu       sync.Mutex
	flag     Flag
	refs     int
	running  bool
	cancel   context.CancelFunc
	resolved chan struct{}
	wg       sync.WaitGroup
}

func NewProvider(fetcher Fetcher, logger *zap.Logger) *Provider {
	return &Provider{
		fetcher:  fetcher,
		logger:   logger,
		resolved: make(chan struct{}),
	}
}

func (p *Provider) Flag() Flag {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flag
}

// Mount registers a consumer and starts the request if the flag is unresolved
// and no request is running.
func (p *Provider) Mount() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.refs++
	if p.flag.Resolved || p.running {
		return
	}
	p.startLocked()
}

// Unmount releases a consumer. Dropping the last one cancels an unresolved
// request.
func (p *Provider) Unmount() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.refs == 0 {
		return
	}
	p.refs--
	if p.refs == 0 && p.cancel != nil {
		p.cancel()
	}
}

// Resolved is closed once the flag is resolved.
func (p *Provider) Resolved() <-chan struct{} {
	return p.resolved
}

// Wait blocks until the flag is resolved or ctx is done.
func (p *Provider) Wait(ctx context.Context) (Flag, error) {
	select {
	case <-p.resolved:
		return p.Flag(), nil
	case <-ctx.Done():
		return p.Flag(), ctx.Err()
	}
}

// Close cancels any running request and waits for it to return.
func (p *Provider) Close() {
	p.mu.Lock()
	p.refs = 0
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Provider) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.running = true

	p.wg.Add(1)
	go p.run(ctx)
}

func (p *Provider) run(ctx context.Context) {
	defer p.wg.Done()

	isStaff, err := p.fetcher.IsUserStaff(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	cancelled := ctx.Err() != nil
	p.cancel()
	p.cancel = nil
	p.running = false

	switch {
	case cancelled:
		p.logger.Debug("staff flag request cancelled")
		// a consumer mounted again while the cancelled request was winding down
		if p.refs > 0 {
			p.startLocked()
		}
	case err != nil:
		p.logger.Warn("failed to resolve staff flag", zap.Error(err))
	default:
		p.flag = Flag{Resolved: true, IsStaff: isStaff}
		close(p.resolved)
		p.logger.Info("staff flag resolved", zap.Bool("is_staff", isStaff))
	}
}
