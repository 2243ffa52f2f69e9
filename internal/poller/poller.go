// Package poller drives the periodic Nightscout fetch and commits each
// attempt's outcome to the display state.
package poller

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jwulff/nightscoutbar-go/internal/config"
	"github.com/jwulff/nightscoutbar-go/internal/diagnostics"
	"github.com/jwulff/nightscoutbar-go/internal/logger"
	"github.com/jwulff/nightscoutbar-go/internal/nightscout"
	"github.com/jwulff/nightscoutbar-go/internal/state"
)

// Defaults.
const (
	DefaultInterval = 30 * time.Second
	DefaultTimeout  = nightscout.DefaultTimeout
)

// Fetcher sends a built request and returns the read response.
// *nightscout.Client implements it.
type Fetcher interface {
	Do(req *http.Request) (*nightscout.Response, error)
}

// Config is the poller's runtime configuration.
type Config struct {
	Interval time.Duration // between scheduled fetches, not adjusted for request time
	Timeout  time.Duration // per attempt, must not exceed Interval

	MaxDiagnosticLines int
	MaxDiagnosticLine  int

	// Location renders the staleness suffix; nil means time.Local.
	Location *time.Location
	// Now is the clock used for staleness; nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns the 30s/20s schedule.
func DefaultConfig() Config {
	return Config{
		Interval: DefaultInterval,
		Timeout:  DefaultTimeout,
	}
}

// Poller owns the repeating schedule. Scheduled fetches run one at a time;
// FetchOnce may run alongside them, and the newest attempt always wins.
type Poller struct {
	cfg      Config
	settings config.Provider
	fetcher  Fetcher
	store    *state.Store
	log      *logger.Logger

	generation atomic.Uint64
	// stopped discards manual fetches that finish after Stop.
	stopped atomic.Bool

	mu      sync.Mutex
	current *schedule
	loops   []*schedule
}

// schedule is one Start..Stop span. Its fetches are discarded once it is
// stopped, even if a later Start began a new schedule.
type schedule struct {
	stopped atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a poller. log may be nil.
func New(cfg Config, settings config.Provider, fetcher Fetcher, store *state.Store, log *logger.Logger) (*Poller, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("poller: timeout must be > 0")
	}
	if cfg.Timeout > cfg.Interval {
		return nil, errors.New("poller: timeout must not exceed interval")
	}
	if settings == nil {
		return nil, errors.New("poller: settings provider required")
	}
	if fetcher == nil {
		return nil, errors.New("poller: fetcher required")
	}
	if store == nil {
		return nil, errors.New("poller: state store required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Poller{
		cfg:      cfg,
		settings: settings,
		fetcher:  fetcher,
		store:    store,
		log:      log,
	}, nil
}

// Start fetches immediately and then every Interval until Stop or until ctx
// is done. Calling Start while running is a no-op and returns false.
func (p *Poller) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	sched := &schedule{cancel: cancel, done: make(chan struct{})}
	p.current = sched
	p.loops = append(liveLoops(p.loops), sched)
	p.stopped.Store(false)

	go p.run(runCtx, sched)

	p.log.Infow("poller_started", "interval", p.cfg.Interval, "timeout", p.cfg.Timeout)
	return true
}

// Stop cancels the schedule. A fetch already in flight runs to completion
// but its result is discarded. Stop is idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return
	}
	p.current.stopped.Store(true)
	p.stopped.Store(true)
	p.current.cancel()
	p.current = nil

	p.log.Infow("poller_stopped")
}

// Wait blocks until every schedule loop started so far has exited.
func (p *Poller) Wait() {
	p.mu.Lock()
	loops := append([]*schedule(nil), p.loops...)
	p.mu.Unlock()

	for _, l := range loops {
		<-l.done
	}
}

// Running reports whether the schedule is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}

func liveLoops(loops []*schedule) []*schedule {
	live := loops[:0]
	for _, l := range loops {
		select {
		case <-l.done:
		default:
			live = append(live, l)
		}
	}
	return live
}

func (p *Poller) run(ctx context.Context, sched *schedule) {
	defer close(sched.done)

	// In-flight requests are not aborted by Stop.
	fetchCtx := context.WithoutCancel(ctx)

	p.fetch(fetchCtx, &sched.stopped)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			p.fetch(fetchCtx, &sched.stopped)
		}
	}
}

// FetchOnce runs one fetch-and-update cycle and returns the resulting state.
// Failures never escape; they are recorded in the state. If the poller was
// stopped, or a newer attempt already committed, the result is discarded and
// the current state is returned.
func (p *Poller) FetchOnce(ctx context.Context) state.DisplayState {
	return p.fetch(ctx, &p.stopped)
}

func (p *Poller) fetch(ctx context.Context, stopped *atomic.Bool) state.DisplayState {
	gen := p.generation.Add(1)
	attemptID := uuid.NewString()

	update := p.attempt(ctx, gen, attemptID)

	if stopped.Load() {
		p.log.Infow("fetch_discarded", "attempt", attemptID, "generation", gen, "reason", "stopped")
		return p.store.Snapshot()
	}

	st, applied := p.store.Commit(update)
	if !applied {
		p.log.Infow("fetch_discarded", "attempt", attemptID, "generation", gen, "reason", "superseded")
		return st
	}

	if st.Status == diagnostics.StatusOK {
		p.log.Infow("fetch_committed",
			"attempt", attemptID,
			"generation", gen,
			"value", st.FormattedValue(),
			"trend", st.TrendGlyph,
			"stale", st.StalenessSuffix != "",
		)
	} else {
		p.log.Warnw("fetch_failed", "attempt", attemptID, "generation", gen, "diagnostics", st.Diagnostics)
	}
	return st
}
