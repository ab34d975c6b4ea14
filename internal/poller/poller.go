// Package poller keeps a passenger's view of available drivers fresh by
// re-fetching the snapshot on a fixed interval.
//
// Fetches may overlap when one is slower than the interval. Every fetch is
// numbered when it starts and a result is applied only if no later-started
// fetch has been applied already, so a slow response never overwrites a
// newer one. Results that arrive after Stop are dropped.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/pkg/logger"
)

// DefaultInterval matches the passenger screen refresh rate
const DefaultInterval = 5 * time.Second

// Fetch outcomes reported to a Recorder
const (
	ResultApplied   = "applied"
	ResultError     = "error"
	ResultStale     = "stale"
	ResultDiscarded = "discarded"
)

var ErrAlreadyPolling = errors.New("poller already started")

// State is the poller lifecycle state
type State int

const (
	StateIdle State = iota
	StatePolling
)

func (s State) String() string {
	if s == StatePolling {
		return "polling"
	}
	return "idle"
}

// Fetcher loads the unfiltered driver snapshot
type Fetcher interface {
	FetchDrivers(ctx context.Context) ([]*driver.Record, error)
}

// FetchFunc adapts a function to Fetcher
type FetchFunc func(ctx context.Context) ([]*driver.Record, error)

func (f FetchFunc) FetchDrivers(ctx context.Context) ([]*driver.Record, error) {
	return f(ctx)
}

// Recorder counts fetch outcomes
type Recorder interface {
	RecordPollerFetch(result string)
}

// Config holds poller configuration
type Config struct {
	Interval time.Duration
	Filter   driver.Filter

	// OnUpdate receives the filtered view after every applied fetch and
	// every filter change. OnError receives failed fetches. Both are called
	// one at a time, in order, and must not call SetFilter.
	OnUpdate func(records []*driver.Record)
	OnError  func(err error)

	Recorder Recorder
	Logger   *logger.Logger
}

// Poller is the passenger-side polling loop
type Poller struct {
	fetcher Fetcher
	config  Config
	logger  *logger.Logger

	// deliver serializes callbacks so they observe applies in order
	deliver sync.Mutex

	mu         sync.Mutex
	state      State
	filter     driver.Filter
	last       []*driver.Record
	haveLast   bool
	nextSeq    uint64
	appliedSeq uint64
	generation uint64
	cancel     context.CancelFunc
	loopDone   chan struct{}
	refreshCh  chan struct{}
	inFlight   sync.WaitGroup
}

// New creates an idle poller
func New(fetcher Fetcher, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Poller{
		fetcher: fetcher,
		config:  cfg,
		logger:  log.Named("poller"),
		filter:  cfg.Filter,
	}
}

// Start enters Polling: one fetch now, then one per interval until Stop or
// until ctx is cancelled. Fetches already started are not aborted by either.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StatePolling {
		return ErrAlreadyPolling
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.state = StatePolling
	p.generation++
	p.cancel = cancel
	p.loopDone = make(chan struct{})
	p.refreshCh = make(chan struct{}, 1)

	go p.loop(loopCtx, context.WithoutCancel(ctx), p.generation, p.loopDone, p.refreshCh)

	p.logger.Debug("Poller started", logger.Duration("interval", p.config.Interval))
	return nil
}

// Stop returns to Idle and cancels the timer. In-flight fetches run to
// completion but their results are discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.state == StateIdle {
		p.mu.Unlock()
		return
	}
	p.state = StateIdle
	p.generation++
	p.cancel()
	done := p.loopDone
	p.mu.Unlock()

	<-done
	p.logger.Debug("Poller stopped")
}

// Refresh asks for an immediate out-of-cycle fetch. It is a no-op while
// Idle, and coalesces with a refresh that has not started yet.
func (p *Poller) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StatePolling {
		return
	}
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

// SetFilter re-applies the filter to the last received snapshot without
// fetching, and returns the new view.
func (p *Poller) SetFilter(f driver.Filter) []*driver.Record {
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	p.filter = f
	view := f.Apply(p.last)
	have := p.haveLast
	p.mu.Unlock()

	if have && p.config.OnUpdate != nil {
		p.config.OnUpdate(view)
	}
	return view
}

// Drivers returns the current filtered view
func (p *Poller) Drivers() []*driver.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter.Apply(p.last)
}

// State returns the lifecycle state
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Wait blocks until every fetch started so far has finished
func (p *Poller) Wait() {
	p.inFlight.Wait()
}

func (p *Poller) loop(ctx, fetchCtx context.Context, gen uint64, done chan<- struct{}, refresh <-chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.startFetch(fetchCtx, gen)
	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			if p.generation == gen && p.state == StatePolling {
				// parent context ended without Stop
				p.state = StateIdle
				p.generation++
			}
			p.mu.Unlock()
			return
		case <-ticker.C:
			p.startFetch(fetchCtx, gen)
		case <-refresh:
			p.startFetch(fetchCtx, gen)
		}
	}
}

func (p *Poller) startFetch(ctx context.Context, gen uint64) {
	p.mu.Lock()
	p.nextSeq++
	seq := p.nextSeq
	p.mu.Unlock()

	p.inFlight.Add(1)
	go func() {
		defer p.inFlight.Done()
		records, err := p.fetcher.FetchDrivers(ctx)
		p.apply(gen, seq, records, err)
	}()
}

func (p *Poller) apply(gen, seq uint64, records []*driver.Record, err error) {
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	switch {
	case gen != p.generation || p.state != StatePolling:
		p.mu.Unlock()
		p.logger.Debug("Dropping fetch result after stop", logger.Uint64("seq", seq))
		p.record(ResultDiscarded)
		return
	case seq <= p.appliedSeq:
		applied := p.appliedSeq
		p.mu.Unlock()
		p.logger.Debug("Dropping stale fetch result",
			logger.Uint64("seq", seq),
			logger.Uint64("applied_seq", applied),
		)
		p.record(ResultStale)
		return
	case err != nil:
		p.mu.Unlock()
		p.logger.Warn("Driver fetch failed", logger.Uint64("seq", seq), logger.Err(err))
		p.record(ResultError)
		if p.config.OnError != nil {
			p.config.OnError(err)
		}
		return
	}

	p.appliedSeq = seq
	p.last = records
	p.haveLast = true
	view := p.filter.Apply(records)
	p.mu.Unlock()

	p.record(ResultApplied)
	if p.config.OnUpdate != nil {
		p.config.OnUpdate(view)
	}
}

func (p *Poller) record(result string) {
	if p.config.Recorder != nil {
		p.config.Recorder.RecordPollerFetch(result)
	}
}
