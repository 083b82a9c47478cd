// Package pipe binds a sample source, a causal band-pass filter, feature
// extraction and an optional classifier into a two-stage real-time
// pipeline with explicit backpressure.
package pipe

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"

	"github.com/dudk/myo"
	"github.com/dudk/myo/feature"
	"github.com/dudk/myo/filter"
	"github.com/dudk/myo/log"
	"github.com/dudk/myo/metric"
)

const (
	// pollTimeout bounds how long the processing stage waits for a sample
	// before checking for cancellation.
	pollTimeout = 100 * time.Millisecond
	// stopTimeout bounds how long Stop waits for both stages to exit
	// before releasing resources anyway.
	stopTimeout = time.Second
)

// Pipe is a real-time processing pipeline:
//
//	source -> ingestion -> sample channel -> processing -> result channel
//
// Ingestion and processing run in their own goroutines. The rolling
// window and the filter state are owned exclusively by the processing
// stage; statistics counters are atomic and readable at any time.
type Pipe struct {
	uid    string
	cfg    myo.Config
	source myo.Source
	chain  filter.Chain
	logger log.Logger

	state int32

	mu      sync.Mutex // guards lifecycle transitions and channel swap
	samples chan float64
	results chan myo.Result
	cancel  chan struct{}
	done    chan struct{}

	clsMu      sync.RWMutex
	classifier myo.Classifier

	errMu sync.Mutex
	err   error

	collected  uint64
	processed  uint64
	dropped    uint64
	windowFill int32

	// owned by the processing stage while running
	window  []float64
	fstate  filter.State
	measure metric.MeasureFunc
}

// Option provides a way to set functional parameters to pipe.
type Option func(p *Pipe) error

// New creates a pipe over the source and validates the configuration
// before any stage is started. Returned pipe is in Stopped state.
func New(cfg myo.Config, source myo.Source, options ...Option) (*Pipe, error) {
	if source == nil {
		return nil, errors.New("pipe: nil source")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}
	chain, err := filter.BandPass(cfg.FilterOrder, cfg.LowFreq, cfg.HighFreq, float64(cfg.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}
	p := &Pipe{
		uid:    newUID(),
		cfg:    cfg,
		source: source,
		chain:  chain,
		logger: log.GetLogger(),
	}
	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// WithLogger sets logger to Pipe. If this option is not provided, the
// default logrus logger is used.
func WithLogger(l log.Logger) Option {
	return func(p *Pipe) error {
		p.logger = l
		return nil
	}
}

// WithClassifier attaches a classifier at construction time.
func WithClassifier(c myo.Classifier) Option {
	return func(p *Pipe) error {
		return p.Attach(c)
	}
}

// Start spawns the ingestion and processing stages. Starting a pipe that
// is already running is a no-op with a warning.
func (p *Pipe) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if State(atomic.LoadInt32(&p.state)) != Stopped {
		p.logger.Warn(fmt.Sprintf("%v is already %v, start ignored", p, p.State()))
		return nil
	}
	p.setState(Starting)

	p.samples = make(chan float64, p.cfg.SampleQueue)
	p.results = make(chan myo.Result, p.cfg.ResultQueue)
	p.cancel = make(chan struct{})
	p.done = make(chan struct{})
	p.errMu.Lock()
	p.err = nil
	p.errMu.Unlock()

	// processing-stage state is initialized here, before the stage runs:
	// the window is empty and the filter is primed for a step from silence
	p.window = make([]float64, 0, p.cfg.BufferSize)
	p.fstate = p.chain.StepState()
	atomic.StoreInt32(&p.windowFill, 0)
	p.measure = metric.Meter(p)

	errc := mergeErrors(
		p.ingest(p.cancel, p.samples),
		p.process(p.cancel, p.samples, p.results),
	)
	done := p.done
	go func() {
		for err := range errc {
			if err != nil {
				p.errMu.Lock()
				if p.err == nil {
					p.err = err
				}
				p.errMu.Unlock()
				p.logger.Warn(fmt.Sprintf("%v stage failure: %v", p, err))
			}
		}
		close(done)
	}()

	p.setState(Running)
	p.logger.Info(fmt.Sprintf("%v started", p))
	return nil
}

// Stop signals both stages to halt, waits up to stopTimeout for them to
// exit and releases the source. Stopping a pipe that was never started is
// a safe no-op. Only Stop guarantees full resource release.
func (p *Pipe) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if State(atomic.LoadInt32(&p.state)) == Stopped {
		return nil
	}
	p.setState(Stopping)

	close(p.cancel)
	select {
	case <-p.done:
	case <-time.After(stopTimeout):
		p.logger.Warn(fmt.Sprintf("%v stages did not stop within %v", p, stopTimeout))
	}

	err := p.source.Close()
	p.setState(Stopped)
	p.logger.Info(fmt.Sprintf("%v stopped", p))
	return err
}

// State returns the current lifecycle state.
func (p *Pipe) State() State {
	return State(atomic.LoadInt32(&p.state))
}

func (p *Pipe) setState(s State) {
	atomic.StoreInt32(&p.state, int32(s))
}

// Err returns the first fatal stage error of the current run, if any.
// A source failure terminates ingestion only: processing keeps draining
// buffered samples, and the death is surfaced here.
func (p *Pipe) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// Latest pops the next available result without blocking. Results are
// delivered in processing order; false means no new result.
func (p *Pipe) Latest() (myo.Result, bool) {
	p.mu.Lock()
	results := p.results
	p.mu.Unlock()
	if results == nil {
		return myo.Result{}, false
	}
	select {
	case r := <-results:
		return r, true
	default:
		return myo.Result{}, false
	}
}

// Stats returns a snapshot of the pipeline counters and queue depths. It
// never blocks the stages.
func (p *Pipe) Stats() myo.Stats {
	p.mu.Lock()
	samples, results := p.samples, p.results
	p.mu.Unlock()
	s := myo.Stats{
		Collected:  atomic.LoadUint64(&p.collected),
		Processed:  atomic.LoadUint64(&p.processed),
		Dropped:    atomic.LoadUint64(&p.dropped),
		WindowFill: int(atomic.LoadInt32(&p.windowFill)),
	}
	if samples != nil {
		s.SampleQueue = len(samples)
	}
	if results != nil {
		s.ResultQueue = len(results)
	}
	return s
}

// Attach sets the classifier used for subsequent windows. If the
// classifier negotiates input shapes, negotiation happens here, once, and
// a rejected shape leaves the pipe unchanged.
func (p *Pipe) Attach(c myo.Classifier) error {
	if c == nil {
		return errors.New("pipe: nil classifier")
	}
	if n, ok := c.(myo.Negotiator); ok {
		if err := n.Negotiate(p.cfg.BufferSize, feature.Len); err != nil {
			return fmt.Errorf("pipe: attach: %w", err)
		}
	}
	p.clsMu.Lock()
	p.classifier = c
	p.clsMu.Unlock()
	return nil
}

// Detach removes the classifier; subsequent results are unclassified.
func (p *Pipe) Detach() {
	p.clsMu.Lock()
	p.classifier = nil
	p.clsMu.Unlock()
}

// Convert pipe to string.
func (p *Pipe) String() string {
	return "pipe " + p.uid
}

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}
