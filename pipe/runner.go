package pipe

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dudk/myo"
	"github.com/dudk/myo/feature"
)

// ingest runs the acquisition stage: read samples from the source and
// publish them into the sample channel without ever blocking on it. A
// full channel drops the sample and counts it; a malformed unit is
// discarded and not counted as collected.
func (p *Pipe) ingest(cancel chan struct{}, samples chan<- float64) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for {
			select {
			case <-cancel:
				return
			default:
			}

			v, err := p.source.Read()
			switch {
			case err == nil:
			case errors.Is(err, myo.ErrMalformed):
				continue
			case errors.Is(err, myo.ErrNoData):
				select {
				case <-cancel:
					return
				case <-time.After(time.Millisecond):
				}
				continue
			case errors.Is(err, io.EOF):
				p.logger.Debug(fmt.Sprintf("%v source exhausted", p))
				return
			default:
				errc <- fmt.Errorf("source: %w", err)
				return
			}

			atomic.AddUint64(&p.collected, 1)
			select {
			case samples <- v:
			default:
				atomic.AddUint64(&p.dropped, 1)
			}
		}
	}()
	return errc
}

// process runs the processing stage: fill the rolling window from the
// sample channel and process it every time it reaches capacity. The wait
// for samples is bounded so a stop signal is noticed promptly even when
// the source went quiet.
func (p *Pipe) process(cancel chan struct{}, samples <-chan float64, results chan<- myo.Result) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for {
			select {
			case <-cancel:
				return
			case v := <-samples:
				p.window = append(p.window, v)
				atomic.StoreInt32(&p.windowFill, int32(len(p.window)))
				if len(p.window) == p.cfg.BufferSize {
					p.processWindow(results)
				}
			case <-time.After(pollTimeout):
			}
		}
	}()
	return errc
}

// processWindow filters the full window, extracts features, classifies if
// a classifier is attached and publishes the result. Transient faults
// skip the window: the window then slides by one sample, the way a
// saturated ring buffer would, so processing retries on the next sample.
func (p *Pipe) processWindow(results chan<- myo.Result) {
	raw := make([]float64, len(p.window))
	copy(raw, p.window)

	if !finite(raw) {
		p.logger.Debug(fmt.Sprintf("%v window skipped: non-finite sample", p))
		p.evict(1)
		return
	}

	filtered := p.chain.Apply(p.fstate, raw)
	if !finite(filtered) {
		p.logger.Debug(fmt.Sprintf("%v window skipped: non-finite filter output", p))
		p.evict(1)
		return
	}

	features := feature.Extract(filtered)

	var class int
	var classified bool
	p.clsMu.RLock()
	classifier := p.classifier
	p.clsMu.RUnlock()
	if classifier != nil {
		c, err := classifier.Predict(filtered, features)
		if err != nil {
			p.logger.Debug(fmt.Sprintf("%v prediction skipped: %v", p, err))
		} else {
			class, classified = c, true
		}
	}

	p.evict(p.cfg.StepSize)
	atomic.AddUint64(&p.processed, 1)
	if p.measure != nil {
		p.measure(int64(len(raw)))
	}

	r := myo.Result{
		Raw:        raw,
		Filtered:   filtered,
		Features:   features,
		Class:      class,
		Classified: classified,
		Time:       time.Now(),
	}
	// a full result channel drops the new result; pending results are
	// never evicted
	select {
	case results <- r:
	default:
	}
}

// evict removes up to n oldest samples from the rolling window.
func (p *Pipe) evict(n int) {
	if n > len(p.window) {
		n = len(p.window)
	}
	p.window = p.window[:copy(p.window, p.window[n:])]
	atomic.StoreInt32(&p.windowFill, int32(len(p.window)))
}

func finite(s []float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// merge error channels from all stages into one.
func mergeErrors(errcList ...<-chan error) chan error {
	var wg sync.WaitGroup
	errc := make(chan error, len(errcList))

	// function to wait for error channel
	output := func(ec <-chan error) {
		for e := range ec {
			errc <- e
		}
		wg.Done()
	}
	wg.Add(len(errcList))
	for _, ec := range errcList {
		go output(ec)
	}

	// wait and close out
	go func() {
		wg.Wait()
		close(errc)
	}()

	return errc
}
