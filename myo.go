package myo

import (
	"errors"
	"time"

	"github.com/dudk/myo/feature"
)

// Source yields raw samples one at a time. Read blocks until a sample is
// available or returns one of the sentinel errors:
//
//	ErrNoData     no sample available yet, try again;
//	ErrMalformed  the unit could not be parsed and was discarded;
//	io.EOF        the stream is exhausted.
//
// Any other error is fatal for the source. A single malformed unit must
// never be reported as a fatal error.
type Source interface {
	Read() (float64, error)
	Close() error
}

// Classifier maps a filtered window and its feature vector to a discrete
// class index. Predict returns ErrUnavailable if no decision could be
// produced and ErrBadShape if the input dimensions are not accepted.
type Classifier interface {
	Predict(window []float64, features feature.Vector) (int, error)
}

// Negotiator is implemented by classifiers which verify input dimensions
// once, when the classifier is attached to a pipe.
type Negotiator interface {
	Negotiate(windowLen, featureLen int) error
}

// Sentinel errors shared by sources and classifiers.
var (
	// ErrNoData is returned by Source.Read when no sample is available yet.
	ErrNoData = errors.New("no data available")
	// ErrMalformed is returned by Source.Read when a unit was discarded.
	ErrMalformed = errors.New("malformed sample")
	// ErrUnavailable is returned by Classifier.Predict when no decision
	// could be produced.
	ErrUnavailable = errors.New("classifier unavailable")
	// ErrBadShape is returned when input dimensions are rejected.
	ErrBadShape = errors.New("input shape rejected")
)

// Result is an immutable snapshot of one processed window.
type Result struct {
	Raw        []float64      // raw window as collected
	Filtered   []float64      // window after band-pass filtering
	Features   feature.Vector // features of the filtered window
	Class      int            // predicted class index
	Classified bool           // false if no classifier or prediction failed
	Time       time.Time      // capture timestamp
}

// Stats is a snapshot of pipeline counters and queue depths. Counters are
// monotonic for the lifetime of a run.
type Stats struct {
	Collected   uint64 `json:"collected"`    // valid samples read from the source
	Processed   uint64 `json:"processed"`    // windows processed
	Dropped     uint64 `json:"dropped"`      // samples dropped on full channel
	WindowFill  int    `json:"window_fill"`  // current rolling window length
	SampleQueue int    `json:"sample_queue"` // current sample channel depth
	ResultQueue int    `json:"result_queue"` // current result channel depth
}
