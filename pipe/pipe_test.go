package pipe_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dudk/myo"
	"github.com/dudk/myo/feature"
	"github.com/dudk/myo/filter"
	"github.com/dudk/myo/mock"
	"github.com/dudk/myo/pipe"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() myo.Config {
	cfg := myo.DefaultConfig()
	return cfg
}

// sine returns n samples of a sine at freq Hz.
func sine(n int, freq, sampleRate float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return s
}

func waitResult(t *testing.T, p *pipe.Pipe) myo.Result {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r, ok := p.Latest(); ok {
			return r
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no result produced")
	return myo.Result{}
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*myo.Config)
	}{
		{"step exceeds buffer", func(c *myo.Config) { c.StepSize = c.BufferSize + 1 }},
		{"zero step", func(c *myo.Config) { c.StepSize = 0 }},
		{"zero sample queue", func(c *myo.Config) { c.SampleQueue = 0 }},
		{"zero result queue", func(c *myo.Config) { c.ResultQueue = 0 }},
		{"high cutoff at nyquist", func(c *myo.Config) { c.HighFreq = 500 }},
		{"inverted band", func(c *myo.Config) { c.LowFreq = 460; c.HighFreq = 450 }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := testConfig()
			test.mutate(&cfg)
			_, err := pipe.New(cfg, &mock.Source{})
			assert.Error(t, err)
		})
	}

	_, err := pipe.New(testConfig(), nil)
	assert.Error(t, err)
}

func TestSineWindow(t *testing.T) {
	cfg := testConfig()
	samples := sine(cfg.BufferSize, 100, float64(cfg.SampleRate))
	source := &mock.Source{Samples: samples}

	p, err := pipe.New(cfg, source)
	require.NoError(t, err)
	require.NoError(t, p.Start())
	defer func() { require.NoError(t, p.Stop()) }()

	r := waitResult(t, p)

	assert.Equal(t, samples, r.Raw)
	assert.Equal(t, cfg.BufferSize, len(r.Filtered))
	assert.False(t, r.Classified)
	assert.False(t, r.Time.IsZero())

	// the pipeline must produce what direct filtering of the same stream
	// produces
	chain, err := filter.BandPass(cfg.FilterOrder, cfg.LowFreq, cfg.HighFreq, float64(cfg.SampleRate))
	require.NoError(t, err)
	expected := feature.Extract(chain.Apply(chain.StepState(), samples))
	assert.InDelta(t, expected.MAV, r.Features.MAV, 1e-9)
	assert.InDelta(t, expected.STD, r.Features.STD, 1e-9)
	assert.Equal(t, expected.SSC, r.Features.SSC)
	assert.Equal(t, expected.ZC, r.Features.ZC)

	// exactly one window from exactly buffer_size samples
	_, ok := p.Latest()
	assert.False(t, ok)

	assert.Eventually(t, func() bool {
		s := p.Stats()
		return s.Collected == uint64(cfg.BufferSize) && s.Processed == 1
	}, time.Second, 5*time.Millisecond)
	s := p.Stats()
	assert.Equal(t, cfg.BufferSize-cfg.StepSize, s.WindowFill)
	assert.Zero(t, s.Dropped)
}

func TestOverlap(t *testing.T) {
	cfg := testConfig()
	cfg.BufferSize = 8
	cfg.StepSize = 3
	cfg.SampleQueue = 64
	cfg.ResultQueue = 8

	samples := sine(14, 100, float64(cfg.SampleRate))
	p, err := pipe.New(cfg, &mock.Source{Samples: samples})
	require.NoError(t, err)
	require.NoError(t, p.Start())
	defer func() { require.NoError(t, p.Stop()) }()

	// windows trigger at samples 8, 11 and 14: [0..8), [3..11), [6..14)
	first := waitResult(t, p)
	second := waitResult(t, p)
	third := waitResult(t, p)

	assert.Equal(t, samples[0:8], first.Raw)
	assert.Equal(t, samples[3:11], second.Raw)
	assert.Equal(t, samples[6:14], third.Raw)
	// consecutive windows overlap by buffer_size - step_size samples
	assert.Equal(t, first.Raw[cfg.StepSize:], second.Raw[:cfg.BufferSize-cfg.StepSize])
}

func TestClassifier(t *testing.T) {
	cfg := testConfig()
	classifier := &mock.Classifier{Class: 3}
	p, err := pipe.New(cfg, &mock.Source{Samples: sine(cfg.BufferSize, 100, 1000)}, pipe.WithClassifier(classifier))
	require.NoError(t, err)
	require.NoError(t, p.Start())
	defer func() { require.NoError(t, p.Stop()) }()

	r := waitResult(t, p)
	assert.True(t, r.Classified)
	assert.Equal(t, 3, r.Class)
	assert.Equal(t, 1, classifier.Predictions)
	assert.Equal(t, cfg.BufferSize+feature.Len, len(classifier.LastInput))
}

func TestClassifierFailureSkipsPrediction(t *testing.T) {
	cfg := testConfig()
	classifier := &mock.Classifier{ErrorOnPredict: myo.ErrBadShape}
	p, err := pipe.New(cfg, &mock.Source{Samples: sine(cfg.BufferSize, 100, 1000)}, pipe.WithClassifier(classifier))
	require.NoError(t, err)
	require.NoError(t, p.Start())
	defer func() { require.NoError(t, p.Stop()) }()

	r := waitResult(t, p)
	assert.False(t, r.Classified)
}

func TestAttachNegotiation(t *testing.T) {
	p, err := pipe.New(testConfig(), &mock.Source{})
	require.NoError(t, err)

	rejected := &mock.Classifier{ErrorOnNegotiate: myo.ErrBadShape}
	err = p.Attach(rejected)
	assert.ErrorIs(t, err, myo.ErrBadShape)

	assert.NoError(t, p.Attach(&mock.Classifier{}))
	p.Detach()
}

func TestMalformedSamplesSkipped(t *testing.T) {
	cfg := testConfig()
	cfg.BufferSize = 10
	cfg.StepSize = 5
	// every third read fails to parse: the stream continues and malformed
	// units are not counted as collected
	source := &mock.Source{Value: 1, Limit: 10, MalformedEvery: 3}
	p, err := pipe.New(cfg, source)
	require.NoError(t, err)
	require.NoError(t, p.Start())
	defer func() { require.NoError(t, p.Stop()) }()

	waitResult(t, p)
	s := p.Stats()
	assert.Equal(t, uint64(10), s.Collected)
	assert.Equal(t, uint64(1), s.Processed)
}

func TestSourceFailureSurfaced(t *testing.T) {
	fatal := errors.New("device disconnected")
	p, err := pipe.New(testConfig(), &mock.Source{ErrorOnRead: fatal})
	require.NoError(t, err)
	require.NoError(t, p.Start())
	defer func() { require.NoError(t, p.Stop()) }()

	assert.Eventually(t, func() bool {
		return errors.Is(p.Err(), fatal)
	}, time.Second, 5*time.Millisecond)
	// processing stage keeps running after the source died
	assert.Equal(t, pipe.Running, p.State())
}

func TestLifecycle(t *testing.T) {
	source := &mock.Source{Value: 1, Limit: 100}
	p, err := pipe.New(testConfig(), source)
	require.NoError(t, err)

	// stopping a never-started pipe is a safe no-op
	assert.NoError(t, p.Stop())
	assert.Equal(t, pipe.Stopped, p.State())

	require.NoError(t, p.Start())
	assert.Equal(t, pipe.Running, p.State())

	// second start is ignored, exactly one stage pair remains
	require.NoError(t, p.Start())
	assert.Equal(t, pipe.Running, p.State())

	assert.Eventually(t, func() bool {
		return p.Stats().Collected == 100
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, p.Stop())
	assert.Equal(t, pipe.Stopped, p.State())
	assert.True(t, source.Closed)
}
