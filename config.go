package myo

import "fmt"

// Config holds the pipeline parameters. Zero value is not usable, start
// from DefaultConfig.
type Config struct {
	BufferSize  int     // rolling window capacity in samples
	StepSize    int     // samples evicted after each processed window
	SampleRate  int     // sampling frequency, Hz
	LowFreq     float64 // band-pass low cutoff, Hz
	HighFreq    float64 // band-pass high cutoff, Hz
	FilterOrder int     // band-pass filter order
	SampleQueue int     // sample channel capacity
	ResultQueue int     // result channel capacity
}

// DefaultConfig returns the parameters used for EMG acquisition at 1 kHz.
func DefaultConfig() Config {
	return Config{
		BufferSize:  250,
		StepSize:    125,
		SampleRate:  1000,
		LowFreq:     20,
		HighFreq:    450,
		FilterOrder: 4,
		SampleQueue: 1000,
		ResultQueue: 100,
	}
}

// Validate checks configuration before any stage is started.
func (c Config) Validate() error {
	if c.BufferSize < 3 {
		return fmt.Errorf("buffer size %d: must be at least 3", c.BufferSize)
	}
	if c.StepSize <= 0 || c.StepSize > c.BufferSize {
		return fmt.Errorf("step size %d: must be in (0, %d]", c.StepSize, c.BufferSize)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate %d: must be positive", c.SampleRate)
	}
	if c.LowFreq <= 0 || c.HighFreq <= c.LowFreq {
		return fmt.Errorf("cutoffs [%v, %v]: must satisfy 0 < low < high", c.LowFreq, c.HighFreq)
	}
	if nyquist := float64(c.SampleRate) / 2; c.HighFreq >= nyquist {
		return fmt.Errorf("high cutoff %v: must be below nyquist %v", c.HighFreq, nyquist)
	}
	if c.FilterOrder < 1 {
		return fmt.Errorf("filter order %d: must be at least 1", c.FilterOrder)
	}
	if c.SampleQueue <= 0 {
		return fmt.Errorf("sample queue capacity %d: must be positive", c.SampleQueue)
	}
	if c.ResultQueue <= 0 {
		return fmt.Errorf("result queue capacity %d: must be positive", c.ResultQueue)
	}
	return nil
}
