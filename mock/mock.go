// Package mock provides mocks for pipeline components and allows to
// execute integration tests.
package mock

import (
	"io"
	"time"

	"github.com/dudk/myo"
	"github.com/dudk/myo/feature"
)

// Source mocks a myo.Source interface. It yields either an explicit
// sample sequence or Limit repetitions of Value, then io.EOF.
type Source struct {
	Samples        []float64     // explicit sequence to yield
	Value          float64       // constant sample when Samples is nil
	Limit          int           // number of Value samples
	Interval       time.Duration // delay before each read
	MalformedEvery int           // every n-th read yields myo.ErrMalformed
	ErrorOnRead    error
	ErrorOnClose   error

	Reads  int
	Closed bool
	pos    int
}

// Read yields the next mocked sample.
func (m *Source) Read() (float64, error) {
	m.Reads++
	if m.ErrorOnRead != nil {
		return 0, m.ErrorOnRead
	}
	if m.Interval > 0 {
		time.Sleep(m.Interval)
	}
	if m.MalformedEvery > 0 && m.Reads%m.MalformedEvery == 0 {
		return 0, myo.ErrMalformed
	}
	if m.Samples != nil {
		if m.pos >= len(m.Samples) {
			return 0, io.EOF
		}
		v := m.Samples[m.pos]
		m.pos++
		return v, nil
	}
	if m.pos >= m.Limit {
		return 0, io.EOF
	}
	m.pos++
	return m.Value, nil
}

// Close implements myo.Source.
func (m *Source) Close() error {
	m.Closed = true
	return m.ErrorOnClose
}

// Classifier mocks a myo.Classifier interface. It negotiates shapes at
// attach time and records the inputs of the last prediction.
type Classifier struct {
	Class            int
	ErrorOnPredict   error
	ErrorOnNegotiate error

	Predictions  int
	LastWindow   []float64
	LastFeatures feature.Vector
	LastInput    []float64
}

// Predict implements myo.Classifier.
func (m *Classifier) Predict(window []float64, features feature.Vector) (int, error) {
	if m.ErrorOnPredict != nil {
		return 0, m.ErrorOnPredict
	}
	m.Predictions++
	m.LastWindow = window
	m.LastFeatures = features
	// the flat vector a model consumes: window followed by features
	m.LastInput = append(append([]float64{}, window...), features.Slice()...)
	return m.Class, nil
}

// Negotiate implements myo.Negotiator.
func (m *Classifier) Negotiate(windowLen, featureLen int) error {
	return m.ErrorOnNegotiate
}
