// Package serial reads samples from a serial link. The device is expected
// to print one numeric sample per line, the way an Arduino sketch streams
// ADC readings.
package serial

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.bug.st/serial"

	"github.com/dudk/myo"
)

// Source reads newline-delimited samples from a serial port.
type Source struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
}

// Open opens the serial port and returns a source over it.
func Open(port string, baudRate int) (*Source, error) {
	p, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("serial: open %v: %w", port, err)
	}
	return FromReader(p), nil
}

// FromReader returns a source over any reader of newline-delimited
// samples.
func FromReader(rc io.ReadCloser) *Source {
	return &Source{
		rc:      rc,
		scanner: bufio.NewScanner(rc),
	}
}

// Read returns the next sample. A line that does not parse as a number
// yields myo.ErrMalformed and is discarded; the stream continues.
func (s *Source) Read() (float64, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return 0, fmt.Errorf("serial: %w", err)
		}
		return 0, io.EOF
	}
	line := strings.TrimSpace(s.scanner.Text())
	if line == "" {
		return 0, myo.ErrMalformed
	}
	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, myo.ErrMalformed
	}
	return v, nil
}

// Close releases the port.
func (s *Source) Close() error {
	return s.rc.Close()
}
