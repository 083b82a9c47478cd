// Package wav replays recorded sessions through the live pipeline by
// reading samples from a wav file.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// chunk is the number of frames decoded per read from the file.
const chunk = 512

// Source reads samples from the first channel of a wav file, one sample
// per Read, as raw PCM integer values.
type Source struct {
	file     *os.File
	decoder  *wav.Decoder
	buf      *audio.IntBuffer
	data     []int
	pos      int
	channels int
}

// Open opens the file and validates the wav header.
func Open(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		if err := file.Close(); err != nil {
			return nil, fmt.Errorf("wav: invalid file, failed to close %v: %w", path, err)
		}
		return nil, errors.New("wav: invalid file")
	}
	channels := decoder.Format().NumChannels
	return &Source{
		file:     file,
		decoder:  decoder,
		channels: channels,
		buf: &audio.IntBuffer{
			Format:         decoder.Format(),
			Data:           make([]int, chunk*channels),
			SourceBitDepth: int(decoder.BitDepth),
		},
	}, nil
}

// SampleRate returns the sample rate declared by the file.
func (s *Source) SampleRate() int {
	return int(s.decoder.SampleRate)
}

// Read returns the next sample of the first channel.
func (s *Source) Read() (float64, error) {
	if s.pos >= len(s.data) {
		n, err := s.decoder.PCMBuffer(s.buf)
		if err != nil {
			return 0, fmt.Errorf("wav: %w", err)
		}
		if n == 0 {
			return 0, io.EOF
		}
		s.data = s.buf.Data[:n]
		s.pos = 0
	}
	v := float64(s.data[s.pos])
	// skip the remaining channels of the frame
	s.pos += s.channels
	return v, nil
}

// Close closes the file.
func (s *Source) Close() error {
	return s.file.Close()
}
