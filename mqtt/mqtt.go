// Package mqtt reads samples from an MQTT telemetry topic, for sensors
// that publish over the network instead of a serial link. Every message
// payload carries one numeric sample.
package mqtt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/xid"

	"github.com/dudk/myo"
)

const (
	// pollTimeout bounds Read so the ingestion stage can notice a stop
	// signal on a quiet topic.
	pollTimeout = 100 * time.Millisecond
	// connectTimeout bounds the initial broker handshake.
	connectTimeout = 5 * time.Second
	// queueSize is the capacity of the incoming payload buffer. Overflow
	// is dropped here, before parsing: network sensors outpacing the
	// reader are handled the same way as a full sample channel.
	queueSize = 256
)

// Source subscribes to a topic and yields one sample per message.
type Source struct {
	client   paho.Client
	topic    string
	payloads chan []byte
}

// Open connects to the broker and subscribes to the topic. An empty
// clientID gets a generated one.
func Open(broker, topic, clientID string) (*Source, error) {
	if clientID == "" {
		clientID = "myo-" + xid.New().String()
	}
	s := &Source{
		topic:    topic,
		payloads: make(chan []byte, queueSize),
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout)
	s.client = paho.NewClient(opts)

	if token := s.client.Connect(); !token.WaitTimeout(connectTimeout) || token.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect %v: %w", broker, tokenErr(token))
	}
	if token := s.client.Subscribe(topic, 0, s.receive); !token.WaitTimeout(connectTimeout) || token.Error() != nil {
		s.client.Disconnect(0)
		return nil, fmt.Errorf("mqtt: subscribe %v: %w", topic, tokenErr(token))
	}
	return s, nil
}

func (s *Source) receive(_ paho.Client, m paho.Message) {
	select {
	case s.payloads <- m.Payload():
	default:
	}
}

// Read returns the next sample, myo.ErrNoData if the topic stayed quiet
// for pollTimeout, or myo.ErrMalformed for a payload that does not parse
// as a number.
func (s *Source) Read() (float64, error) {
	select {
	case payload := <-s.payloads:
		v, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
		if err != nil {
			return 0, myo.ErrMalformed
		}
		return v, nil
	case <-time.After(pollTimeout):
		return 0, myo.ErrNoData
	}
}

// Close unsubscribes and disconnects from the broker.
func (s *Source) Close() error {
	if token := s.client.Unsubscribe(s.topic); !token.WaitTimeout(connectTimeout) || token.Error() != nil {
		s.client.Disconnect(0)
		return fmt.Errorf("mqtt: unsubscribe %v: %w", s.topic, tokenErr(token))
	}
	s.client.Disconnect(250)
	return nil
}

func tokenErr(t paho.Token) error {
	if err := t.Error(); err != nil {
		return err
	}
	return fmt.Errorf("timed out after %v", connectTimeout)
}
