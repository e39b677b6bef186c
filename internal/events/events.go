// Package events publishes filter toggle events to Kafka.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type ToggleEvent struct {
	Session   string    `json:"session"`
	Dimension string    `json:"dimension"`
	Value     string    `json:"value"`
	Selected  bool      `json:"selected"`
	Rendered  int       `json:"rendered"`
	TS        time.Time `json:"ts"`
}

type Publisher interface {
	Publish(ev ToggleEvent)
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(ToggleEvent) {}
func (Nop) Close() error        { return nil }

type KafkaPublisher struct {
	topic   string
	log     *slog.Logger
	events  chan ToggleEvent
	prod    sarama.AsyncProducer
	stopped chan struct{}
}

func NewKafkaPublisher(brokers []string, topic string, queueSize int, log *slog.Logger) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Errors = true
	cfg.Producer.Return.Successes = false

	prod, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("events: create async producer: %w", err)
	}
	return newKafkaPublisher(prod, topic, queueSize, log), nil
}

func newKafkaPublisher(prod sarama.AsyncProducer, topic string, queueSize int, log *slog.Logger) *KafkaPublisher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if log == nil {
		log = slog.Default()
	}
	p := &KafkaPublisher{
		topic:   topic,
		log:     log,
		events:  make(chan ToggleEvent, queueSize),
		prod:    prod,
		stopped: make(chan struct{}),
	}

	go func() {
		defer close(p.stopped)
		for ev := range p.events {
			b, err := json.Marshal(ev)
			if err != nil {
				p.log.Warn("events: marshal error", "err", err)
				continue
			}
			p.prod.Input() <- &sarama.ProducerMessage{
				Topic: p.topic,
				Key:   sarama.StringEncoder(ev.Session),
				Value: sarama.ByteEncoder(b),
			}
		}
	}()

	go func() {
		for err := range p.prod.Errors() {
			if err != nil {
				p.log.Warn("events: producer error", "err", err)
			}
		}
	}()

	return p
}

// Publish never blocks the click path; a full queue drops the event.
func (p *KafkaPublisher) Publish(ev ToggleEvent) {
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	select {
	case p.events <- ev:
	default:
	}
}

func (p *KafkaPublisher) Close() error {
	close(p.events)
	<-p.stopped

	if err := p.prod.Close(); err != nil {
		return fmt.Errorf("events: close producer: %w", err)
	}
	return nil
}
