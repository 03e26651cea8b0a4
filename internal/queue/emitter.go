package queue

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shop1111/flight-booking/internal/config"
)

// Emitter publishes events after the transaction that produced them has
// committed. Delivery failures are logged and swallowed: the state change
// already happened and the request must not fail because of the broker.
type Emitter struct {
	pub     Publisher
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewEmitter(pub Publisher, timeout time.Duration, log logrus.FieldLogger) *Emitter {
	if pub == nil {
		pub = NopPublisher{}
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Emitter{pub: pub, timeout: timeout, log: log}
}

// Emit publishes events in order. It outlives the request context so a
// client hanging up does not drop events for a committed change.
func (e *Emitter) Emit(ctx context.Context, events ...OrderEvent) {
	if e == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	for _, ev := range events {
		pctx, cancel := context.WithTimeout(base, e.timeout)
		err := e.pub.Publish(pctx, ev)
		cancel()
		if err != nil {
			e.log.WithError(err).WithFields(logrus.Fields{
				"event_id": ev.EventID,
				"type":     ev.Type,
				"order_id": ev.OrderID,
			}).Warn("order event not published")
		}
	}
}

// Close releases the underlying publisher.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	return e.pub.Close()
}

// NewPublisher builds the publisher selected by cfg.Backend.
func NewPublisher(cfg config.EventsConfig) Publisher {
	switch cfg.Backend {
	case config.EventsAMQP:
		return NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
	case config.EventsKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	return NopPublisher{}
}
