package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
)

// EnsureConsumer creates the durable pull consumer for creature events, or
// recreates it when its delivery policy drifted from the configuration.
func (c *NATSClient) EnsureConsumer(ctx context.Context) error {
	if c == nil || c.js == nil {
		return errors.New("nats: jetstream not initialized")
	}
	cfg := c.cfg
	if cfg.ConsumerDurable == "" {
		return errors.New("nats consumer durable is required")
	}

	info, err := c.js.ConsumerInfo(cfg.Stream, cfg.ConsumerDurable, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrConsumerNotFound) {
		return err
	}

	maxDeliver := cfg.ConsumerMaxDeliver
	if maxDeliver <= 0 {
		maxDeliver = -1
	}

	if info != nil {
		if info.Config.MaxDeliver != maxDeliver ||
			info.Config.FilterSubject != cfg.EventSubjects() ||
			!sameBackoff(info.Config.BackOff, cfg.ConsumerBackoff) {
			if err := c.js.DeleteConsumer(cfg.Stream, cfg.ConsumerDurable, nats.Context(ctx)); err != nil {
				return err
			}
			info = nil
		}
	}

	if info == nil {
		consumerCfg := &nats.ConsumerConfig{
			Durable:       cfg.ConsumerDurable,
			AckPolicy:     nats.AckExplicitPolicy,
			AckWait:       cfg.AckWait,
			MaxAckPending: cfg.MaxAckPending,
			MaxDeliver:    maxDeliver,
			FilterSubject: cfg.EventSubjects(),
		}
		if len(cfg.ConsumerBackoff) > 0 {
			consumerCfg.BackOff = cfg.ConsumerBackoff
		}
		if _, err := c.js.AddConsumer(cfg.Stream, consumerCfg, nats.Context(ctx)); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe binds a pull subscription to the durable consumer.
func (c *NATSClient) Subscribe() (*nats.Subscription, error) {
	if c == nil || c.js == nil {
		return nil, errors.New("nats: jetstream not initialized")
	}
	return c.js.PullSubscribe(
		c.cfg.EventSubjects(),
		c.cfg.ConsumerDurable,
		nats.Bind(c.cfg.Stream, c.cfg.ConsumerDurable),
	)
}

func sameBackoff(a, b []time.Duration) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
