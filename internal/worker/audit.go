package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/config"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

type AuditRecorder interface {
	Record(ctx context.Context, subject string, payload []byte) error
}

type DeadLetterPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, msgID string) error
}

type Action int

const (
	ActionAck Action = iota
	ActionNak
	ActionNakWithDelay
)

// Outcome is how a delivered message should be settled.
type Outcome struct {
	Action Action
	Delay  time.Duration
}

// AuditConsumer writes every delivered creature event to the audit log.
// Messages that keep failing are parked on the DLQ subject once the
// delivery budget is spent.
type AuditConsumer struct {
	recorder AuditRecorder
	dlq      DeadLetterPublisher
	cfg      config.NATS
	log      *logrus.Logger
}

func NewAuditConsumer(recorder AuditRecorder, dlq DeadLetterPublisher, cfg config.NATS, log *logrus.Logger) *AuditConsumer {
	return &AuditConsumer{recorder: recorder, dlq: dlq, cfg: cfg, log: log}
}

// Handle records msg and decides its settlement; it never acks or naks itself.
func (a *AuditConsumer) Handle(ctx context.Context, msg *nats.Msg) Outcome {
	err := a.recorder.Record(ctx, msg.Subject, msg.Data)
	if err == nil {
		a.log.WithField("subject", msg.Subject).Debug("consumer: event recorded")
		return Outcome{Action: ActionAck}
	}
	a.log.WithError(err).WithField("subject", msg.Subject).Warn("consumer: audit log insert failed")

	md, err := msg.Metadata()
	if err != nil {
		a.log.WithError(err).Warn("consumer: metadata missing")
		return Outcome{Action: ActionNak}
	}
	maxDeliver := a.cfg.ConsumerMaxDeliver
	if maxDeliver <= 0 {
		maxDeliver = 10
	}
	if int(md.NumDelivered) >= maxDeliver {
		if a.cfg.DLQSubject == "" {
			a.log.Warn("consumer: dlq subject not configured, dropping event")
			return Outcome{Action: ActionAck}
		}
		msgID := fmt.Sprintf("dlq-%d", md.Sequence.Stream)
		if err := a.dlq.Publish(ctx, a.cfg.DLQSubject, msg.Data, msgID); err != nil {
			a.log.WithError(err).Warn("consumer: dlq publish failed")
			return Outcome{Action: ActionNak}
		}
		return Outcome{Action: ActionAck}
	}
	if delay := backoffForAttempt(a.cfg.ConsumerBackoff, md.NumDelivered); delay > 0 {
		return Outcome{Action: ActionNakWithDelay, Delay: delay}
	}
	return Outcome{Action: ActionNak}
}

// Settle applies an outcome to msg.
func Settle(msg *nats.Msg, outcome Outcome) error {
	switch outcome.Action {
	case ActionAck:
		return msg.Ack()
	case ActionNakWithDelay:
		return msg.NakWithDelay(outcome.Delay)
	default:
		return msg.Nak()
	}
}

func backoffForAttempt(backoff []time.Duration, delivered uint64) time.Duration {
	if len(backoff) == 0 {
		return 0
	}
	idx := int(delivered) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(backoff) {
		idx = len(backoff) - 1
	}
	return backoff[idx]
}
