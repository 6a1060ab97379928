package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"tripmarket/internal/domain/entities"

	amqp "github.com/rabbitmq/amqp091-go"
)

const refundApprovedQueueName = "refund.approved.processing"

// RefundProcessor is the slice of the refund use case the consumer needs.
type RefundProcessor interface {
	ProcessRefund(ctx context.Context, idempotencyKey, refundID string) (entities.Refund, bool, error)
}

// StartRefundConsumer connects to RabbitMQ, binds a durable queue to the
// refund.approved routing key and drives refund processing from approvals.
// The idempotency key is derived from the refund id, so a redelivered or
// duplicated approval replays the stored outcome instead of refunding twice.
//
// Runs a reconnect loop with capped backoff until ctx is cancelled.
func StartRefundConsumer(ctx context.Context, url, exchange string, processor RefundProcessor) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("[queue][consumer] dial failed err=%v retry_in=%s", err, backoff)
			sleepCtx(ctx, backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeRefundApprovals(ctx, conn, exchange, processor); err != nil {
			log.Printf("[queue][consumer] consume loop ended err=%v reconnecting", err)
		}
		_ = conn.Close()
		sleepCtx(ctx, 2*time.Second)
	}
}

func consumeRefundApprovals(ctx context.Context, conn *amqp.Connection, exchange string, processor RefundProcessor) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("[queue][consumer] set QoS failed err=%v", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := ch.QueueDeclare(refundApprovedQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(refundApprovedQueueName, EventRefundApproved, exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(refundApprovedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleRefundApproved(ctx, processor, d.Body); err != nil {
				log.Printf("[queue][consumer] handle refund.approved failed err=%v", err)
				// Reject without requeue: a retried approval arrives as a fresh
				// event or through the dead letter requeue path.
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleRefundApproved(ctx context.Context, processor RefundProcessor, body []byte) error {
	var ev RefundEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.RefundID == "" {
		return errors.New("refund.approved event without refund_id")
	}

	key := "refund-process-" + ev.RefundID
	r, replayed, err := processor.ProcessRefund(ctx, key, ev.RefundID)
	if err != nil {
		return fmt.Errorf("process refund %s: %w", ev.RefundID, err)
	}
	log.Printf("[queue][consumer] refund processed refund_id=%s state=%s replayed=%v", r.ID, r.State, replayed)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
