package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
)

// Publisher delivers analysis responses
type Publisher interface {
	Publish(ctx context.Context, resp AnalysisResponse) error
}

// AMQPPublisher publishes responses to a topic exchange keyed by request ID
type AMQPPublisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher publishes on ch to exchange
func NewAMQPPublisher(ch *amqp.Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// RoutingKey returns the routing key a response for id is published with
func RoutingKey(resp AnalysisResponse) string {
	return "analysis." + resp.ID.String()
}

// Publish sends resp. amqp channels are not safe for concurrent publishing,
// so calls are serialized.
func (p *AMQPPublisher) Publish(ctx context.Context, resp AnalysisResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(p.exchange, RoutingKey(resp), false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: resp.ID.String(),
		DeliveryMode:  amqp.Persistent,
		Timestamp:     resp.Timestamp,
		Body:          body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish response %s: %w", resp.ID, err)
	}
	return nil
}
