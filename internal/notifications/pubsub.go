package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

const messageTypeEmail = "email"

// Publisher is the subset of a Pub/Sub publisher the queue sender needs.
type Publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) PublishResult
}

// PublishResult resolves the server-assigned message id.
type PublishResult interface {
	Get(ctx context.Context) (string, error)
}

// NewGCPPublisher adapts a Pub/Sub publisher to Publisher.
func NewGCPPublisher(p *gcppubsub.Publisher) Publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{Publisher: p}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) PublishResult {
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}

// PubSubSender queues messages on the notification topic for the worker to deliver.
type PubSubSender struct {
	publisher Publisher
}

// NewPubSubSender builds the queue-backed sender.
func NewPubSubSender(publisher Publisher) (*PubSubSender, error) {
	if publisher == nil {
		return nil, fmt.Errorf("notification publisher required")
	}
	return &PubSubSender{publisher: publisher}, nil
}

func (s *PubSubSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	result := s.publisher.Publish(ctx, &gcppubsub.Message{
		Data:       data,
		Attributes: map[string]string{"type": messageTypeEmail},
	})
	if result == nil {
		return errors.New("publish result is nil")
	}
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
