// Package kafka ships audit events to a Kafka topic, one JSON record per
// event, keyed by subject so a participant's history stays ordered within a
// partition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "lotto/pkg/platform/audit"
)

// Publisher implements audit.Store on top of a franz-go client.
type Publisher struct {
	client *kgo.Client
	topic  string
	owned  bool
}

// payload is the record value. Field names are part of the topic contract.
type payload struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	Round     uint64 `json:"round"`
	Subject   string `json:"subject"`
	Action    string `json:"action"`
	Amount    int64  `json:"amount,omitempty"`
	Phase     string `json:"phase,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	Decision  string `json:"decision,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// New wraps an existing client. The caller keeps ownership of it.
func New(client *kgo.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Dial connects to brokers and returns a Publisher that owns its client.
func Dial(brokers []string, topic string, opts ...kgo.Opt) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka audit topic is required")
	}
	all := append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5 * time.Millisecond),
	}, opts...)
	client, err := kgo.NewClient(all...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic, owned: true}, nil
}

// EnsureTopic creates the audit topic when it is missing.
func (p *Publisher) EnsureTopic(ctx context.Context, partitions int32, replicas int16) error {
	adm := kadm.NewClient(p.client)
	topics, err := adm.ListTopics(ctx, p.topic)
	if err != nil {
		return fmt.Errorf("list kafka topics: %w", err)
	}
	if topics.Has(p.topic) {
		return nil
	}
	resp, err := adm.CreateTopic(ctx, partitions, replicas, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create kafka topic %s: %w", p.topic, err)
	}
	if resp.Err != nil {
		return fmt.Errorf("create kafka topic %s: %w", p.topic, resp.Err)
	}
	return nil
}

// Append produces the event synchronously.
func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(payload{
		ID:        event.ID,
		Category:  string(event.Category),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Round:     event.Round,
		Subject:   event.Subject,
		Action:    event.Action,
		Amount:    event.Amount,
		Phase:     event.Phase,
		ActorID:   event.ActorID,
		Decision:  event.Decision,
		RequestID: event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Subject),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and closes the client if this Publisher created it.
func (p *Publisher) Close() {
	if !p.owned {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
