package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"dalatbot/types"
)

// KafkaPublisher writes finished stories to the topic the site and the
// archiver consume. Messages are keyed by slug so re-published stories land
// on the same partition in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher connects a synchronous producer. Synchronous because a
// run publishes at most a handful of stories and must know each one landed.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("publish: connect kafka producer: %w", err)
	}
	return &KafkaPublisher{producer: producer, topic: topic}, nil
}

func (k *KafkaPublisher) Publish(ctx context.Context, story types.PublishedStory) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(story)
	if err != nil {
		return fmt.Errorf("publish: marshal story: %w", err)
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(storyKey(story)),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("publish: send to %s: %w", k.topic, err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}
