package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"

	"notes-store/internal/model"
	svc "notes-store/internal/service"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// messageWriter часть kafka.Writer, нужная издателю
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ svc.EventPublisher = (*Publisher)(nil)

// Publisher отправляет события заметок в топик Kafka
type Publisher struct {
	writer messageWriter
	topic  string
}

// NewPublisher создает издателя для брокеров и топика
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is empty")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	return &Publisher{writer: writer, topic: topic}, nil
}

// Publish сериализует событие в JSON, ключ сообщения это ID первой заметки
func (p *Publisher) Publish(ctx context.Context, event model.NoteEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode note event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message to kafka: %w", err)
	}
	return nil
}

// Close закрывает продюсер
func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

// topicAdmin часть kafka.Conn, нужная для создания топика
type topicAdmin interface {
	Controller() (kafka.Broker, error)
	CreateTopics(topics ...kafka.TopicConfig) error
	Close() error
}

type dialFunc func(ctx context.Context, address string) (topicAdmin, error)

func dialBroker(ctx context.Context, address string) (topicAdmin, error) {
	return kafka.DialContext(ctx, "tcp", address)
}

// EnsureTopic создает топик через контроллер кластера, если его еще нет
func EnsureTopic(ctx context.Context, broker, topic string, numPartitions, replicationFactor int) error {
	return ensureTopic(ctx, dialBroker, broker, topic, numPartitions, replicationFactor)
}

func ensureTopic(ctx context.Context, dial dialFunc, broker, topic string, numPartitions, replicationFactor int) error {
	conn, err := dial(ctx, broker)
	if err != nil {
		return fmt.Errorf("failed to connect to kafka broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get kafka controller: %w", err)
	}

	admin, err := dial(ctx, net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to connect to kafka controller: %w", err)
	}
	defer admin.Close()

	err = admin.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	})
	if errors.Is(err, kafka.TopicAlreadyExists) {
		logrus.WithField("topic", topic).Debug("kafka topic already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create kafka topic %q: %w", topic, err)
	}

	logrus.WithField("topic", topic).Info("kafka topic created")
	return nil
}
