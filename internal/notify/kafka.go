package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type KafkaNotifier struct {
	writer *kafka.Writer
	log    *logrus.Logger
}

func NewKafkaNotifier(brokers []string, topic string, log *logrus.Logger) *KafkaNotifier {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: int(kafka.RequireOne),
	})

	return &KafkaNotifier{writer: writer, log: log}
}

func (k *KafkaNotifier) Notify(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// chave = agendamento, mantém a ordem por partição
	msg := kafka.Message{
		Key:   []byte(ev.AppointmentID),
		Value: payload,
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	k.log.WithFields(logrus.Fields{
		"type":           ev.Type,
		"company_id":     ev.CompanyID,
		"appointment_id": ev.AppointmentID,
	}).Debug("notification published")
	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
