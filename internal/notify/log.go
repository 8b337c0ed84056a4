package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier só registra o evento; usado quando não há brokers configurados.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	n.log.WithFields(logrus.Fields{
		"type":           ev.Type,
		"company_id":     ev.CompanyID,
		"appointment_id": ev.AppointmentID,
		"client_id":      ev.ClientID,
		"start":          ev.Start,
	}).Info("notification")
	return nil
}
