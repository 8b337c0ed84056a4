// Package notify publica eventos de agendamento para o serviço de mensagens.
package notify

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

type Type string

const (
	TypeScheduled  Type = "agendamento"
	TypeConfirmed  Type = "confirmacao"
	TypeCanceled   Type = "cancelamento"
	TypeReminder24 Type = "lembrete_24h"
	TypeReminder1h Type = "lembrete_1h"
)

type Event struct {
	Type           Type      `json:"type"`
	CompanyID      string    `json:"companyId"`
	AppointmentID  string    `json:"appointmentId"`
	ClientID       string    `json:"clientId"`
	ProfessionalID string    `json:"professionalId"`
	Start          time.Time `json:"start"`
	Status         string    `json:"status"`
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

func EventFor(t Type, ap *models.Appointment) Event {
	return Event{
		Type:           t,
		CompanyID:      ap.CompanyID,
		AppointmentID:  ap.ID,
		ClientID:       ap.ClientID,
		ProfessionalID: ap.ProfessionalID,
		Start:          ap.Start,
		Status:         ap.Status,
	}
}
