package dto

import "time"

type AppointmentListDTO struct {
	ID                string    `json:"id"`
	ProfessionalID    string    `json:"professional_id"`
	ClientID          string    `json:"client_id,omitempty"`
	ServiceID         string    `json:"service_id,omitempty"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	Status            string    `json:"status"`
	EffectiveStatus   string    `json:"effective_status"`
	IsBlock           bool      `json:"is_block"`
	BlockDescription  string    `json:"block_description,omitempty"`
	RecurrenceGroupID *string   `json:"recurrence_group_id,omitempty"`
	PriceCents        int64     `json:"price_cents"`
}
