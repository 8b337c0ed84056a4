package models

import (
	"time"

	"gorm.io/datatypes"
)

type Appointment struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	CompanyID string `gorm:"type:varchar(64);not null;index:idx_appointments_company_professional_start,priority:1" json:"company_id"`

	ProfessionalID string                      `gorm:"type:varchar(64);not null;index:idx_appointments_company_professional_start,priority:2" json:"professional_id"`
	ClientID       string                      `gorm:"type:varchar(64)" json:"client_id"`
	ServiceID      string                      `gorm:"type:varchar(64)" json:"service_id"`
	ServiceIDs     datatypes.JSONSlice[string] `json:"service_ids,omitempty"`

	Start time.Time `gorm:"column:start_time;not null;index:idx_appointments_company_professional_start,priority:3" json:"start"`
	End   time.Time `gorm:"column:end_time;not null;index" json:"end"`

	PriceCents        int64   `gorm:"not null;default:0" json:"price_cents"`
	CommissionPercent float64 `gorm:"not null;default:0" json:"commission_percent"`
	PaidCents         *int64  `json:"paid_cents,omitempty"`
	PaymentMethod     string  `gorm:"size:20" json:"payment_method,omitempty"`

	Status        string `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	ClientPresent *bool  `json:"client_present,omitempty"`

	IsBlock          bool   `gorm:"not null;default:false" json:"is_block"`
	BlockScope       string `gorm:"size:10" json:"block_scope,omitempty"`
	BlockDescription string `gorm:"size:255" json:"block_description,omitempty"`

	RecurrenceGroupID            *string    `gorm:"type:varchar(36);index" json:"recurrence_group_id,omitempty"`
	RecurrenceFrequency          string     `gorm:"size:10" json:"recurrence_frequency,omitempty"`
	RecurrenceCustomIntervalDays int        `json:"recurrence_custom_interval_days,omitempty"`
	RecurrenceOrder              *int       `json:"recurrence_order,omitempty"`
	RecurrenceOriginalStart      *time.Time `json:"recurrence_original_start,omitempty"`
	RecurrenceEndsAt             *time.Time `json:"recurrence_ends_at,omitempty"`

	NotifyClient      bool       `gorm:"not null" json:"notify_client"`
	Reminder24hSentAt *time.Time `json:"reminder_24h_sent_at,omitempty"`
	Reminder1hSentAt  *time.Time `json:"reminder_1h_sent_at,omitempty"`

	Notes       string     `gorm:"size:500" json:"notes,omitempty"`
	CanceledAt  *time.Time `json:"canceled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedByUID string    `gorm:"type:varchar(64)" json:"created_by_uid"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
