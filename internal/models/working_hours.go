package models

import "time"

// Expediente de um profissional em um dia da semana (0 = domingo).
type WorkingHours struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	CompanyID      string `gorm:"type:varchar(64);not null;uniqueIndex:idx_working_hours_slot,priority:1" json:"company_id"`
	ProfessionalID string `gorm:"type:varchar(64);not null;uniqueIndex:idx_working_hours_slot,priority:2" json:"professional_id"`

	Weekday int `gorm:"uniqueIndex:idx_working_hours_slot,priority:3" json:"weekday"`

	StartTime  string `gorm:"size:5" json:"start_time"`
	EndTime    string `gorm:"size:5" json:"end_time"`
	LunchStart string `gorm:"size:5" json:"lunch_start"`
	LunchEnd   string `gorm:"size:5" json:"lunch_end"`
	Active     bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
