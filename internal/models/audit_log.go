package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CompanyID string `gorm:"type:varchar(64);not null;index" json:"company_id"`
	ActorUID  string `gorm:"type:varchar(64)" json:"actor_uid"`
	Action    string `gorm:"size:50;not null" json:"action"`

	Entity   string         `gorm:"size:50" json:"entity"`
	EntityID string         `gorm:"type:varchar(64)" json:"entity_id"`
	Diff     datatypes.JSON `json:"diff,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
