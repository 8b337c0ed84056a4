package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

// Logger persiste eventos na tabela audit_logs.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ev Event) error {
	var diff datatypes.JSON
	if ev.Diff != nil {
		if b, err := json.Marshal(ev.Diff); err == nil {
			diff = datatypes.JSON(b)
		}
	}

	row := models.AuditLog{
		CompanyID: ev.CompanyID,
		ActorUID:  ev.ActorUID,
		Action:    ev.Action,
		Entity:    ev.Entity,
		EntityID:  ev.EntityID,
		Diff:      diff,
	}

	return l.db.Create(&row).Error
}

// Filter restringe a trilha de auditoria; CompanyID é obrigatório.
type Filter struct {
	CompanyID string
	Action    string
	Entity    string
	EntityID  string
	ActorUID  string
	From, To  time.Time // [From, To), zero = sem limite

	Page, Limit int
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

func (f Filter) normalized() Filter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > maxLimit {
		f.Limit = defaultLimit
	}
	return f
}

// List devolve uma página da trilha, mais recentes primeiro, e o total.
func (l *Logger) List(ctx context.Context, f Filter) ([]models.AuditLog, int64, Filter, error) {
	f = f.normalized()

	q := l.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Where("company_id = ?", f.CompanyID)

	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.ActorUID != "" {
		q = q.Where("actor_uid = ?", f.ActorUID)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, f, fmt.Errorf("count audit logs: %w", err)
	}

	var logs []models.AuditLog
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, f, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, total, f, nil
}
