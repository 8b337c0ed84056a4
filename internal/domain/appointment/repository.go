package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

// Patch é uma atualização parcial por coluna (last-writer-wins por campo).
type Patch map[string]any

const (
	ColProfessionalID    = "professional_id"
	ColClientID          = "client_id"
	ColServiceID         = "service_id"
	ColServiceIDs        = "service_ids"
	ColStart             = "start_time"
	ColEnd               = "end_time"
	ColPriceCents        = "price_cents"
	ColCommissionPercent = "commission_percent"
	ColPaidCents         = "paid_cents"
	ColPaymentMethod     = "payment_method"
	ColStatus            = "status"
	ColClientPresent     = "client_present"
	ColNotes             = "notes"
	ColCanceledAt        = "canceled_at"
	ColCompletedAt       = "completed_at"
	ColReminder24hSentAt = "reminder_24h_sent_at"
	ColReminder1hSentAt  = "reminder_1h_sent_at"

	ColRecurrenceGroupID            = "recurrence_group_id"
	ColRecurrenceFrequency          = "recurrence_frequency"
	ColRecurrenceCustomIntervalDays = "recurrence_custom_interval_days"
	ColRecurrenceOrder              = "recurrence_order"
	ColRecurrenceOriginalStart      = "recurrence_original_start"
	ColRecurrenceEndsAt             = "recurrence_ends_at"
)

// Touches reporta se o patch altera alguma das colunas.
func (p Patch) Touches(cols ...string) bool {
	for _, c := range cols {
		if _, ok := p[c]; ok {
			return true
		}
	}
	return false
}

type Repository interface {
	// -------- Appointment (conflict) --------
	FindActiveByProfessionalInRange(
		ctx context.Context,
		companyID string,
		professionalID string,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	// -------- Appointment (create) --------
	Insert(
		ctx context.Context,
		ap *models.Appointment,
	) error

	InsertMany(
		ctx context.Context,
		aps []models.Appointment,
	) error

	// -------- Appointment (state change) --------
	GetByID(
		ctx context.Context,
		id string,
		companyID string,
	) (*models.Appointment, error)

	Update(
		ctx context.Context,
		id string,
		companyID string,
		patch Patch,
	) (*models.Appointment, error)

	DeleteByID(
		ctx context.Context,
		id string,
		companyID string,
	) error

	// -------- Series --------
	ListByRecurrenceGroup(
		ctx context.Context,
		groupID string,
		companyID string,
	) ([]models.Appointment, error)

	DeleteByRecurrenceGroup(
		ctx context.Context,
		groupID string,
		companyID string,
	) (int64, error)

	// -------- Listing --------
	// professionalID vazio lista todos os profissionais da empresa.
	// ListForPeriod filtra pelo início (relatórios e lembretes).
	ListForPeriod(
		ctx context.Context,
		companyID string,
		professionalID string,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	// ListOverlapping devolve tudo que cruza [from, to), inclusive o que
	// começou antes (agenda do dia, disponibilidade).
	ListOverlapping(
		ctx context.Context,
		companyID string,
		professionalID string,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	ListCompaniesWithAppointments(
		ctx context.Context,
		from time.Time,
		to time.Time,
	) ([]string, error)

	// -------- Availability --------
	GetWorkingHours(
		ctx context.Context,
		companyID string,
		professionalID string,
		weekday int,
	) (*models.WorkingHours, error)

	ListWorkingHours(
		ctx context.Context,
		companyID string,
		professionalID string,
	) ([]models.WorkingHours, error)

	SaveWorkingHours(
		ctx context.Context,
		wh *models.WorkingHours,
	) error

	// WithProfessionalLock executa fn numa transação que serializa escritas
	// da agenda (companyID, professionalID); checagem de conflito e inserção
	// devem acontecer dentro de fn.
	WithProfessionalLock(
		ctx context.Context,
		companyID string,
		professionalID string,
		fn func(tx Repository) error,
	) error
}
