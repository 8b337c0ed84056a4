package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

const insertBatchSize = 100

// status que podem ocupar horário; a decisão final é do domain.CheckConflicts
var occupyingStatuses = []string{
	string(domain.StatusScheduled),
	string(domain.StatusConfirmed),
	string(domain.StatusBlocked),
}

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) isPostgres() bool {
	return r.db.Dialector.Name() == "postgres"
}

// translate converte erros do driver em erros de domínio.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if httperr.IsExclusionConflict(err) {
		return fmt.Errorf("%w: %v", &domain.ConflictError{}, err)
	}
	return err
}

// --------------------------------------------------
// Appointment (conflict)
// --------------------------------------------------

func (r *AppointmentGormRepository) FindActiveByProfessionalInRange(
	ctx context.Context,
	companyID string,
	professionalID string,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("professional_id IN ?", []string{professionalID, domain.AllProfessionals}).
		Where("start_time < ? AND end_time > ?", to.UTC(), from.UTC()).
		Where("(status IN ? OR is_block = ?)", occupyingStatuses, true).
		Where("(client_present IS NULL OR client_present = ?)", true)

	if r.isPostgres() {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var apps []models.Appointment
	if err := q.Order("start_time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Appointment (create)
// --------------------------------------------------

func (r *AppointmentGormRepository) Insert(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if ap.ID == "" {
		ap.ID = uuid.NewString()
	}
	return translate(r.db.WithContext(ctx).Create(ap).Error)
}

func (r *AppointmentGormRepository) InsertMany(
	ctx context.Context,
	aps []models.Appointment,
) error {
	if len(aps) == 0 {
		return nil
	}
	for i := range aps {
		if aps[i].ID == "" {
			aps[i].ID = uuid.NewString()
		}
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(aps, insertBatchSize).Error)
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetByID(
	ctx context.Context,
	id string,
	companyID string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&ap).Error; err != nil {
		return nil, translate(err)
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) Update(
	ctx context.Context,
	id string,
	companyID string,
	patch domain.Patch,
) (*models.Appointment, error) {

	values := make(map[string]any, len(patch))
	for k, v := range patch {
		// tenant e id são imutáveis
		if k == "company_id" || k == "id" {
			continue
		}
		values[k] = v
	}

	if len(values) > 0 {
		res := r.db.WithContext(ctx).
			Model(&models.Appointment{}).
			Where("id = ? AND company_id = ?", id, companyID).
			Updates(values)
		if res.Error != nil {
			return nil, translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, domain.ErrNotFound
		}
	}

	return r.GetByID(ctx, id, companyID)
}

func (r *AppointmentGormRepository) DeleteByID(
	ctx context.Context,
	id string,
	companyID string,
) error {

	res := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		Delete(&models.Appointment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// Series
// --------------------------------------------------

func (r *AppointmentGormRepository) ListByRecurrenceGroup(
	ctx context.Context,
	groupID string,
	companyID string,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where("recurrence_group_id = ? AND company_id = ?", groupID, companyID).
		Order("recurrence_order ASC").
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) DeleteByRecurrenceGroup(
	ctx context.Context,
	groupID string,
	companyID string,
) (int64, error) {

	res := r.db.WithContext(ctx).
		Where("recurrence_group_id = ? AND company_id = ?", groupID, companyID).
		Delete(&models.Appointment{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *AppointmentGormRepository) ListForPeriod(
	ctx context.Context,
	companyID string,
	professionalID string,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("start_time >= ? AND start_time < ?", from.UTC(), to.UTC())

	if professionalID != "" {
		q = q.Where("professional_id IN ?", []string{professionalID, domain.AllProfessionals})
	}

	var apps []models.Appointment
	if err := q.Order("start_time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListOverlapping(
	ctx context.Context,
	companyID string,
	professionalID string,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	// intervalo semiaberto: encostar não cruza
	q := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("start_time < ? AND end_time > ?", to.UTC(), from.UTC())

	if professionalID != "" {
		q = q.Where("professional_id IN ?", []string{professionalID, domain.AllProfessionals})
	}

	var apps []models.Appointment
	if err := q.Order("start_time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListCompaniesWithAppointments(
	ctx context.Context,
	from time.Time,
	to time.Time,
) ([]string, error) {

	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("start_time >= ? AND start_time < ?", from.UTC(), to.UTC()).
		Distinct("company_id").
		Order("company_id").
		Pluck("company_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) GetWorkingHours(
	ctx context.Context,
	companyID string,
	professionalID string,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND professional_id = ? AND weekday = ?", companyID, professionalID, weekday).
		First(&wh).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrWorkingHoursNotFound
	}
	if err != nil {
		return nil, err
	}

	return &wh, nil
}

func (r *AppointmentGormRepository) ListWorkingHours(
	ctx context.Context,
	companyID string,
	professionalID string,
) ([]models.WorkingHours, error) {

	var list []models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND professional_id = ?", companyID, professionalID).
		Order("weekday ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AppointmentGormRepository) SaveWorkingHours(
	ctx context.Context,
	wh *models.WorkingHours,
) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "company_id"}, {Name: "professional_id"}, {Name: "weekday"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"start_time", "end_time", "lunch_start", "lunch_end", "active", "updated_at",
			}),
		}).
		Create(wh).Error
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *AppointmentGormRepository) WithProfessionalLock(
	ctx context.Context,
	companyID string,
	professionalID string,
	fn func(tx domain.Repository) error,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			// liberado no commit/rollback
			if err := tx.Exec(
				"SELECT pg_advisory_xact_lock(hashtext(?))",
				companyID+":"+professionalID,
			).Error; err != nil {
				return err
			}
		}
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
