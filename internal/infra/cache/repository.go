// Package cache envolve o repositório de agendamentos com um cache Redis
// para listagens e expediente. Cada escrita incrementa a geração da
// empresa, invalidando todas as chaves antigas de uma vez.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

type Repository struct {
	inner domain.Repository
	store Store
	ttl   time.Duration
	log   *logrus.Logger
}

func NewRepository(inner domain.Repository, store Store, ttl time.Duration, log *logrus.Logger) *Repository {
	return &Repository{inner: inner, store: store, ttl: ttl, log: log}
}

func genKey(companyID string) string {
	return "sched:gen:" + companyID
}

func (r *Repository) generation(ctx context.Context, companyID string) (string, bool) {
	v, err := r.store.Get(ctx, genKey(companyID))
	if errors.Is(err, ErrMiss) {
		return "0", true
	}
	if err != nil {
		r.warn(err, companyID, "cache generation read failed")
		return "", false
	}
	return v, true
}

func (r *Repository) bump(ctx context.Context, companyID string) {
	if _, err := r.store.Incr(ctx, genKey(companyID)); err != nil {
		r.warn(err, companyID, "cache invalidation failed")
	}
}

func (r *Repository) warn(err error, companyID, msg string) {
	r.log.WithFields(logrus.Fields{"company_id": companyID}).WithError(err).Warn(msg)
}

// cached lê key do cache ou chama load e guarda o resultado.
func cached[T any](ctx context.Context, r *Repository, companyID, key string, load func() (T, error)) (T, error) {
	gen, ok := r.generation(ctx, companyID)
	if !ok {
		return load()
	}
	key = fmt.Sprintf("sched:%s:g%s:%s", companyID, gen, key)

	if raw, err := r.store.Get(ctx, key); err == nil {
		var out T
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return out, nil
		}
	}

	out, err := load()
	if err != nil {
		return out, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := r.store.Set(ctx, key, string(b), r.ttl); err != nil {
			r.warn(err, companyID, "cache write failed")
		}
	}
	return out, nil
}

// --------------------------------------------------
// Cached reads
// --------------------------------------------------

func (r *Repository) ListForPeriod(
	ctx context.Context,
	companyID string,
	professionalID string,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {
	key := fmt.Sprintf("period:%s:%d:%d", professionalID, from.Unix(), to.Unix())
	return cached(ctx, r, companyID, key, func() ([]models.Appointment, error) {
		return r.inner.ListForPeriod(ctx, companyID, professionalID, from, to)
	})
}

func (r *Repository) ListOverlapping(
	ctx context.Context,
	companyID string,
	professionalID string,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {
	key := fmt.Sprintf("overlap:%s:%d:%d", professionalID, from.Unix(), to.Unix())
	return cached(ctx, r, companyID, key, func() ([]models.Appointment, error) {
		return r.inner.ListOverlapping(ctx, companyID, professionalID, from, to)
	})
}

func (r *Repository) GetWorkingHours(
	ctx context.Context,
	companyID string,
	professionalID string,
	weekday int,
) (*models.WorkingHours, error) {
	key := fmt.Sprintf("wh:%s:%d", professionalID, weekday)
	return cached(ctx, r, companyID, key, func() (*models.WorkingHours, error) {
		return r.inner.GetWorkingHours(ctx, companyID, professionalID, weekday)
	})
}

func (r *Repository) ListWorkingHours(
	ctx context.Context,
	companyID string,
	professionalID string,
) ([]models.WorkingHours, error) {
	return cached(ctx, r, companyID, "wh:"+professionalID, func() ([]models.WorkingHours, error) {
		return r.inner.ListWorkingHours(ctx, companyID, professionalID)
	})
}

// --------------------------------------------------
// Pass-through reads
// --------------------------------------------------

func (r *Repository) FindActiveByProfessionalInRange(
	ctx context.Context,
	companyID string,
	professionalID string,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {
	return r.inner.FindActiveByProfessionalInRange(ctx, companyID, professionalID, from, to)
}

func (r *Repository) GetByID(ctx context.Context, id, companyID string) (*models.Appointment, error) {
	return r.inner.GetByID(ctx, id, companyID)
}

func (r *Repository) ListByRecurrenceGroup(ctx context.Context, groupID, companyID string) ([]models.Appointment, error) {
	return r.inner.ListByRecurrenceGroup(ctx, groupID, companyID)
}

func (r *Repository) ListCompaniesWithAppointments(ctx context.Context, from, to time.Time) ([]string, error) {
	return r.inner.ListCompaniesWithAppointments(ctx, from, to)
}

// --------------------------------------------------
// Writes (invalidate)
// --------------------------------------------------

func (r *Repository) Insert(ctx context.Context, ap *models.Appointment) error {
	if err := r.inner.Insert(ctx, ap); err != nil {
		return err
	}
	r.bump(ctx, ap.CompanyID)
	return nil
}

func (r *Repository) InsertMany(ctx context.Context, aps []models.Appointment) error {
	if err := r.inner.InsertMany(ctx, aps); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, ap := range aps {
		if !seen[ap.CompanyID] {
			seen[ap.CompanyID] = true
			r.bump(ctx, ap.CompanyID)
		}
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, id, companyID string, patch domain.Patch) (*models.Appointment, error) {
	ap, err := r.inner.Update(ctx, id, companyID, patch)
	if err != nil {
		return nil, err
	}
	r.bump(ctx, companyID)
	return ap, nil
}

func (r *Repository) DeleteByID(ctx context.Context, id, companyID string) error {
	if err := r.inner.DeleteByID(ctx, id, companyID); err != nil {
		return err
	}
	r.bump(ctx, companyID)
	return nil
}

func (r *Repository) DeleteByRecurrenceGroup(ctx context.Context, groupID, companyID string) (int64, error) {
	n, err := r.inner.DeleteByRecurrenceGroup(ctx, groupID, companyID)
	if err != nil {
		return 0, err
	}
	r.bump(ctx, companyID)
	return n, nil
}

func (r *Repository) SaveWorkingHours(ctx context.Context, wh *models.WorkingHours) error {
	if err := r.inner.SaveWorkingHours(ctx, wh); err != nil {
		return err
	}
	r.bump(ctx, wh.CompanyID)
	return nil
}

// WithProfessionalLock roda fn direto no repositório transacional; o cache
// é invalidado depois do commit.
func (r *Repository) WithProfessionalLock(
	ctx context.Context,
	companyID string,
	professionalID string,
	fn func(tx domain.Repository) error,
) error {
	if err := r.inner.WithProfessionalLock(ctx, companyID, professionalID, fn); err != nil {
		return err
	}
	r.bump(ctx, companyID)
	return nil
}

var _ domain.Repository = (*Repository)(nil)
