package appointment

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
	"github.com/BruksfildServices01/clinica-scheduler/internal/notify"
)

// ChangeStatus aplica uma transição da máquina de estados.
type ChangeStatus struct {
	Deps
}

func NewChangeStatus(deps Deps) *ChangeStatus {
	return &ChangeStatus{Deps: deps}
}

func (uc *ChangeStatus) Execute(
	ctx context.Context,
	p access.Principal,
	appointmentID string,
	target domain.Status,
	in domain.TransitionInput,
) (*models.Appointment, error) {

	ap, err := uc.Repo.GetByID(ctx, appointmentID, p.CompanyID)
	if err != nil {
		return nil, err
	}

	if err := p.CanEdit(ap.ProfessionalID); err != nil {
		return nil, err
	}

	from := domain.EffectiveStatus(ap)

	patch, err := domain.Transition(ap, target, in, uc.now())
	if err != nil {
		return nil, err
	}

	var updated *models.Appointment
	apply := func(repo domain.Repository) error {
		var err error
		updated, err = repo.Update(ctx, ap.ID, p.CompanyID, patch)
		return err
	}

	// pending não ocupa horário; ao virar scheduled o horário precisa estar livre
	if domain.OccupyingStatus(target) && !domain.OccupyingStatus(from) {
		err = uc.Repo.WithProfessionalLock(ctx, p.CompanyID, ap.ProfessionalID, func(tx domain.Repository) error {
			existing, err := tx.FindActiveByProfessionalInRange(ctx, p.CompanyID, ap.ProfessionalID, ap.Start, ap.End)
			if err != nil {
				return err
			}
			opts := uc.checkOptions()
			opts.ExcludeID = ap.ID

			candidate := domain.Interval{Start: ap.Start, End: ap.End}
			if conflicts := domain.CheckConflicts(candidate, existing, opts); len(conflicts) > 0 {
				return &domain.ConflictError{Occurrences: []domain.OccurrenceResult{{
					Order:     orderOf(ap),
					Start:     ap.Start,
					End:       ap.End,
					Conflicts: conflicts,
				}}}
			}
			return apply(tx)
		})
	} else {
		err = apply(uc.Repo)
	}
	if err != nil {
		return nil, err
	}

	uc.record(p, "appointment_"+string(target), updated.ID, map[string]any{
		"from": from,
		"to":   domain.EffectiveStatus(updated),
	})

	switch target {
	case domain.StatusScheduled:
		uc.publish(ctx, notify.TypeScheduled, updated)
	case domain.StatusConfirmed:
		uc.publish(ctx, notify.TypeConfirmed, updated)
	case domain.StatusCanceled:
		uc.publish(ctx, notify.TypeCanceled, updated)
	}

	uc.Log.WithFields(logrus.Fields{
		"company_id":     p.CompanyID,
		"appointment_id": updated.ID,
		"actor":          p.UID,
		"from":           from,
		"to":             target,
	}).Info("appointment status changed")

	return updated, nil
}

// ======================================================
// Atalhos por transição
// ======================================================

// Schedule aprova um agendamento pendente.
func (uc *ChangeStatus) Schedule(ctx context.Context, p access.Principal, id string) (*models.Appointment, error) {
	return uc.Execute(ctx, p, id, domain.StatusScheduled, domain.TransitionInput{})
}

func (uc *ChangeStatus) Confirm(ctx context.Context, p access.Principal, id string) (*models.Appointment, error) {
	return uc.Execute(ctx, p, id, domain.StatusConfirmed, domain.TransitionInput{})
}

func (uc *ChangeStatus) Cancel(ctx context.Context, p access.Principal, id string) (*models.Appointment, error) {
	return uc.Execute(ctx, p, id, domain.StatusCanceled, domain.TransitionInput{})
}

func (uc *ChangeStatus) Complete(ctx context.Context, p access.Principal, id string, in domain.TransitionInput) (*models.Appointment, error) {
	return uc.Execute(ctx, p, id, domain.StatusCompleted, in)
}

// ======================================================
// Presença
// ======================================================

type SetAttendance struct {
	Deps
}

func NewSetAttendance(deps Deps) *SetAttendance {
	return &SetAttendance{Deps: deps}
}

func (uc *SetAttendance) Execute(
	ctx context.Context,
	p access.Principal,
	appointmentID string,
	present bool,
) (*models.Appointment, error) {

	ap, err := uc.Repo.GetByID(ctx, appointmentID, p.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := p.CanEdit(ap.ProfessionalID); err != nil {
		return nil, err
	}

	patch, err := domain.SetAttendance(ap, present)
	if err != nil {
		return nil, err
	}

	updated, err := uc.Repo.Update(ctx, ap.ID, p.CompanyID, patch)
	if err != nil {
		return nil, err
	}

	uc.record(p, "appointment_attendance", updated.ID, map[string]any{
		"client_present": present,
	})

	return updated, nil
}
