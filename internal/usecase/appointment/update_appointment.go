package appointment

import (
	"context"
	"math"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

// SeriesPatch são os campos compartilhados por todas as ocorrências de uma
// série; nil significa "não alterar".
type SeriesPatch struct {
	ProfessionalID    *string
	ClientID          *string
	ServiceID         *string
	ServiceIDs        []string
	PriceCents        *int64
	CommissionPercent *float64
	Notes             *string
	NotifyClient      *bool
}

// OccurrencePatch acrescenta o horário, que só muda ocorrência a ocorrência.
type OccurrencePatch struct {
	SeriesPatch
	Start *time.Time
	End   *time.Time
}

func (in SeriesPatch) patch() domain.Patch {
	p := domain.Patch{}
	if in.ProfessionalID != nil {
		p[domain.ColProfessionalID] = strings.TrimSpace(*in.ProfessionalID)
	}
	if in.ClientID != nil {
		p[domain.ColClientID] = strings.TrimSpace(*in.ClientID)
	}
	if in.ServiceID != nil {
		p[domain.ColServiceID] = strings.TrimSpace(*in.ServiceID)
	}
	if in.ServiceIDs != nil {
		p[domain.ColServiceIDs] = datatypes.JSONSlice[string](in.ServiceIDs)
		if len(in.ServiceIDs) > 0 {
			p[domain.ColServiceID] = in.ServiceIDs[0]
		}
	}
	if in.PriceCents != nil {
		p[domain.ColPriceCents] = *in.PriceCents
	}
	if in.CommissionPercent != nil {
		p[domain.ColCommissionPercent] = *in.CommissionPercent
	}
	if in.Notes != nil {
		p[domain.ColNotes] = *in.Notes
	}
	if in.NotifyClient != nil {
		p["notify_client"] = *in.NotifyClient
	}
	return p
}

func (in SeriesPatch) violations() []domain.Violation {
	var out []domain.Violation
	if in.ProfessionalID != nil && strings.TrimSpace(*in.ProfessionalID) == "" {
		out = append(out, domain.ViolationProfessionalRequired)
	}
	if in.PriceCents != nil && *in.PriceCents < 0 {
		out = append(out, domain.ViolationInvalidPrice)
	}
	if c := in.CommissionPercent; c != nil && (math.IsNaN(*c) || *c < 0 || *c > 100) {
		out = append(out, domain.ViolationInvalidCommission)
	}
	return out
}

func (in OccurrencePatch) patch() domain.Patch {
	p := in.SeriesPatch.patch()
	if in.Start != nil {
		p[domain.ColStart] = in.Start.UTC()
	}
	if in.End != nil {
		p[domain.ColEnd] = in.End.UTC()
	}
	return p
}

// ======================================================
// UpdateOccurrence
// ======================================================

type UpdateOccurrence struct {
	Deps
}

func NewUpdateOccurrence(deps Deps) *UpdateOccurrence {
	return &UpdateOccurrence{Deps: deps}
}

// Execute altera uma única ocorrência. Com detach=true ela sai da série
// (metadados de recorrência apagados); sem, continua ligada ao grupo.
func (uc *UpdateOccurrence) Execute(
	ctx context.Context,
	p access.Principal,
	appointmentID string,
	in OccurrencePatch,
	detach bool,
) (*models.Appointment, error) {

	ap, err := uc.Repo.GetByID(ctx, appointmentID, p.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := p.CanEdit(ap.ProfessionalID); err != nil {
		return nil, err
	}
	if in.ProfessionalID != nil {
		if err := p.CanEdit(strings.TrimSpace(*in.ProfessionalID)); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// Estado resultante
	// --------------------------------------------------
	next := *ap
	if in.ProfessionalID != nil {
		next.ProfessionalID = strings.TrimSpace(*in.ProfessionalID)
	}
	if in.Start != nil {
		next.Start = in.Start.UTC()
	}
	if in.End != nil {
		next.End = in.End.UTC()
	}

	violations := in.violations()
	if !next.End.After(next.Start) {
		violations = append(violations, domain.ViolationInvalidTimeRange)
	}
	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	patch := in.patch()
	if detach && ap.RecurrenceGroupID != nil {
		patch[domain.ColRecurrenceGroupID] = nil
		patch[domain.ColRecurrenceFrequency] = ""
		patch[domain.ColRecurrenceCustomIntervalDays] = 0
		patch[domain.ColRecurrenceOrder] = nil
		patch[domain.ColRecurrenceOriginalStart] = nil
		patch[domain.ColRecurrenceEndsAt] = nil
	}
	if len(patch) == 0 {
		return ap, nil
	}

	moved := patch.Touches(domain.ColStart, domain.ColEnd, domain.ColProfessionalID)
	if !moved || domain.IsBlock(&next) || !domain.IsOccupying(&next, domain.CheckOptions{}) {
		return uc.save(ctx, p, ap, patch)
	}

	// --------------------------------------------------
	// Novo horário/profissional: conflito dentro do lock
	// --------------------------------------------------
	var updated *models.Appointment
	err = uc.Repo.WithProfessionalLock(ctx, p.CompanyID, next.ProfessionalID, func(tx domain.Repository) error {
		existing, err := tx.FindActiveByProfessionalInRange(ctx, p.CompanyID, next.ProfessionalID, next.Start, next.End)
		if err != nil {
			return err
		}

		opts := uc.checkOptions()
		opts.ExcludeID = ap.ID

		candidate := domain.Interval{Start: next.Start, End: next.End}
		if conflicts := domain.CheckConflicts(candidate, existing, opts); len(conflicts) > 0 {
			return &domain.ConflictError{Occurrences: []domain.OccurrenceResult{{
				Order:     orderOf(ap),
				Start:     next.Start,
				End:       next.End,
				Conflicts: conflicts,
			}}}
		}

		updated, err = tx.Update(ctx, ap.ID, p.CompanyID, patch)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.record(p, "appointment_updated", updated.ID, patchDiff(patch))
	return updated, nil
}

func (uc *UpdateOccurrence) save(ctx context.Context, p access.Principal, ap *models.Appointment, patch domain.Patch) (*models.Appointment, error) {
	updated, err := uc.Repo.Update(ctx, ap.ID, p.CompanyID, patch)
	if err != nil {
		return nil, err
	}
	uc.record(p, "appointment_updated", updated.ID, patchDiff(patch))
	return updated, nil
}

func orderOf(ap *models.Appointment) int {
	if ap.RecurrenceOrder != nil {
		return *ap.RecurrenceOrder
	}
	return 0
}

// patchDiff torna o patch serializável para a auditoria.
func patchDiff(p domain.Patch) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
