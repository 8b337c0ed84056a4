package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
	"github.com/BruksfildServices01/clinica-scheduler/internal/notify"
)

// ======================================================
// UpdateSeries
// ======================================================

type UpdateSeries struct {
	Deps
}

func NewUpdateSeries(deps Deps) *UpdateSeries {
	return &UpdateSeries{Deps: deps}
}

// Execute aplica o patch às ocorrências com ordem >= fromOrder.
func (uc *UpdateSeries) Execute(
	ctx context.Context,
	p access.Principal,
	groupID string,
	in SeriesPatch,
	fromOrder int,
) ([]models.Appointment, error) {

	members, err := uc.Repo.ListByRecurrenceGroup(ctx, groupID, p.CompanyID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, domain.ErrNotFound
	}

	current := members[0].ProfessionalID
	if err := p.CanEdit(current); err != nil {
		return nil, err
	}

	target := current
	if in.ProfessionalID != nil {
		target = strings.TrimSpace(*in.ProfessionalID)
		if err := p.CanEdit(target); err != nil {
			return nil, err
		}
	}

	if v := in.violations(); len(v) > 0 {
		return nil, &domain.ValidationError{Violations: v}
	}

	var selected []models.Appointment
	for _, m := range members {
		if orderOf(&m) >= fromOrder {
			selected = append(selected, m)
		}
	}

	patch := in.patch()
	if len(selected) == 0 || len(patch) == 0 {
		return selected, nil
	}

	out := make([]models.Appointment, 0, len(selected))
	err = uc.Repo.WithProfessionalLock(ctx, p.CompanyID, target, func(tx domain.Repository) error {
		if target != current {
			if err := uc.checkMove(ctx, tx, p.CompanyID, target, groupID, selected); err != nil {
				return err
			}
		}

		for _, m := range selected {
			updated, err := tx.Update(ctx, m.ID, p.CompanyID, patch)
			if err != nil {
				return err
			}
			out = append(out, *updated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	diff := patchDiff(patch)
	diff["from_order"] = fromOrder
	diff["updated"] = len(out)
	uc.record(p, "series_updated", groupID, diff)

	return out, nil
}

// checkMove confere a agenda do novo profissional para as ocorrências ativas.
func (uc *UpdateSeries) checkMove(
	ctx context.Context,
	tx domain.Repository,
	companyID, professionalID, groupID string,
	selected []models.Appointment,
) error {

	var active []models.Appointment
	for i := range selected {
		if domain.IsOccupying(&selected[i], domain.CheckOptions{}) {
			active = append(active, selected[i])
		}
	}
	if len(active) == 0 {
		return nil
	}

	window := domain.Window(active)
	existing, err := tx.FindActiveByProfessionalInRange(ctx, companyID, professionalID, window.Start, window.End)
	if err != nil {
		return err
	}

	opts := uc.checkOptions()
	opts.ExcludeGroupID = groupID

	if conflicts := domain.Conflicting(domain.ClassifySeries(active, existing, opts)); len(conflicts) > 0 {
		return &domain.ConflictError{Occurrences: conflicts}
	}
	return nil
}

// ======================================================
// RescheduleSeries ("esta e as seguintes")
// ======================================================

type RescheduleSeriesInput struct {
	FromOrder int

	// novo horário da primeira ocorrência regerada
	Start time.Time
	End   time.Time

	// nil mantém a regra gravada na série
	Recurrence *domain.RecurrenceRequest

	SkipConflicting bool
}

type RescheduleSeries struct {
	Deps
}

func NewRescheduleSeries(deps Deps) *RescheduleSeries {
	return &RescheduleSeries{Deps: deps}
}

// Execute apaga as ocorrências com ordem >= FromOrder e gera de novo a partir
// do novo horário, mantendo o group id e numerando a partir de FromOrder.
func (uc *RescheduleSeries) Execute(
	ctx context.Context,
	p access.Principal,
	groupID string,
	in RescheduleSeriesInput,
) (*CreateAppointmentResult, error) {

	members, err := uc.Repo.ListByRecurrenceGroup(ctx, groupID, p.CompanyID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, domain.ErrNotFound
	}

	var (
		anchor   *models.Appointment
		selected []models.Appointment
	)
	for i := range members {
		if orderOf(&members[i]) < in.FromOrder {
			continue
		}
		if domain.Status(members[i].Status) == domain.StatusCompleted {
			// histórico financeiro não é regerado
			return nil, httperr.ErrBusiness("series_has_completed_occurrences")
		}
		if anchor == nil || orderOf(&members[i]) < orderOf(anchor) {
			anchor = &members[i]
		}
		selected = append(selected, members[i])
	}
	if anchor == nil {
		return nil, httperr.ErrBusiness("invalid_from_order")
	}
	if err := p.CanEdit(anchor.ProfessionalID); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Regra + validação
	// --------------------------------------------------
	loc := uc.location(p)

	rule := in.Recurrence
	if rule == nil {
		rule = &domain.RecurrenceRequest{
			Frequency:          domain.Frequency(anchor.RecurrenceFrequency),
			CustomIntervalDays: anchor.RecurrenceCustomIntervalDays,
			EndsAt:             anchor.RecurrenceEndsAt,
		}
	}

	var violations []domain.Violation
	if in.Start.IsZero() {
		violations = append(violations, domain.ViolationStartRequired)
	}
	if in.End.IsZero() {
		violations = append(violations, domain.ViolationEndRequired)
	}
	if !in.Start.IsZero() && !in.End.After(in.Start) {
		violations = append(violations, domain.ViolationInvalidTimeRange)
	}
	if !in.Start.IsZero() {
		violations = append(violations, domain.ValidateRecurrence(in.Start, rule, loc)...)
	}
	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	// --------------------------------------------------
	// Novas ocorrências
	// --------------------------------------------------
	base := *anchor
	base.ID = ""
	base.Start = in.Start.UTC()
	base.End = in.End.UTC()
	base.PaidCents = nil
	base.ClientPresent = nil
	base.CanceledAt = nil
	base.CompletedAt = nil
	base.Reminder24hSentAt = nil
	base.Reminder1hSentAt = nil
	base.CreatedAt = time.Time{}
	base.UpdatedAt = time.Time{}
	base.CreatedByUID = p.UID
	if !domain.IsBlock(&base) && base.Status != string(domain.StatusPending) {
		base.Status = string(domain.StatusScheduled)
	}

	occurrences, err := domain.Expand(base, domain.RuleFrom(rule), loc)
	if err != nil {
		return nil, err
	}
	for k := range occurrences {
		order := in.FromOrder + k
		occurrences[k].RecurrenceGroupID = &groupID
		occurrences[k].RecurrenceOrder = &order
	}

	// --------------------------------------------------
	// Troca dentro do lock: apaga, confere, insere
	// --------------------------------------------------
	var skipped []domain.OccurrenceResult
	err = uc.Repo.WithProfessionalLock(ctx, p.CompanyID, anchor.ProfessionalID, func(tx domain.Repository) error {
		for _, m := range selected {
			if err := tx.DeleteByID(ctx, m.ID, p.CompanyID); err != nil {
				return err
			}
		}

		if !domain.IsBlock(&base) {
			admitted, conflicts, err := uc.admit(ctx, tx, p.CompanyID, anchor.ProfessionalID, occurrences, in.SkipConflicting)
			if err != nil {
				return err
			}
			occurrences, skipped = admitted, conflicts
		}
		return tx.InsertMany(ctx, occurrences)
	})
	if err != nil {
		return nil, err
	}

	uc.record(p, "series_rescheduled", groupID, map[string]any{
		"from_order": in.FromOrder,
		"removed":    len(selected),
		"created":    len(occurrences),
		"skipped":    len(skipped),
	})
	if base.Status != string(domain.StatusPending) {
		uc.publish(ctx, notify.TypeScheduled, &occurrences[0])
	}

	return &CreateAppointmentResult{Appointments: occurrences, Skipped: skipped}, nil
}

// ======================================================
// Delete
// ======================================================

type DeleteAppointment struct {
	Deps
}

func NewDeleteAppointment(deps Deps) *DeleteAppointment {
	return &DeleteAppointment{Deps: deps}
}

// Occurrence remove só o registro informado.
func (uc *DeleteAppointment) Occurrence(ctx context.Context, p access.Principal, appointmentID string) error {
	ap, err := uc.Repo.GetByID(ctx, appointmentID, p.CompanyID)
	if err != nil {
		return err
	}
	if err := p.CanEdit(ap.ProfessionalID); err != nil {
		return err
	}

	if err := uc.Repo.DeleteByID(ctx, ap.ID, p.CompanyID); err != nil {
		return err
	}

	uc.record(p, "appointment_deleted", ap.ID, nil)
	return nil
}

// Series remove todas as ocorrências do grupo e devolve quantas eram.
func (uc *DeleteAppointment) Series(ctx context.Context, p access.Principal, groupID string) (int64, error) {
	members, err := uc.Repo.ListByRecurrenceGroup(ctx, groupID, p.CompanyID)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, domain.ErrNotFound
	}
	if err := p.CanEdit(members[0].ProfessionalID); err != nil {
		return 0, err
	}

	n, err := uc.Repo.DeleteByRecurrenceGroup(ctx, groupID, p.CompanyID)
	if err != nil {
		return 0, err
	}

	uc.record(p, "series_deleted", groupID, map[string]any{"deleted": n})
	return n, nil
}
