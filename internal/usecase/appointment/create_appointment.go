package appointment

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
	"github.com/BruksfildServices01/clinica-scheduler/internal/notify"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type CreateAppointmentInput struct {
	Booking domain.BookingRequest

	// SkipConflicting admite as ocorrências livres de uma série e devolve
	// as demais em Skipped; sem a flag, qualquer conflito rejeita o lote.
	SkipConflicting bool
}

type CreateAppointmentResult struct {
	Appointments []models.Appointment      `json:"appointments"`
	Skipped      []domain.OccurrenceResult `json:"skipped,omitempty"`
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	Deps
}

func NewCreateAppointment(deps Deps) *CreateAppointment {
	return &CreateAppointment{Deps: deps}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	p access.Principal,
	in CreateAppointmentInput,
) (*CreateAppointmentResult, error) {

	// --------------------------------------------------
	// 1️⃣ Tenant e autor vêm do token
	// --------------------------------------------------
	req := in.Booking
	req.CompanyID = p.CompanyID
	req.CreatedByUID = p.UID

	loc := uc.location(p)

	// --------------------------------------------------
	// 2️⃣ Validação (todas as regras de uma vez)
	// --------------------------------------------------
	req, violations := domain.Validate(req, loc)
	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	if err := p.CanEdit(req.ProfessionalID); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3️⃣ Ocorrências (série ou avulso)
	// --------------------------------------------------
	base := newAppointment(req)

	occurrences := []models.Appointment{base}
	if req.Recurrence != nil {
		expanded, err := domain.Expand(base, domain.RuleFrom(req.Recurrence), loc)
		if err != nil {
			return nil, err
		}
		occurrences = expanded
	}

	// --------------------------------------------------
	// 4️⃣ Conflito + gravação na mesma transação
	// --------------------------------------------------
	var skipped []domain.OccurrenceResult

	persist := func(repo domain.Repository) error {
		if !req.IsBlock {
			admitted, conflicts, err := uc.admit(ctx, repo, req.CompanyID, req.ProfessionalID, occurrences, in.SkipConflicting)
			if err != nil {
				return err
			}
			occurrences, skipped = admitted, conflicts
		}

		if len(occurrences) == 1 {
			return repo.Insert(ctx, &occurrences[0])
		}
		return repo.InsertMany(ctx, occurrences)
	}

	var err error
	if req.IsBlock {
		// bloqueios podem ser sobrepostos a agendamentos existentes
		err = persist(uc.Repo)
	} else {
		err = uc.Repo.WithProfessionalLock(ctx, req.CompanyID, req.ProfessionalID, persist)
	}
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5️⃣ Auditoria + notificação
	// --------------------------------------------------
	first := &occurrences[0]
	action := "appointment_created"
	if req.IsBlock {
		action = "block_created"
	}
	uc.record(p, action, first.ID, map[string]any{
		"occurrences":         len(occurrences),
		"skipped":             len(skipped),
		"recurrence_group_id": first.RecurrenceGroupID,
	})
	// pendente só notifica quando aprovado
	if first.Status != string(domain.StatusPending) {
		uc.publish(ctx, notify.TypeScheduled, first)
	}

	uc.Log.WithFields(logrus.Fields{
		"company_id":     req.CompanyID,
		"appointment_id": first.ID,
		"actor":          p.UID,
		"occurrences":    len(occurrences),
	}).Info("appointment created")

	return &CreateAppointmentResult{
		Appointments: occurrences,
		Skipped:      skipped,
	}, nil
}

// admit classifica as ocorrências contra a agenda atual do profissional.
func (d Deps) admit(
	ctx context.Context,
	repo domain.Repository,
	companyID string,
	professionalID string,
	occurrences []models.Appointment,
	skipConflicting bool,
) ([]models.Appointment, []domain.OccurrenceResult, error) {

	window := domain.Window(occurrences)
	existing, err := repo.FindActiveByProfessionalInRange(ctx, companyID, professionalID, window.Start, window.End)
	if err != nil {
		return nil, nil, err
	}

	results := domain.ClassifySeries(occurrences, existing, d.checkOptions())
	conflicts := domain.Conflicting(results)
	if len(conflicts) == 0 {
		return occurrences, nil, nil
	}
	if !skipConflicting || len(conflicts) == len(occurrences) {
		return nil, nil, &domain.ConflictError{Occurrences: conflicts}
	}

	admitted := make([]models.Appointment, 0, len(occurrences)-len(conflicts))
	for i, r := range results {
		if r.Admissible() {
			admitted = append(admitted, occurrences[i])
		}
	}
	return admitted, conflicts, nil
}

func newAppointment(req domain.BookingRequest) models.Appointment {
	notifyClient := true
	if req.NotifyClient != nil {
		notifyClient = *req.NotifyClient
	}

	var price int64
	if req.PriceCents != nil {
		price = *req.PriceCents
	}

	ap := models.Appointment{
		CompanyID:         req.CompanyID,
		ProfessionalID:    req.ProfessionalID,
		ClientID:          req.ClientID,
		ServiceID:         req.ServiceID,
		Start:             req.Start.UTC(),
		End:               req.End.UTC(),
		PriceCents:        price,
		CommissionPercent: req.CommissionPercent,
		PaymentMethod:     req.PaymentMethod,
		Status:            string(req.Status),
		IsBlock:           req.IsBlock,
		BlockScope:        req.BlockScope,
		BlockDescription:  req.BlockDescription,
		NotifyClient:      notifyClient && !req.IsBlock,
		Notes:             req.Notes,
		CreatedByUID:      req.CreatedByUID,
	}
	if len(req.ServiceIDs) > 0 {
		ap.ServiceIDs = req.ServiceIDs
	}
	return ap
}
