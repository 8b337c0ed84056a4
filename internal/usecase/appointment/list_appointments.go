package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/dto"
	"github.com/BruksfildServices01/clinica-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
	"github.com/BruksfildServices01/clinica-scheduler/internal/timezone"
)

type ListAppointments struct {
	Deps
}

func NewListAppointments(deps Deps) *ListAppointments {
	return &ListAppointments{Deps: deps}
}

// ByDate lista o dia (no fuso da empresa). professionalID vazio = todos,
// desde que o ator possa ver todas as agendas.
func (uc *ListAppointments) ByDate(
	ctx context.Context,
	p access.Principal,
	professionalID string,
	date string,
) ([]dto.AppointmentListDTO, error) {

	start, end, err := timezone.DayBounds(uc.location(p), date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}
	return uc.period(ctx, p, professionalID, start, end)
}

func (uc *ListAppointments) ByMonth(
	ctx context.Context,
	p access.Principal,
	professionalID string,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if month < 1 || month > 12 {
		return nil, httperr.ErrBusiness("invalid_month")
	}
	start, end := timezone.MonthBounds(uc.location(p), year, time.Month(month))
	return uc.period(ctx, p, professionalID, start, end)
}

func (uc *ListAppointments) period(
	ctx context.Context,
	p access.Principal,
	professionalID string,
	start time.Time,
	end time.Time,
) ([]dto.AppointmentListDTO, error) {

	scope, err := p.ViewScope(professionalID)
	if err != nil {
		return nil, err
	}

	appointments, err := uc.Repo.ListOverlapping(ctx, p.CompanyID, scope, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for i := range appointments {
		out = append(out, toListDTO(&appointments[i]))
	}
	return out, nil
}

func toListDTO(ap *models.Appointment) dto.AppointmentListDTO {
	return dto.AppointmentListDTO{
		ID:                ap.ID,
		ProfessionalID:    ap.ProfessionalID,
		ClientID:          ap.ClientID,
		ServiceID:         ap.ServiceID,
		Start:             ap.Start,
		End:               ap.End,
		Status:            ap.Status,
		EffectiveStatus:   string(domain.EffectiveStatus(ap)),
		IsBlock:           ap.IsBlock,
		BlockDescription:  ap.BlockDescription,
		RecurrenceGroupID: ap.RecurrenceGroupID,
		PriceCents:        ap.PriceCents,
	}
}

// ======================================================
// GET
// ======================================================

type GetAppointment struct {
	Deps
}

func NewGetAppointment(deps Deps) *GetAppointment {
	return &GetAppointment{Deps: deps}
}

func (uc *GetAppointment) Execute(ctx context.Context, p access.Principal, id string) (*models.Appointment, error) {
	ap, err := uc.Repo.GetByID(ctx, id, p.CompanyID)
	if err != nil {
		return nil, err
	}
	if ap.ProfessionalID != domain.AllProfessionals {
		if err := p.CanView(ap.ProfessionalID); err != nil {
			return nil, err
		}
	}
	return ap, nil
}
