package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	"github.com/BruksfildServices01/clinica-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

type WorkingDay struct {
	Weekday    int    `json:"weekday"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
}

type WorkingHours struct {
	Deps
}

func NewWorkingHours(deps Deps) *WorkingHours {
	return &WorkingHours{Deps: deps}
}

func (uc *WorkingHours) List(ctx context.Context, p access.Principal, professionalID string) ([]models.WorkingHours, error) {
	if err := p.CanView(professionalID); err != nil {
		return nil, err
	}
	return uc.Repo.ListWorkingHours(ctx, p.CompanyID, professionalID)
}

func (uc *WorkingHours) Save(ctx context.Context, p access.Principal, professionalID string, days []WorkingDay) ([]models.WorkingHours, error) {
	if err := p.CanEdit(professionalID); err != nil {
		return nil, err
	}

	for _, d := range days {
		if err := validateDay(d); err != nil {
			return nil, err
		}
	}

	for _, d := range days {
		wh := &models.WorkingHours{
			CompanyID:      p.CompanyID,
			ProfessionalID: professionalID,
			Weekday:        d.Weekday,
			Active:         d.Active,
			StartTime:      d.StartTime,
			EndTime:        d.EndTime,
			LunchStart:     d.LunchStart,
			LunchEnd:       d.LunchEnd,
		}
		if err := uc.Repo.SaveWorkingHours(ctx, wh); err != nil {
			return nil, err
		}
	}

	if uc.Audit != nil {
		uc.record(p, "working_hours_updated", professionalID, days)
	}

	return uc.Repo.ListWorkingHours(ctx, p.CompanyID, professionalID)
}

func validateDay(d WorkingDay) error {
	if d.Weekday < 0 || d.Weekday > 6 {
		return httperr.ErrBusiness("invalid_weekday")
	}
	if !d.Active {
		return nil
	}

	start, err1 := time.Parse("15:04", d.StartTime)
	end, err2 := time.Parse("15:04", d.EndTime)
	if err1 != nil || err2 != nil || !end.After(start) {
		return httperr.ErrBusiness("invalid_working_hours")
	}

	if d.LunchStart == "" && d.LunchEnd == "" {
		return nil
	}
	ls, err1 := time.Parse("15:04", d.LunchStart)
	le, err2 := time.Parse("15:04", d.LunchEnd)
	if err1 != nil || err2 != nil || !le.After(ls) || ls.Before(start) || le.After(end) {
		return httperr.ErrBusiness("invalid_lunch_break")
	}
	return nil
}
