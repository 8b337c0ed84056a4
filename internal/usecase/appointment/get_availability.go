package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinica-scheduler/internal/timezone"
)

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type AvailabilityInput struct {
	ProfessionalID string
	Date           string
	DurationMin    int
}

type GetAvailability struct {
	Deps
}

func NewGetAvailability(deps Deps) *GetAvailability {
	return &GetAvailability{Deps: deps}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	p access.Principal,
	in AvailabilityInput,
) ([]TimeSlot, error) {

	if in.DurationMin <= 0 {
		return nil, httperr.ErrBusiness("invalid_duration")
	}
	if err := p.CanView(in.ProfessionalID); err != nil {
		return nil, err
	}

	loc := uc.location(p)
	day, next, err := timezone.DayBounds(loc, in.Date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	wh, err := uc.Repo.GetWorkingHours(ctx, p.CompanyID, in.ProfessionalID, int(day.Weekday()))
	if errors.Is(err, domain.ErrWorkingHoursNotFound) {
		return []TimeSlot{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return []TimeSlot{}, nil
	}

	dayStart, err1 := timezone.ClockOn(day, wh.StartTime)
	dayEnd, err2 := timezone.ClockOn(day, wh.EndTime)
	if err1 != nil || err2 != nil {
		return nil, httperr.ErrBusiness("invalid_working_hours")
	}

	var busy []domain.Interval
	if wh.LunchStart != "" && wh.LunchEnd != "" {
		ls, err1 := timezone.ClockOn(day, wh.LunchStart)
		le, err2 := timezone.ClockOn(day, wh.LunchEnd)
		if err1 == nil && err2 == nil {
			busy = append(busy, domain.Interval{Start: ls, End: le})
		}
	}

	appointments, err := uc.Repo.ListOverlapping(ctx, p.CompanyID, in.ProfessionalID, day, next)
	if err != nil {
		return nil, err
	}
	opts := uc.checkOptions()
	for i := range appointments {
		if domain.IsOccupying(&appointments[i], opts) {
			busy = append(busy, domain.Interval{Start: appointments[i].Start, End: appointments[i].End})
		}
	}

	slot := time.Duration(in.DurationMin) * time.Minute
	slots := []TimeSlot{}

	for cur := dayStart; !cur.Add(slot).After(dayEnd); cur = cur.Add(slot) {
		candidate := domain.Interval{Start: cur, End: cur.Add(slot)}

		free := true
		for _, b := range busy {
			if candidate.Overlaps(b) {
				free = false
				break
			}
		}

		if free {
			slots = append(slots, TimeSlot{
				Start: candidate.Start.In(loc).Format("15:04"),
				End:   candidate.End.In(loc).Format("15:04"),
			})
		}
	}

	return slots, nil
}
