package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyCustom   Frequency = "custom"
)

// MaxOccurrences é o teto de ocorrências geradas para uma série.
const MaxOccurrences = 366

type Rule struct {
	Frequency          Frequency
	CustomIntervalDays int
	EndsAt             time.Time
}

func RuleFrom(r *RecurrenceRequest) Rule {
	rule := Rule{
		Frequency:          r.Frequency,
		CustomIntervalDays: r.CustomIntervalDays,
	}
	if r.EndsAt != nil {
		rule.EndsAt = *r.EndsAt
	}
	return rule
}

// stepDays devolve o passo em dias; 0 com monthly=true indica passo mensal.
func (r Rule) stepDays() (days int, monthly bool) {
	switch r.Frequency {
	case FrequencyDaily:
		return 1, false
	case FrequencyWeekly:
		return 7, false
	case FrequencyBiweekly:
		return 14, false
	case FrequencyMonthly:
		return 0, true
	case FrequencyCustom:
		return r.CustomIntervalDays, false
	}
	return 0, false
}

// Expand gera as ocorrências da série a partir do agendamento base.
// A ordem 0 é o próprio intervalo base; todas recebem um novo group id.
// Datas de calendário (mês, fim do dia) são resolvidas em loc.
func Expand(base models.Appointment, rule Rule, loc *time.Location) ([]models.Appointment, error) {
	if loc == nil {
		loc = time.UTC
	}

	step, monthly := rule.stepDays()
	if !monthly && step <= 0 {
		return nil, ErrRecurrenceBoundsExceeded
	}

	start := base.Start.In(loc)
	duration := base.End.Sub(base.Start)
	last := EndOfDay(rule.EndsAt, loc)

	if rule.EndsAt.IsZero() || !last.After(start) ||
		last.After(EndOfDay(start.AddDate(0, 0, MaxRecurrenceDays), loc)) {
		return nil, ErrRecurrenceBoundsExceeded
	}

	groupID := uuid.NewString()
	originalStart := base.Start.UTC()
	endsAt := rule.EndsAt.UTC()

	var out []models.Appointment
	for k := 0; ; k++ {
		var s time.Time
		if monthly {
			s = addMonthsClamped(start, k)
		} else {
			s = start.AddDate(0, 0, k*step)
		}
		if s.After(last) {
			break
		}
		if k >= MaxOccurrences {
			return nil, ErrRecurrenceBoundsExceeded
		}

		order := k
		occ := base
		occ.ID = ""
		occ.Start = s.UTC()
		occ.End = s.Add(duration).UTC()
		occ.RecurrenceGroupID = &groupID
		occ.RecurrenceFrequency = string(rule.Frequency)
		occ.RecurrenceCustomIntervalDays = rule.CustomIntervalDays
		occ.RecurrenceOrder = &order
		occ.RecurrenceOriginalStart = &originalStart
		occ.RecurrenceEndsAt = &endsAt

		out = append(out, occ)
	}

	return out, nil
}

// addMonthsClamped avança n meses mantendo o dia do mês de t, limitado
// ao último dia do mês de destino. Sempre calculado a partir do dia base.
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	firstOfTarget := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(firstOfTarget); d > last {
		d = last
	}

	ty, tm, _ := firstOfTarget.Date()
	return time.Date(ty, tm, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
