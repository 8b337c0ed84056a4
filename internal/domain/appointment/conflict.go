package appointment

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

// AllProfessionals é o profissional gravado em bloqueios com escopo "all".
const AllProfessionals = "__all__"

type Conflict struct {
	AppointmentID  string    `json:"appointment_id"`
	ProfessionalID string    `json:"professional_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Status         Status    `json:"status"`
	IsBlock        bool      `json:"is_block"`
}

// OccurrenceResult é a classificação de uma ocorrência candidata.
type OccurrenceResult struct {
	Order     int        `json:"order"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Conflicts []Conflict `json:"conflicts"`
}

func (r OccurrenceResult) Admissible() bool {
	return len(r.Conflicts) == 0
}

type CheckOptions struct {
	// BlocksOccupy faz bloqueios existentes contarem como ocupação.
	BlocksOccupy bool

	// ignorados na checagem (o próprio registro em edições)
	ExcludeID      string
	ExcludeGroupID string
}

// IsOccupying decide se um registro existente ocupa o horário.
func IsOccupying(ap *models.Appointment, opts CheckOptions) bool {
	if opts.ExcludeID != "" && ap.ID == opts.ExcludeID {
		return false
	}
	if opts.ExcludeGroupID != "" && ap.RecurrenceGroupID != nil &&
		*ap.RecurrenceGroupID == opts.ExcludeGroupID {
		return false
	}

	if IsBlock(ap) {
		return opts.BlocksOccupy
	}

	return OccupyingStatus(EffectiveStatus(ap))
}

// OccupyingStatus indica os status que seguram o horário na agenda.
func OccupyingStatus(s Status) bool {
	return s == StatusScheduled || s == StatusConfirmed
}

// CheckConflicts devolve todos os registros ocupantes que colidem com o
// candidato. existing deve conter apenas a agenda do profissional em questão
// (e bloqueios gerais da empresa).
func CheckConflicts(candidate Interval, existing []models.Appointment, opts CheckOptions) []Conflict {
	var out []Conflict

	for i := range existing {
		ap := &existing[i]
		if !IsOccupying(ap, opts) {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, ap.Start, ap.End) {
			continue
		}
		out = append(out, Conflict{
			AppointmentID:  ap.ID,
			ProfessionalID: ap.ProfessionalID,
			Start:          ap.Start,
			End:            ap.End,
			Status:         EffectiveStatus(ap),
			IsBlock:        IsBlock(ap),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})

	return out
}

// ClassifySeries classifica cada ocorrência independentemente.
func ClassifySeries(occurrences []models.Appointment, existing []models.Appointment, opts CheckOptions) []OccurrenceResult {
	out := make([]OccurrenceResult, 0, len(occurrences))

	for i, occ := range occurrences {
		order := i
		if occ.RecurrenceOrder != nil {
			order = *occ.RecurrenceOrder
		}
		out = append(out, OccurrenceResult{
			Order:     order,
			Start:     occ.Start,
			End:       occ.End,
			Conflicts: CheckConflicts(Interval{Start: occ.Start, End: occ.End}, existing, opts),
		})
	}

	return out
}

// Conflicting filtra apenas as ocorrências com colisão.
func Conflicting(results []OccurrenceResult) []OccurrenceResult {
	var out []OccurrenceResult
	for _, r := range results {
		if !r.Admissible() {
			out = append(out, r)
		}
	}
	return out
}

// Window devolve o menor intervalo que cobre todas as ocorrências.
func Window(occurrences []models.Appointment) Interval {
	var w Interval
	for i, occ := range occurrences {
		if i == 0 || occ.Start.Before(w.Start) {
			w.Start = occ.Start
		}
		if i == 0 || occ.End.After(w.End) {
			w.End = occ.End
		}
	}
	return w
}
