package appointment

import (
	"fmt"
	"strings"

	"github.com/BruksfildServices01/clinica-scheduler/internal/httperr"
)

var (
	ErrNotFound                 = httperr.ErrBusiness("appointment_not_found")
	ErrRecurrenceBoundsExceeded = httperr.ErrBusiness("recurrence_bounds_exceeded")
	ErrNotInSeries              = httperr.ErrBusiness("appointment_not_in_series")
	ErrWorkingHoursNotFound     = httperr.ErrBusiness("working_hours_not_found")
)

// ValidationError carrega todas as regras violadas, nunca só a primeira.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	codes := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		codes = append(codes, string(v))
	}
	return "validation_failed: " + strings.Join(codes, ",")
}

func (e *ValidationError) Code() string { return "validation_failed" }

func (e *ValidationError) Has(v Violation) bool {
	for _, got := range e.Violations {
		if got == v {
			return true
		}
	}
	return false
}

// ConflictError lista, por ocorrência, todos os agendamentos que colidem.
type ConflictError struct {
	Occurrences []OccurrenceResult
}

func (e *ConflictError) Error() string {
	n := 0
	for _, o := range e.Occurrences {
		n += len(o.Conflicts)
	}
	return fmt.Sprintf("time_conflict: %d conflicting booking(s)", n)
}

func (e *ConflictError) Code() string { return "time_conflict" }

// TransitionError: mudança de status não permitida a partir do estado atual.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid_state: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Code() string { return "invalid_state" }
