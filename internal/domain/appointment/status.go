package appointment

import "github.com/BruksfildServices01/clinica-scheduler/internal/models"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusNoShow    Status = "no_show"

	// StatusBlocked marca bloqueios de agenda; fica fora do grafo de transições.
	StatusBlocked Status = "blocked"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusScheduled, StatusCanceled},
	StatusScheduled: {StatusConfirmed, StatusCanceled, StatusCompleted},
	StatusConfirmed: {StatusCompleted, StatusCanceled},
	StatusCompleted: nil,
	StatusCanceled:  nil,
	StatusNoShow:    nil,
}

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusScheduled, StatusConfirmed,
		StatusCompleted, StatusCanceled, StatusNoShow, StatusBlocked:
		return st, true
	}
	return "", false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled || s == StatusNoShow
}

// ===============================
// Validations
// ===============================

// CanTransition consulta a tabela de transições; o que não está listado é recusado.
func CanTransition(current, target Status) bool {
	for _, allowed := range transitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

func CheckTransition(current, target Status) error {
	if !CanTransition(current, target) {
		return &TransitionError{From: current, To: target}
	}
	return nil
}

// InitialStatus resolve o status de criação: bloqueios são sempre blocked;
// agendamentos entram como scheduled (padrão) ou pending (aguardando aprovação).
func InitialStatus(isBlock bool, requested Status) (Status, bool) {
	if isBlock {
		return StatusBlocked, true
	}
	switch requested {
	case "":
		return StatusScheduled, true
	case StatusScheduled, StatusPending:
		return requested, true
	}
	return requested, false
}

// EffectiveStatus aplica a flag de presença sobre o status gravado:
// ClientPresent == false vale como no_show mesmo que o status diga completed.
func EffectiveStatus(ap *models.Appointment) Status {
	if IsBlock(ap) {
		return StatusBlocked
	}
	if ap.ClientPresent != nil && !*ap.ClientPresent {
		return StatusNoShow
	}
	return Status(ap.Status)
}

func IsBlock(ap *models.Appointment) bool {
	return ap.IsBlock || ap.Status == string(StatusBlocked)
}
