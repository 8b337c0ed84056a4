package appointment

import (
	"time"

	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

// TransitionInput carrega os dados de pagamento/presença exigidos na conclusão.
type TransitionInput struct {
	PaidCents     *int64
	PaymentMethod string
	ClientPresent *bool
}

// ===============================
// Domain Actions
// ===============================

// Transition monta o patch de uma mudança de status a partir do status
// efetivo. Não altera ap; em caso de erro nada deve ser gravado.
func Transition(
	ap *models.Appointment,
	target Status,
	in TransitionInput,
	now time.Time,
) (Patch, error) {

	if IsBlock(ap) {
		return nil, &TransitionError{From: StatusBlocked, To: target}
	}

	current := EffectiveStatus(ap)
	if err := CheckTransition(current, target); err != nil {
		return nil, err
	}

	patch := Patch{ColStatus: string(target)}

	switch target {
	case StatusCanceled:
		patch[ColCanceledAt] = now
	case StatusCompleted:
		if err := completionFields(ap, in, patch); err != nil {
			return nil, err
		}
		patch[ColCompletedAt] = now
	}

	return patch, nil
}

func completionFields(ap *models.Appointment, in TransitionInput, patch Patch) error {
	present := in.ClientPresent
	if present == nil {
		present = ap.ClientPresent
	}

	// Ausência: conclusão vira no-show efetivo, sem pagamento.
	if present != nil && !*present {
		patch[ColClientPresent] = false
		patch[ColPaidCents] = int64(0)
		patch[ColPaymentMethod] = ""
		return nil
	}

	var violations []Violation
	switch {
	case in.PaidCents == nil:
		violations = append(violations, ViolationPaymentRequired)
	case *in.PaidCents < 0:
		violations = append(violations, ViolationInvalidPaidAmount)
	}
	switch {
	case in.PaymentMethod == "":
		violations = append(violations, ViolationPaymentMethodRequired)
	case !ValidPaymentMethod(in.PaymentMethod):
		violations = append(violations, ViolationInvalidPaymentMethod)
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	if present != nil {
		patch[ColClientPresent] = true
	}
	patch[ColPaidCents] = *in.PaidCents
	patch[ColPaymentMethod] = in.PaymentMethod
	return nil
}

// SetAttendance marca presença/falta em um atendimento já concluído sem
// reescrever o status. Falta zera os campos de pagamento.
func SetAttendance(ap *models.Appointment, present bool) (Patch, error) {
	if IsBlock(ap) {
		return nil, &TransitionError{From: StatusBlocked, To: StatusNoShow}
	}

	current := EffectiveStatus(ap)
	if current != StatusCompleted {
		to := StatusNoShow
		if present {
			to = StatusCompleted
		}
		return nil, &TransitionError{From: current, To: to}
	}

	if present {
		return Patch{ColClientPresent: true}, nil
	}

	return Patch{
		ColClientPresent: false,
		ColPaidCents:     int64(0),
		ColPaymentMethod: "",
	}, nil
}
