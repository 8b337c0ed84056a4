package appointment

import (
	"math"
	"strings"
	"time"
)

// Violation identifica uma regra de validação violada.
type Violation string

const (
	ViolationCompanyRequired      Violation = "company_id_required"
	ViolationProfessionalRequired Violation = "professional_id_required"
	ViolationClientRequired       Violation = "client_id_required"
	ViolationServiceRequired      Violation = "service_id_required"
	ViolationStartRequired        Violation = "start_required"
	ViolationEndRequired          Violation = "end_required"
	ViolationPriceRequired        Violation = "price_required"

	ViolationInvalidTimeRange     Violation = "invalid_time_range"
	ViolationInvalidPrice         Violation = "invalid_price"
	ViolationInvalidCommission    Violation = "invalid_commission"
	ViolationInvalidPaymentMethod Violation = "invalid_payment_method"
	ViolationInvalidBlockScope    Violation = "invalid_block_scope"
	ViolationInvalidStatus        Violation = "invalid_initial_status"

	ViolationRecurrenceEndRequired    Violation = "recurrence_end_required"
	ViolationRecurrenceEndBeforeStart Violation = "recurrence_end_before_start"
	ViolationRecurrenceEndTooFar      Violation = "recurrence_end_too_far"
	ViolationInvalidFrequency         Violation = "invalid_recurrence_frequency"
	ViolationInvalidInterval          Violation = "invalid_recurrence_interval"

	// conclusão
	ViolationPaymentRequired       Violation = "paid_amount_required"
	ViolationInvalidPaidAmount     Violation = "invalid_paid_amount"
	ViolationPaymentMethodRequired Violation = "payment_method_required"
)

const (
	BlockScopeSingle = "single"
	BlockScopeAll    = "all"

	// janela máxima entre o início e o fim de uma recorrência
	MaxRecurrenceDays = 365
)

var paymentMethods = map[string]struct{}{
	"dinheiro":       {},
	"cartao_debito":  {},
	"cartao_credito": {},
	"pix":            {},
	"outros":         {},
}

func ValidPaymentMethod(m string) bool {
	_, ok := paymentMethods[m]
	return ok
}

// RecurrenceRequest é a regra pedida junto com o agendamento base.
type RecurrenceRequest struct {
	Frequency          Frequency  `json:"frequency"`
	CustomIntervalDays int        `json:"custom_interval_days"`
	EndsAt             *time.Time `json:"ends_at"`
}

type BookingRequest struct {
	CompanyID      string
	ProfessionalID string
	ClientID       string
	ServiceID      string
	ServiceIDs     []string

	Start time.Time
	End   time.Time

	PriceCents        *int64
	CommissionPercent float64
	PaymentMethod     string

	IsBlock          bool
	BlockScope       string
	BlockDescription string

	Notes        string
	NotifyClient *bool
	CreatedByUID string

	Recurrence *RecurrenceRequest

	// vazio = scheduled; pending fica aguardando aprovação.
	// Bloqueios sempre viram blocked.
	Status Status
}

// Interval devolve o intervalo pedido.
func (r BookingRequest) Interval() Interval {
	return Interval{Start: r.Start, End: r.End}
}

// Validate normaliza o pedido e coleta todas as violações de uma vez.
// loc é o fuso da empresa; a data final da recorrência vale até o fim do dia.
func Validate(req BookingRequest, loc *time.Location) (BookingRequest, []Violation) {
	if loc == nil {
		loc = time.UTC
	}

	req = normalize(req)

	var out []Violation
	add := func(v Violation) { out = append(out, v) }

	status, ok := InitialStatus(req.IsBlock, req.Status)
	if !ok {
		add(ViolationInvalidStatus)
	}
	req.Status = status

	// -------- required --------
	if req.CompanyID == "" {
		add(ViolationCompanyRequired)
	}
	if req.ProfessionalID == "" {
		add(ViolationProfessionalRequired)
	}
	if !req.IsBlock {
		if req.ClientID == "" {
			add(ViolationClientRequired)
		}
		if req.ServiceID == "" {
			add(ViolationServiceRequired)
		}
		if req.PriceCents == nil {
			add(ViolationPriceRequired)
		}
	}
	if req.Start.IsZero() {
		add(ViolationStartRequired)
	}
	if req.End.IsZero() {
		add(ViolationEndRequired)
	}

	// -------- business rules --------
	if !req.Start.IsZero() && !req.End.IsZero() && !req.End.After(req.Start) {
		add(ViolationInvalidTimeRange)
	}
	if req.PriceCents != nil && *req.PriceCents < 0 {
		add(ViolationInvalidPrice)
	}
	c := req.CommissionPercent
	if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 || c > 100 {
		add(ViolationInvalidCommission)
	}
	if req.PaymentMethod != "" && !ValidPaymentMethod(req.PaymentMethod) {
		add(ViolationInvalidPaymentMethod)
	}
	if req.IsBlock && req.BlockScope != BlockScopeSingle && req.BlockScope != BlockScopeAll {
		add(ViolationInvalidBlockScope)
	}

	if req.Recurrence != nil {
		out = append(out, ValidateRecurrence(req.Start, req.Recurrence, loc)...)
	}

	return req, out
}

// ValidateRecurrence confere a regra contra o início da primeira ocorrência.
func ValidateRecurrence(start time.Time, r *RecurrenceRequest, loc *time.Location) []Violation {
	var out []Violation

	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
	case FrequencyCustom:
		if r.CustomIntervalDays < 1 || r.CustomIntervalDays > MaxRecurrenceDays {
			out = append(out, ViolationInvalidInterval)
		}
	default:
		out = append(out, ViolationInvalidFrequency)
	}

	if r.EndsAt == nil || r.EndsAt.IsZero() {
		return append(out, ViolationRecurrenceEndRequired)
	}
	if start.IsZero() {
		return out
	}

	last := EndOfDay(*r.EndsAt, loc)
	if !last.After(start) {
		out = append(out, ViolationRecurrenceEndBeforeStart)
	} else if last.After(EndOfDay(start.AddDate(0, 0, MaxRecurrenceDays), loc)) {
		out = append(out, ViolationRecurrenceEndTooFar)
	}
	return out
}

// EndOfDay devolve o último instante do dia civil de t em loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	y, m, d := lt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func normalize(req BookingRequest) BookingRequest {
	req.CompanyID = strings.TrimSpace(req.CompanyID)
	req.ProfessionalID = strings.TrimSpace(req.ProfessionalID)
	req.ClientID = strings.TrimSpace(req.ClientID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	req.BlockScope = strings.TrimSpace(req.BlockScope)

	ids := make([]string, 0, len(req.ServiceIDs))
	for _, id := range req.ServiceIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	req.ServiceIDs = ids
	if len(ids) > 0 {
		req.ServiceID = ids[0]
	}

	if req.IsBlock {
		zero := int64(0)
		req.PriceCents = &zero
		req.CommissionPercent = 0
		req.PaymentMethod = ""
		if req.BlockScope == "" {
			req.BlockScope = BlockScopeSingle
		}
		if req.BlockScope == BlockScopeAll {
			req.ProfessionalID = AllProfessionals
		}
	} else {
		req.BlockScope = ""
	}
	req.Status = Status(strings.ToLower(strings.TrimSpace(string(req.Status))))

	if req.Recurrence != nil {
		r := *req.Recurrence
		r.Frequency = Frequency(strings.ToLower(strings.TrimSpace(string(r.Frequency))))
		req.Recurrence = &r
	}

	return req
}
