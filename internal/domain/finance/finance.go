// Package finance deriva comissão, repasse e receita de agendamentos.
// Todos os valores em centavos; arredondamento meio-para-cima por linha.
package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Commission = round(price * pct / 100), meio-para-cima.
func Commission(priceCents int64, commissionPercent float64) int64 {
	return decimal.NewFromInt(priceCents).
		Mul(decimal.NewFromFloat(commissionPercent)).
		Div(hundred).
		Round(0).
		IntPart()
}

func ProfessionalPayout(priceCents int64, commissionPercent float64) int64 {
	return priceCents - Commission(priceCents, commissionPercent)
}

// EffectiveRevenue só conta atendimentos concluídos com o cliente presente.
func EffectiveRevenue(ap *models.Appointment) int64 {
	if !RevenueBearing(ap) {
		return 0
	}
	if ap.PaidCents != nil {
		return *ap.PaidCents
	}
	return ap.PriceCents
}

func RevenueBearing(ap *models.Appointment) bool {
	if appointment.IsBlock(ap) {
		return false
	}
	return appointment.EffectiveStatus(ap) == appointment.StatusCompleted
}

type Line struct {
	AppointmentID  string    `json:"appointment_id"`
	ProfessionalID string    `json:"professional_id"`
	ServiceID      string    `json:"service_id"`
	Start          time.Time `json:"start"`
	PaymentMethod  string    `json:"payment_method,omitempty"`

	PriceCents      int64 `json:"price_cents"`
	RevenueCents    int64 `json:"revenue_cents"`
	CommissionCents int64 `json:"commission_cents"`
	PayoutCents     int64 `json:"payout_cents"`
}

// Derive devolve a linha financeira de um agendamento; ok=false quando ele
// não gera receita.
func Derive(ap *models.Appointment) (Line, bool) {
	if !RevenueBearing(ap) {
		return Line{}, false
	}

	commission := Commission(ap.PriceCents, ap.CommissionPercent)
	return Line{
		AppointmentID:   ap.ID,
		ProfessionalID:  ap.ProfessionalID,
		ServiceID:       ap.ServiceID,
		Start:           ap.Start,
		PaymentMethod:   ap.PaymentMethod,
		PriceCents:      ap.PriceCents,
		RevenueCents:    EffectiveRevenue(ap),
		CommissionCents: commission,
		PayoutCents:     ap.PriceCents - commission,
	}, true
}

type Summary struct {
	Key string `json:"key,omitempty"`

	Completed     int `json:"completed"`
	NoShows       int `json:"no_shows"`
	Cancellations int `json:"cancellations"`

	RevenueCents    int64 `json:"revenue_cents"`
	CommissionCents int64 `json:"commission_cents"`
	PayoutCents     int64 `json:"payout_cents"`
}

func (s *Summary) add(ap *models.Appointment) {
	if appointment.IsBlock(ap) {
		return
	}

	switch appointment.EffectiveStatus(ap) {
	case appointment.StatusNoShow:
		s.NoShows++
		return
	case appointment.StatusCanceled:
		s.Cancellations++
		return
	}

	line, ok := Derive(ap)
	if !ok {
		return
	}
	s.Completed++
	s.RevenueCents += line.RevenueCents
	s.CommissionCents += line.CommissionCents
	s.PayoutCents += line.PayoutCents
}

func Summarize(aps []models.Appointment) Summary {
	var s Summary
	for i := range aps {
		s.add(&aps[i])
	}
	return s
}

func GroupByProfessional(aps []models.Appointment) []Summary {
	return groupBy(aps, func(ap *models.Appointment) string { return ap.ProfessionalID })
}

func GroupByService(aps []models.Appointment) []Summary {
	return groupBy(aps, func(ap *models.Appointment) string { return ap.ServiceID })
}

func groupBy(aps []models.Appointment, key func(*models.Appointment) string) []Summary {
	groups := map[string]*Summary{}

	for i := range aps {
		ap := &aps[i]
		if appointment.IsBlock(ap) {
			continue
		}
		k := key(ap)
		g, ok := groups[k]
		if !ok {
			g = &Summary{Key: k}
			groups[k] = g
		}
		g.add(ap)
	}

	out := make([]Summary, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Lines devolve as linhas que geram receita, na ordem recebida.
func Lines(aps []models.Appointment) []Line {
	var out []Line
	for i := range aps {
		if line, ok := Derive(&aps[i]); ok {
			out = append(out, line)
		}
	}
	return out
}
