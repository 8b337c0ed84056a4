package finance

import (
	"testing"

	"github.com/BruksfildServices01/clinica-scheduler/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestCommissionRoundsHalfUp(t *testing.T) {
	cases := []struct {
		price int64
		pct   float64
		want  int64
	}{
		{10000, 30, 3000},
		{5, 50, 3},       // 2.5 -> 3
		{999, 33.3, 333}, // 332.667 -> 333
		{101, 10, 10},    // 10.1 -> 10
		{0, 40, 0},
		{1000, 0, 0},
		{1000, 100, 1000},
	}

	for _, tc := range cases {
		if got := Commission(tc.price, tc.pct); got != tc.want {
			t.Fatalf("Commission(%d, %v) = %d, want %d", tc.price, tc.pct, got, tc.want)
		}
	}
}

func TestPayoutPlusCommissionEqualsPrice(t *testing.T) {
	prices := []int64{0, 1, 7, 99, 1001, 12345, 99999}
	pcts := []float64{0, 0.5, 12.5, 33.3, 50, 66.67, 99.9, 100}

	for _, p := range prices {
		for _, c := range pcts {
			if got := ProfessionalPayout(p, c) + Commission(p, c); got != p {
				t.Fatalf("payout+commission = %d, want %d (p=%d c=%v)", got, p, p, c)
			}
		}
	}
}

func TestEffectiveRevenue(t *testing.T) {
	cases := []struct {
		name string
		ap   models.Appointment
		want int64
	}{
		{"paid amount wins", models.Appointment{Status: "completed", PriceCents: 10000, PaidCents: ptr(int64(9000))}, 9000},
		{"falls back to price", models.Appointment{Status: "completed", PriceCents: 10000}, 10000},
		{"absent client", models.Appointment{Status: "completed", PriceCents: 10000, PaidCents: ptr(int64(10000)), ClientPresent: ptr(false)}, 0},
		{"not completed", models.Appointment{Status: "confirmed", PriceCents: 10000}, 0},
		{"block", models.Appointment{Status: "completed", IsBlock: true, PriceCents: 10000}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EffectiveRevenue(&tc.ap); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestSummarizeAndGroup(t *testing.T) {
	aps := []models.Appointment{
		{ID: "1", ProfessionalID: "p1", ServiceID: "s1", Status: "completed", PriceCents: 10000, CommissionPercent: 30, PaidCents: ptr(int64(10000))},
		{ID: "2", ProfessionalID: "p1", ServiceID: "s2", Status: "completed", PriceCents: 5, CommissionPercent: 50},
		{ID: "3", ProfessionalID: "p2", ServiceID: "s1", Status: "completed", PriceCents: 8000, CommissionPercent: 25, ClientPresent: ptr(false)},
		{ID: "4", ProfessionalID: "p2", ServiceID: "s1", Status: "canceled", PriceCents: 8000},
		{ID: "5", ProfessionalID: "p2", Status: "blocked", IsBlock: true},
	}

	s := Summarize(aps)
	if s.Completed != 2 || s.NoShows != 1 || s.Cancellations != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.RevenueCents != 10005 || s.CommissionCents != 3003 || s.PayoutCents != 7002 {
		t.Fatalf("unexpected totals: %+v", s)
	}

	groups := GroupByProfessional(aps)
	if len(groups) != 2 || groups[0].Key != "p1" || groups[1].Key != "p2" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if groups[1].RevenueCents != 0 || groups[1].NoShows != 1 {
		t.Fatalf("p2 should have no revenue and one no-show: %+v", groups[1])
	}

	if lines := Lines(aps); len(lines) != 2 {
		t.Fatalf("expected 2 revenue lines, got %d", len(lines))
	}
}
