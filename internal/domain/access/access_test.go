package access

import (
	"errors"
	"testing"
)

func TestCapabilitiesByRole(t *testing.T) {
	cases := []struct {
		actor Actor
		has   []Capability
		not   []Capability
	}{
		{Actor{Role: RoleOwner}, []Capability{EditAppointments, ViewAllAgendas, FinanceFull}, nil},
		{Actor{Role: RoleAdmin}, []Capability{EditAppointments, ViewAllAgendas, FinanceFull}, nil},
		{Actor{Role: RolePro}, []Capability{EditAppointments}, []Capability{ViewAllAgendas, FinanceFull, FinanceOwn}},
		{Actor{Role: RoleAtendente}, []Capability{EditAppointments, ViewAllAgendas}, []Capability{FinanceFull}},
		{Actor{Role: RoleOutro}, nil, []Capability{EditAppointments, ViewAllAgendas, FinanceFull, FinanceOwn}},
		{
			Actor{Role: RoleOutro, Permissions: Permissions{AgendaVisualizacao: true, FinanceiroApenasProprios: true}},
			[]Capability{ViewAllAgendas, FinanceOwn},
			[]Capability{EditAppointments, FinanceFull},
		},
		{Actor{Role: "guest"}, nil, []Capability{EditAppointments, ViewAllAgendas}},
	}

	for _, tc := range cases {
		caps := CapabilitiesFor(tc.actor)
		for _, c := range tc.has {
			if !caps.Has(c) {
				t.Fatalf("role %s should have %s", tc.actor.Role, c)
			}
		}
		for _, c := range tc.not {
			if caps.Has(c) {
				t.Fatalf("role %s should not have %s", tc.actor.Role, c)
			}
		}
	}
}

func TestProfessionalIsScopedToOwnAgenda(t *testing.T) {
	p := NewPrincipal(Actor{Role: RolePro, ProfessionalID: "p1"})

	if err := p.CanEdit("p1"); err != nil {
		t.Fatalf("pro should edit own agenda: %v", err)
	}
	if err := p.CanEdit("p2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("pro must not edit other agendas, got %v", err)
	}

	scope, err := p.ViewScope("")
	if err != nil || scope != "p1" {
		t.Fatalf("expected scope p1, got %q %v", scope, err)
	}
	if _, err := p.ViewScope("p2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := p.FinanceScope(""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("pro without finance permission must be forbidden")
	}
}

func TestOwnFinanceScope(t *testing.T) {
	p := NewPrincipal(Actor{
		Role:           RoleOutro,
		ProfessionalID: "p9",
		Permissions:    Permissions{FinanceiroApenasProprios: true},
	})

	scope, err := p.FinanceScope("")
	if err != nil || scope != "p9" {
		t.Fatalf("expected p9, got %q %v", scope, err)
	}

	owner := NewPrincipal(Actor{Role: RoleOwner})
	if scope, _ := owner.FinanceScope("p3"); scope != "p3" {
		t.Fatalf("owner should pass requested scope through, got %q", scope)
	}
}
