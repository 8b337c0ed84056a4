// Package access traduz papel + permissões granulares em capacidades,
// avaliadas uma vez por requisição.
package access

import "github.com/BruksfildServices01/clinica-scheduler/internal/httperr"

type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RolePro        Role = "pro"
	RoleAtendente  Role = "atendente"
	RoleOutro      Role = "outro"
	RoleSuperAdmin Role = "super_admin"
)

type Capability string

const (
	EditAppointments Capability = "appointments:edit"
	ViewAllAgendas   Capability = "appointments:view_all"
	FinanceFull      Capability = "finance:full"
	FinanceOwn       Capability = "finance:own"
)

var ErrForbidden = httperr.ErrBusiness("forbidden")

// Permissions são as flags granulares do papel "outro".
type Permissions struct {
	AgendaEdicao             bool `json:"agendaEdicao"`
	AgendaVisualizacao       bool `json:"agendaVisualizacao"`
	FinanceiroAcessoCompleto bool `json:"financeiroAcessoCompleto"`
	FinanceiroApenasProprios bool `json:"financeiroApenasProprios"`
}

type Actor struct {
	UID            string
	CompanyID      string
	Role           Role
	ProfessionalID string
	Timezone       string
	Permissions    Permissions
}

type CapabilitySet map[Capability]struct{}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

func set(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

func CapabilitiesFor(a Actor) CapabilitySet {
	switch a.Role {
	case RoleOwner, RoleAdmin, RoleSuperAdmin:
		return set(EditAppointments, ViewAllAgendas, FinanceFull)

	case RolePro:
		// só a própria agenda
		return set(EditAppointments)

	case RoleAtendente:
		return set(EditAppointments, ViewAllAgendas)

	case RoleOutro:
		s := set()
		if a.Permissions.AgendaEdicao {
			s[EditAppointments] = struct{}{}
		}
		if a.Permissions.AgendaVisualizacao {
			s[ViewAllAgendas] = struct{}{}
		}
		if a.Permissions.FinanceiroAcessoCompleto {
			s[FinanceFull] = struct{}{}
		} else if a.Permissions.FinanceiroApenasProprios {
			s[FinanceOwn] = struct{}{}
		}
		return s
	}

	return set()
}

// Principal é o ator autenticado com as capacidades já resolvidas.
type Principal struct {
	Actor
	Caps CapabilitySet
}

func NewPrincipal(a Actor) Principal {
	return Principal{Actor: a, Caps: CapabilitiesFor(a)}
}

// restrito à própria agenda?
func (p Principal) ownAgendaOnly() bool {
	return p.Role == RolePro
}

// CanEdit autoriza escrita na agenda do profissional.
func (p Principal) CanEdit(professionalID string) error {
	if !p.Caps.Has(EditAppointments) {
		return ErrForbidden
	}
	if p.ownAgendaOnly() && professionalID != p.ProfessionalID {
		return ErrForbidden
	}
	return nil
}

// CanView autoriza leitura da agenda de um profissional.
func (p Principal) CanView(professionalID string) error {
	if p.Caps.Has(ViewAllAgendas) {
		return nil
	}
	if p.ProfessionalID != "" && professionalID == p.ProfessionalID {
		return nil
	}
	return ErrForbidden
}

// ViewScope devolve o profissional a que a listagem deve se restringir
// ("" = todos).
func (p Principal) ViewScope(requested string) (string, error) {
	if p.Caps.Has(ViewAllAgendas) {
		return requested, nil
	}
	if p.ProfessionalID == "" {
		return "", ErrForbidden
	}
	if requested != "" && requested != p.ProfessionalID {
		return "", ErrForbidden
	}
	return p.ProfessionalID, nil
}

// FinanceScope funciona como ViewScope para relatórios financeiros.
func (p Principal) FinanceScope(requested string) (string, error) {
	if p.Caps.Has(FinanceFull) {
		return requested, nil
	}
	if p.Caps.Has(FinanceOwn) && p.ProfessionalID != "" {
		if requested != "" && requested != p.ProfessionalID {
			return "", ErrForbidden
		}
		return p.ProfessionalID, nil
	}
	return "", ErrForbidden
}
