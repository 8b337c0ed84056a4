package report

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	domain "github.com/BruksfildServices01/clinica-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/finance"
	"github.com/BruksfildServices01/clinica-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinica-scheduler/internal/storage"
	"github.com/BruksfildServices01/clinica-scheduler/internal/timezone"
)

const (
	GroupByNone         = ""
	GroupByProfessional = "professional"
	GroupByService      = "service"
)

type FinancialInput struct {
	// datas YYYY-MM-DD, ambas inclusivas
	From           string
	To             string
	ProfessionalID string
	GroupBy        string
}

type FinancialReport struct {
	From           string            `json:"from"`
	To             string            `json:"to"`
	ProfessionalID string            `json:"professional_id,omitempty"`
	Summary        finance.Summary   `json:"summary"`
	Groups         []finance.Summary `json:"groups,omitempty"`
	Lines          []finance.Line    `json:"lines"`
}

type Deps struct {
	Repo     domain.Repository
	Storage  storage.Driver
	Log      *logrus.Logger
	Timezone string
	Now      func() time.Time
}

type Financial struct {
	Deps
}

func NewFinancial(deps Deps) *Financial {
	return &Financial{Deps: deps}
}

func (uc *Financial) Execute(ctx context.Context, p access.Principal, in FinancialInput) (*FinancialReport, error) {
	scope, err := p.FinanceScope(in.ProfessionalID)
	if err != nil {
		return nil, err
	}

	tz := p.Timezone
	if tz == "" {
		tz = uc.Timezone
	}
	loc := timezone.Location(tz)

	from, err := timezone.ParseDate(loc, in.From)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}
	to, err := timezone.ParseDate(loc, in.To)
	if err != nil || to.Before(from) {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	appointments, err := uc.Repo.ListForPeriod(ctx, p.CompanyID, scope, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	report := &FinancialReport{
		From:           in.From,
		To:             in.To,
		ProfessionalID: scope,
		Summary:        finance.Summarize(appointments),
		Lines:          finance.Lines(appointments),
	}
	if report.Lines == nil {
		report.Lines = []finance.Line{}
	}

	switch in.GroupBy {
	case GroupByNone:
	case GroupByProfessional:
		report.Groups = finance.GroupByProfessional(appointments)
	case GroupByService:
		report.Groups = finance.GroupByService(appointments)
	default:
		return nil, httperr.ErrBusiness("invalid_group_by")
	}

	return report, nil
}
