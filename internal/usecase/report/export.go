package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/finance"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheetSummary = "Resumo"
	sheetLines   = "Lancamentos"
)

type ExportResult struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// ExportFinancial gera a planilha do relatório e grava no storage.
type ExportFinancial struct {
	report *Financial
}

func NewExportFinancial(report *Financial) *ExportFinancial {
	return &ExportFinancial{report: report}
}

func (uc *ExportFinancial) Execute(ctx context.Context, p access.Principal, in FinancialInput) (*ExportResult, error) {
	if in.GroupBy == "" {
		in.GroupBy = GroupByProfessional
	}

	rep, err := uc.report.Execute(ctx, p, in)
	if err != nil {
		return nil, err
	}

	buf, err := BuildWorkbook(rep)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if uc.report.Now != nil {
		now = uc.report.Now()
	}
	path := fmt.Sprintf(
		"reports/%s/financeiro_%s_%s_%s.xlsx",
		p.CompanyID, rep.From, rep.To, now.UTC().Format("20060102_150405"),
	)

	url, err := uc.report.Storage.Upload(ctx, buf, path, xlsxContentType)
	if err != nil {
		return nil, fmt.Errorf("upload report: %w", err)
	}

	if uc.report.Log != nil {
		uc.report.Log.WithFields(logrus.Fields{
			"company_id": p.CompanyID,
			"actor":      p.UID,
			"path":       path,
		}).Info("financial report exported")
	}

	return &ExportResult{Path: path, URL: url}, nil
}

// BuildWorkbook monta o XLSX com uma aba de resumo e uma de lançamentos.
func BuildWorkbook(rep *FinancialReport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, err
	}

	summaryHeaders := []string{"Grupo", "Concluídos", "Faltas", "Cancelamentos", "Receita", "Comissão", "Repasse"}
	writeRow(f, sheetSummary, 1, summaryHeaders)

	rows := append([]finance.Summary{}, rep.Groups...)
	total := rep.Summary
	total.Key = "Total"
	rows = append(rows, total)

	for i, s := range rows {
		writeRow(f, sheetSummary, i+2, []any{
			s.Key,
			s.Completed,
			s.NoShows,
			s.Cancellations,
			reais(s.RevenueCents),
			reais(s.CommissionCents),
			reais(s.PayoutCents),
		})
	}

	if _, err := f.NewSheet(sheetLines); err != nil {
		return nil, err
	}

	lineHeaders := []string{"Agendamento", "Profissional", "Serviço", "Data", "Forma de pagamento", "Preço", "Receita", "Comissão", "Repasse"}
	writeRow(f, sheetLines, 1, lineHeaders)

	for i, l := range rep.Lines {
		writeRow(f, sheetLines, i+2, []any{
			l.AppointmentID,
			l.ProfessionalID,
			l.ServiceID,
			l.Start.Format("02/01/2006 15:04"),
			l.PaymentMethod,
			reais(l.PriceCents),
			reais(l.RevenueCents),
			reais(l.CommissionCents),
			reais(l.PayoutCents),
		})
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeRow[T any](f *excelize.File, sheet string, row int, values []T) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

func reais(cents int64) float64 {
	return float64(cents) / 100
}
