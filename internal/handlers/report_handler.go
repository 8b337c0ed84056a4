package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinica-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinica-scheduler/internal/httpresp"
	ucReport "github.com/BruksfildServices01/clinica-scheduler/internal/usecase/report"
)

type ReportHandler struct {
	financial *ucReport.Financial
	export    *ucReport.ExportFinancial
}

func NewReportHandler(deps ucReport.Deps) *ReportHandler {
	financial := ucReport.NewFinancial(deps)
	return &ReportHandler{
		financial: financial,
		export:    ucReport.NewExportFinancial(financial),
	}
}

type ExportRequest struct {
	From           string `json:"from" binding:"required"`
	To             string `json:"to" binding:"required"`
	ProfessionalID string `json:"professional_id"`
	GroupBy        string `json:"group_by"`
}

// GET /reports/financial?from=&to=&group_by=&professional_id=
func (h *ReportHandler) Financial(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	rep, err := h.financial.Execute(c.Request.Context(), p, ucReport.FinancialInput{
		From:           c.Query("from"),
		To:             c.Query("to"),
		ProfessionalID: c.Query("professional_id"),
		GroupBy:        c.Query("group_by"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, rep)
}

func (h *ReportHandler) Export(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	res, err := h.export.Execute(c.Request.Context(), p, ucReport.FinancialInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.Created(c, res)
}
