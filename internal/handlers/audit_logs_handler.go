package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinica-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
	"github.com/BruksfildServices01/clinica-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinica-scheduler/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	logs *audit.Logger
}

func NewAuditLogsHandler(logs *audit.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{logs: logs}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	// trilha da empresa inteira: só quem vê todas as agendas
	if !p.Caps.Has(access.ViewAllAgendas) {
		writeError(c, access.ErrForbidden)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	f := audit.Filter{
		CompanyID: p.CompanyID,
		Action:    c.Query("action"),
		Entity:    c.Query("entity"),
		EntityID:  c.Query("entity_id"),
		ActorUID:  c.Query("actor_uid"),
		Page:      page,
		Limit:     limit,
	}

	// datas no fuso da empresa; "to" é inclusivo
	loc := timezone.Location(p.Timezone)
	if s := c.Query("from"); s != "" {
		from, err := timezone.ParseDate(loc, s)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inicial inválida.")
			return
		}
		f.From = from
	}
	if s := c.Query("to"); s != "" {
		to, err := timezone.ParseDate(loc, s)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data final inválida.")
			return
		}
		f.To = to.AddDate(0, 0, 1)
	}

	logs, total, f, err := h.logs.List(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		httperr.Internal(c, "audit_list_failed", "Erro ao listar logs.")
		return
	}

	c.JSON(200, gin.H{
		"page":  f.Page,
		"limit": f.Limit,
		"total": total,
		"logs":  logs,
	})
}
